package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"ludoarena/game/service"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("baseURL %s, want %s", client.baseURL, baseURL)
	}
	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
	if client.mcpServer == nil {
		t.Error("MCP server not initialized")
	}
}

func TestAPICallError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "room not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/rooms/missing", nil)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "room not found") {
		t.Errorf("error %q should carry the API message", err)
	}
}

func TestHandleListRooms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/rooms" {
			t.Errorf("expected GET /api/rooms, got %s %s", r.Method, r.URL.Path)
		}
		resp := map[string]interface{}{
			"count": 1,
			"rooms": []*service.RoomInfo{
				{ID: "abcd", Started: true, PlayerCount: 2},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "list_rooms",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleListRooms(context.Background(), request)
	if err != nil {
		t.Fatalf("handleListRooms failed: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("expected text content in result")
	}
	if !strings.Contains(text.Text, "abcd") || !strings.Contains(text.Text, "playing") {
		t.Errorf("unexpected tool output: %s", text.Text)
	}
}

func TestHandleRoomState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rooms/abcd" {
			t.Errorf("expected /api/rooms/abcd, got %s", r.URL.Path)
		}
		resp := service.RoomInfo{
			ID:           "abcd",
			Started:      true,
			PlayerCount:  2,
			TurnPlayerID: "p1",
			Players: []service.PlayerInfo{
				{ID: "p1", Name: "alice", Color: "red", Positions: []int{-1, 0, 12, 57}},
				{ID: "p2", Name: "bob", Color: "green", Positions: []int{-1, -1, -1, -1}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "room_state",
			Arguments: map[string]interface{}{"room_id": "abcd"},
		},
	}

	result, err := client.handleRoomState(context.Background(), request)
	if err != nil {
		t.Fatalf("handleRoomState failed: %v", err)
	}

	text := result.Content[0].(mcp.TextContent)
	for _, want := range []string{"abcd", "alice", "bob", "Turn: p1"} {
		if !strings.Contains(text.Text, want) {
			t.Errorf("tool output missing %q: %s", want, text.Text)
		}
	}
}

func TestHandleGameRules(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameRules(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleGameRules failed: %v", err)
	}

	text := result.Content[0].(mcp.TextContent)
	for _, want := range []string{"52-cell", "Safe cells", "consecutive sixes"} {
		if !strings.Contains(text.Text, want) {
			t.Errorf("rules output missing %q", want)
		}
	}
}
