// Package mcp exposes a small admin/inspection interface over the Model
// Context Protocol. It is a thin client that proxies every tool call to the
// REST API, so it never touches room state directly.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ludoarena/game/service"
)

// Client proxies MCP tool calls to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP client targeting the given API base URL.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// GetMCPServer returns the underlying MCP server for mounting.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Ludo Arena",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ludo Arena - MCP Interface

Read-only inspection of a running Ludo session server. Gameplay happens over
the websocket protocol; these tools are for observing rooms.

AVAILABLE TOOLS:
- list_rooms: List all live rooms with player counts
- room_state: Get one room's roster, turn and token positions
- game_rules: Get a summary of the board and movement rules`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all live game rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_state",
		Description: "Get the roster, turn pointer and token positions of a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room code to inspect",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get a summary of the board layout and movement rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// apiCall performs an HTTP request against the REST API and decodes the
// JSON response into result.
func (c *Client) apiCall(method, path string, result interface{}) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}

	if err := c.apiCall("GET", "/api/rooms", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Rooms (%d):\n\n", response.Count)
	for _, room := range response.Rooms {
		phase := "waiting"
		if room.Started {
			phase = "playing"
		}
		result += fmt.Sprintf("- %s: %d player(s), %s\n", room.ID, room.PlayerCount, phase)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoomState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var room service.RoomInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", roomID), &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoom(&room)), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := `LUDO RULES (server-enforced)

BOARD:
- 52-cell shared circular track; entry cells: red=0, green=13, yellow=26, blue=39
- Safe cells (no captures): 0, 8, 13, 21, 26, 34, 39, 47
- Each color has a private 6-cell final lane (relative offsets 52..57); 57 is the center

TOKENS: 4 per player; -1 = home, 0..51 = own relative track offset, 52..57 = final lane

TURNS:
- Join order fixes turn order; only the active player may roll or move
- A 6 is required to enter a token from home
- A 6, a capture, or finishing a token grants another roll
- Three consecutive sixes bust the streak: the turn is forfeited
- No legal moves: the turn passes automatically

CAPTURES:
- Landing on an opponent's token on a shared, non-safe cell sends it home
- Stacked opponents on a non-safe cell are all captured
- Final-lane tokens can never be captured`

	return mcp.NewToolResultText(rules), nil
}

func formatRoom(room *service.RoomInfo) string {
	phase := "waiting for players"
	if room.Started {
		phase = "playing"
	}

	result := fmt.Sprintf("Room %s (%s)\n", room.ID, phase)
	if room.TurnPlayerID != "" {
		result += fmt.Sprintf("Turn: %s\n", room.TurnPlayerID)
	}
	result += "\nPlayers:\n"
	for _, p := range room.Players {
		ready := ""
		if p.Ready && !room.Started {
			ready = " (ready)"
		}
		result += fmt.Sprintf("- %s [%s] %s%s positions=%v\n", p.Name, p.Color, p.ID, ready, p.Positions)
	}
	return result
}
