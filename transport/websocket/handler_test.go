package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ludoarena/game/registry"
	"ludoarena/game/service"
)

// newTestHub builds a hub over a real service and returns the registry so
// tests can pin dice rolls.
func newTestHub(t *testing.T) (*Hub, *registry.Manager) {
	t.Helper()
	rooms := registry.NewManager()
	svc := service.NewGameService(rooms, zerolog.Nop())
	return NewHub(svc, zerolog.Nop()), rooms
}

// newTestClient builds a client without a real connection; handler logic
// only touches the connection on leave/disconnect.
func newTestClient(h *Hub) *Client {
	return &Client{
		hub:     h,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
		log:     zerolog.Nop(),
	}
}

// drain decodes every event currently buffered for the client.
func drain(t *testing.T, c *Client) []map[string]any {
	t.Helper()
	var events []map[string]any
	for {
		select {
		case data := <-c.send:
			var ev map[string]any
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatalf("failed to decode event %q: %v", data, err)
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventTypes(events []map[string]any) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev["type"].(string))
	}
	return types
}

func send(c *Client, format string, args ...any) {
	c.handleMessage([]byte(fmt.Sprintf(format, args...)))
}

func TestJoinFlow(t *testing.T) {
	hub, _ := newTestHub(t)
	c := newTestClient(hub)

	send(c, `{"type":"join","roomId":"r1","name":"alice","color":"blue"}`)

	if c.roomID != "r1" || c.playerID == "" {
		t.Fatalf("client not bound to room: roomID=%q playerID=%q", c.roomID, c.playerID)
	}
	if hub.roomClientCount("r1") != 1 {
		t.Error("client not subscribed to room")
	}

	events := drain(t, c)
	if len(events) != 2 {
		t.Fatalf("got %d events, want joined + player_list", len(events))
	}
	if events[0]["type"] != EvtJoined {
		t.Errorf("first event %v, want joined", events[0]["type"])
	}
	if events[0]["color"] != "blue" {
		t.Errorf("joined color %v, want blue", events[0]["color"])
	}
	if events[1]["type"] != EvtPlayerList {
		t.Errorf("second event %v, want player_list", events[1]["type"])
	}
}

func TestJoinEmptyRoomIDAssignsCode(t *testing.T) {
	hub, _ := newTestHub(t)
	c := newTestClient(hub)

	send(c, `{"type":"join"}`)

	if len(c.roomID) != 4 {
		t.Errorf("room code %q, want generated 4-char code", c.roomID)
	}
	events := drain(t, c)
	if len(events) == 0 || events[0]["roomId"] != c.roomID {
		t.Error("joined event does not echo the assigned room code")
	}
}

func TestSecondJoinIgnored(t *testing.T) {
	hub, _ := newTestHub(t)
	c := newTestClient(hub)

	send(c, `{"type":"join","roomId":"r1"}`)
	first := c.playerID
	drain(t, c)

	send(c, `{"type":"join","roomId":"r2"}`)

	if c.playerID != first || c.roomID != "r1" {
		t.Error("second join rebound the connection")
	}
	if events := drain(t, c); len(events) != 0 {
		t.Errorf("second join produced %d events, want none", len(events))
	}
}

func TestJoinStartedRoomGetsError(t *testing.T) {
	hub, rooms := newTestHub(t)
	c1, c2 := startTwoPlayerGame(t, hub, rooms, func() int { return 6 })
	drain(t, c1)
	drain(t, c2)

	late := newTestClient(hub)
	send(late, `{"type":"join","roomId":"r1","name":"late"}`)

	events := drain(t, late)
	if len(events) != 1 || events[0]["type"] != EvtError {
		t.Fatalf("got %v, want a single error event", eventTypes(events))
	}
	if late.playerID != "" {
		t.Error("rejected join still bound the connection")
	}
}

func TestStartPreconditionErrorToSenderOnly(t *testing.T) {
	hub, _ := newTestHub(t)
	c1 := newTestClient(hub)
	c2 := newTestClient(hub)

	send(c1, `{"type":"join","roomId":"r1","name":"alice"}`)
	send(c2, `{"type":"join","roomId":"r1","name":"bob"}`)
	drain(t, c1)
	drain(t, c2)

	// Nobody is ready yet.
	send(c1, `{"type":"start"}`)

	events := drain(t, c1)
	if len(events) != 1 || events[0]["type"] != EvtError {
		t.Fatalf("sender got %v, want a single error event", eventTypes(events))
	}
	if events := drain(t, c2); len(events) != 0 {
		t.Errorf("other player got %v, want nothing", eventTypes(events))
	}
}

func TestFullGameFlow(t *testing.T) {
	hub, rooms := newTestHub(t)

	rolls := []int{6, 4}
	i := 0
	c1, c2 := startTwoPlayerGame(t, hub, rooms, func() int {
		v := rolls[i]
		if i < len(rolls)-1 {
			i++
		}
		return v
	})

	// Both clients saw game_started.
	for _, c := range []*Client{c1, c2} {
		events := drain(t, c)
		last := events[len(events)-1]
		if last["type"] != EvtGameStarted {
			t.Fatalf("last pre-game event %v, want game_started", last["type"])
		}
		if last["turnPlayerId"] != c1.playerID {
			t.Errorf("turnPlayerId %v, want first joiner", last["turnPlayerId"])
		}
	}

	// Roll a six: both clients see the result and the four legal moves.
	send(c1, `{"type":"roll"}`)
	for _, c := range []*Client{c1, c2} {
		events := drain(t, c)
		if len(events) != 1 || events[0]["type"] != EvtRollResult {
			t.Fatalf("got %v, want roll_result", eventTypes(events))
		}
		if events[0]["roll"].(float64) != 6 {
			t.Errorf("roll %v, want 6", events[0]["roll"])
		}
		if len(events[0]["moves"].([]any)) != 4 {
			t.Errorf("moves %v, want 4 entries", events[0]["moves"])
		}
	}

	// Move token 0 out of home: state_update then turn (extra turn, six).
	send(c1, `{"type":"move","tokenIndex":0}`)
	events := drain(t, c2)
	if got := eventTypes(events); len(got) != 2 || got[0] != EvtStateUpdate || got[1] != EvtTurn {
		t.Fatalf("got %v, want [state_update turn]", got)
	}
	if events[1]["playerId"] != c1.playerID {
		t.Error("six did not keep the turn with the roller")
	}
	positions := events[0]["positions"].([]any)
	if positions[0].(float64) != 0 {
		t.Errorf("token 0 at %v, want 0 after entry", positions[0])
	}
	drain(t, c1)

	// Roll 4, advance the token to 4, turn passes to the second player.
	send(c1, `{"type":"roll"}`)
	drain(t, c1)
	drain(t, c2)
	send(c1, `{"type":"move","tokenIndex":0}`)

	events = drain(t, c2)
	if got := eventTypes(events); len(got) != 2 || got[0] != EvtStateUpdate || got[1] != EvtTurn {
		t.Fatalf("got %v, want [state_update turn]", got)
	}
	positions = events[0]["positions"].([]any)
	if positions[0].(float64) != 4 {
		t.Errorf("token 0 at %v, want 4", positions[0])
	}
	if events[1]["playerId"] != c2.playerID {
		t.Error("turn did not pass to the second player")
	}
}

func TestRollOutOfTurnSilentlyDropped(t *testing.T) {
	hub, rooms := newTestHub(t)
	c1, c2 := startTwoPlayerGame(t, hub, rooms, func() int { return 6 })
	drain(t, c1)
	drain(t, c2)

	// Second player does not hold the turn.
	send(c2, `{"type":"roll"}`)
	send(c2, `{"type":"move","tokenIndex":0}`)

	if events := drain(t, c1); len(events) != 0 {
		t.Errorf("player 1 got %v, want nothing", eventTypes(events))
	}
	if events := drain(t, c2); len(events) != 0 {
		t.Errorf("player 2 got %v, want nothing", eventTypes(events))
	}
}

func TestMalformedMessageIgnored(t *testing.T) {
	hub, _ := newTestHub(t)
	c := newTestClient(hub)

	c.handleMessage([]byte(`{not json`))
	c.handleMessage([]byte(`{"type":"frobnicate"}`))

	if events := drain(t, c); len(events) != 0 {
		t.Errorf("got %v, want nothing", eventTypes(events))
	}
}

func TestDisconnectDepartsAndNotifiesRoom(t *testing.T) {
	hub, rooms := newTestHub(t)
	c1, c2 := startTwoPlayerGame(t, hub, rooms, func() int { return 6 })
	drain(t, c1)
	drain(t, c2)

	c1.disconnect()

	events := drain(t, c2)
	got := eventTypes(events)
	if len(got) != 2 || got[0] != EvtPlayerList || got[1] != EvtTurn {
		t.Fatalf("got %v, want [player_list turn]", got)
	}
	if events[1]["playerId"] != c2.playerID {
		t.Error("turn not handed to the remaining player")
	}

	// The room must still be playable for the remaining player.
	send(c2, `{"type":"roll"}`)
	if got := eventTypes(drain(t, c2)); len(got) != 1 || got[0] != EvtRollResult {
		t.Fatalf("remaining player got %v, want roll_result", got)
	}
}

// A departure must not race broadcasts from other connections: the warn
// path for a full send buffer inspects the client while departure clears
// its identity. Run under -race.
func TestDepartConcurrentWithBroadcast(t *testing.T) {
	hub, rooms := newTestHub(t)
	c1, c2 := startTwoPlayerGame(t, hub, rooms, func() int { return 6 })
	drain(t, c1)
	drain(t, c2)

	// An unbuffered, never-read channel forces every broadcast to c1
	// through the buffer-full path.
	c1.send = make(chan []byte)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c1.depart()
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.BroadcastRoom("r1", turnEvent{Type: EvtTurn, PlayerID: "p"})
		}
	}()
	wg.Wait()

	if c1.playerID != "" {
		t.Error("departure did not clear the player identity")
	}
	if hub.roomClientCount("r1") != 1 {
		t.Errorf("room has %d clients, want 1 after the stalled client detached", hub.roomClientCount("r1"))
	}
}

func TestLastDisconnectRemovesRoom(t *testing.T) {
	hub, rooms := newTestHub(t)
	c := newTestClient(hub)
	send(c, `{"type":"join","roomId":"r1"}`)

	c.disconnect()

	if rooms.Count() != 0 {
		t.Errorf("registry holds %d rooms, want 0", rooms.Count())
	}
	if hub.roomClientCount("r1") != 0 {
		t.Error("hub still tracks the disconnected client")
	}
}

// startTwoPlayerGame joins two clients into room "r1", readies them, starts
// the game and pins the dice function.
func startTwoPlayerGame(t *testing.T, hub *Hub, rooms *registry.Manager, dice func() int) (*Client, *Client) {
	t.Helper()

	c1 := newTestClient(hub)
	c2 := newTestClient(hub)
	send(c1, `{"type":"join","roomId":"r1","name":"alice"}`)
	send(c2, `{"type":"join","roomId":"r1","name":"bob"}`)
	send(c1, `{"type":"ready"}`)
	send(c2, `{"type":"ready"}`)
	send(c1, `{"type":"start"}`)

	room, err := rooms.Get("r1")
	if err != nil {
		t.Fatalf("room not found after start: %v", err)
	}
	room.SetDice(dice)
	return c1, c2
}
