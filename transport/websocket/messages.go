package websocket

import "ludoarena/game/service"

// Inbound message types.
const (
	MsgJoin  = "join"
	MsgReady = "ready"
	MsgStart = "start"
	MsgRoll  = "roll"
	MsgMove  = "move"
	MsgLeave = "leave"
)

// Outbound event types.
const (
	EvtJoined         = "joined"
	EvtPlayerList     = "player_list"
	EvtGameStarted    = "game_started"
	EvtRollResult     = "roll_result"
	EvtStateUpdate    = "state_update"
	EvtTurn           = "turn"
	EvtPlayerFinished = "player_finished"
	EvtError          = "error"
)

// ClientMessage is the single inbound frame shape. Fields beyond Type are
// read only by the handlers that need them.
type ClientMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	Name       string `json:"name,omitempty"`
	Color      string `json:"color,omitempty"`
	TokenIndex int    `json:"tokenIndex,omitempty"`
}

// Outbound events. Each carries its own type tag so the hub can marshal any
// of them without a wrapper.

// joinedEvent is sent to the joining client only.
type joinedEvent struct {
	Type     string               `json:"type"`
	PlayerID string               `json:"playerId"`
	RoomID   string               `json:"roomId"`
	Color    string               `json:"color"`
	Players  []service.PlayerInfo `json:"players"`
}

// playerListEvent is broadcast on every roster change.
type playerListEvent struct {
	Type    string               `json:"type"`
	Players []service.PlayerInfo `json:"players"`
}

type gameStartedEvent struct {
	Type         string               `json:"type"`
	TurnPlayerID string               `json:"turnPlayerId"`
	State        []service.TokenState `json:"state"`
}

type rollResultEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Roll     int    `json:"roll"`
	Moves    []int  `json:"moves"`
}

// stateUpdateEvent is broadcast after every executed move. State carries the
// full per-player snapshot so captures need no separate event.
type stateUpdateEvent struct {
	Type     string               `json:"type"`
	PlayerID string               `json:"playerId"`
	Position []int                `json:"positions"`
	Move     service.MoveDetail   `json:"move"`
	Captured bool                 `json:"captured"`
	Finished bool                 `json:"finished"`
	State    []service.TokenState `json:"state"`
}

// turnEvent names the player who may roll next.
type turnEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type playerFinishedEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
