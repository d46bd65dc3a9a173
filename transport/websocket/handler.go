package websocket

import (
	"context"
	"encoding/json"

	"ludoarena/game/board"
	"ludoarena/game/engine"
)

// handleMessage authenticates one inbound frame against the current room
// state and drives the resulting broadcasts. Malformed frames are logged and
// ignored; turn/legality violations are dropped with no client-visible
// effect.
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Warn().Err(err).Str("player", c.playerID).Msg("ignoring malformed message")
		return
	}

	switch msg.Type {
	case MsgJoin:
		c.handleJoin(msg)
	case MsgReady:
		c.handleReady()
	case MsgStart:
		c.handleStart()
	case MsgRoll:
		c.handleRoll()
	case MsgMove:
		c.handleMove(msg)
	case MsgLeave:
		c.handleLeave()
	default:
		c.log.Debug().Str("type", msg.Type).Msg("ignoring unknown message type")
	}
}

func (c *Client) handleJoin(msg ClientMessage) {
	if c.playerID != "" {
		// Connections are scoped to a single room for their lifetime.
		return
	}

	result, err := c.hub.service.Join(context.Background(), msg.RoomID, msg.Name, board.Color(msg.Color))
	if err != nil {
		c.hub.sendTo(c, errorEvent{Type: EvtError, Message: err.Error()})
		return
	}

	c.roomID = result.RoomID
	c.playerID = result.Player.ID
	c.hub.subscribe(c.roomID, c)

	c.hub.sendTo(c, joinedEvent{
		Type:     EvtJoined,
		PlayerID: result.Player.ID,
		RoomID:   result.RoomID,
		Color:    string(result.Player.Color),
		Players:  result.Players,
	})
	c.hub.BroadcastRoom(c.roomID, playerListEvent{Type: EvtPlayerList, Players: result.Players})
}

func (c *Client) handleReady() {
	if c.playerID == "" {
		return
	}

	result, err := c.hub.service.Ready(context.Background(), c.roomID, c.playerID)
	if err != nil {
		c.log.Debug().Err(err).Str("player", c.playerID).Msg("ready rejected")
		return
	}
	c.hub.BroadcastRoom(c.roomID, playerListEvent{Type: EvtPlayerList, Players: result.Players})
}

func (c *Client) handleStart() {
	if c.playerID == "" {
		return
	}

	result, err := c.hub.service.Start(context.Background(), c.roomID, c.playerID)
	if err != nil {
		c.hub.sendTo(c, errorEvent{Type: EvtError, Message: err.Error()})
		return
	}

	c.hub.BroadcastRoom(c.roomID, gameStartedEvent{
		Type:         EvtGameStarted,
		TurnPlayerID: result.TurnPlayerID,
		State:        result.State,
	})
}

func (c *Client) handleRoll() {
	if c.playerID == "" {
		return
	}

	result, err := c.hub.service.Roll(context.Background(), c.roomID, c.playerID)
	if err != nil {
		if engine.IsPolicyViolation(err) {
			c.log.Debug().Err(err).Str("player", c.playerID).Msg("roll dropped")
		}
		return
	}

	moves := result.Moves
	if moves == nil {
		moves = []int{}
	}
	c.hub.BroadcastRoom(c.roomID, rollResultEvent{
		Type:     EvtRollResult,
		PlayerID: result.PlayerID,
		Roll:     result.Roll,
		Moves:    moves,
	})

	if result.Passed {
		c.hub.BroadcastRoom(c.roomID, turnEvent{Type: EvtTurn, PlayerID: result.NextPlayerID})
	}
}

func (c *Client) handleMove(msg ClientMessage) {
	if c.playerID == "" {
		return
	}

	result, err := c.hub.service.Move(context.Background(), c.roomID, c.playerID, msg.TokenIndex)
	if err != nil {
		if engine.IsPolicyViolation(err) {
			c.log.Debug().Err(err).Str("player", c.playerID).Msg("move dropped")
		}
		return
	}

	c.hub.BroadcastRoom(c.roomID, stateUpdateEvent{
		Type:     EvtStateUpdate,
		PlayerID: result.PlayerID,
		Position: result.Positions,
		Move:     result.Move,
		Captured: result.Captured,
		Finished: result.Finished,
		State:    result.State,
	})

	if result.PlayerFinished {
		c.hub.BroadcastRoom(c.roomID, playerFinishedEvent{Type: EvtPlayerFinished, PlayerID: result.PlayerID})
	}

	next := result.NextPlayerID
	if result.ExtraTurn {
		next = result.PlayerID
	}
	c.hub.BroadcastRoom(c.roomID, turnEvent{Type: EvtTurn, PlayerID: next})
}

func (c *Client) handleLeave() {
	c.depart()
	c.conn.Close()
}

// disconnect funnels a dropped connection through the same departure path
// as an explicit leave.
func (c *Client) disconnect() {
	c.depart()
	c.hub.unsubscribe(c)
}

func (c *Client) depart() {
	playerID := c.hub.claimDeparture(c)
	if playerID == "" {
		return
	}

	result, err := c.hub.service.Depart(context.Background(), c.roomID, playerID)
	if err != nil || result.RoomRemoved || len(result.Players) == 0 {
		return
	}

	c.hub.BroadcastRoom(c.roomID, playerListEvent{Type: EvtPlayerList, Players: result.Players})
	if result.TurnPlayerID != "" {
		c.hub.BroadcastRoom(c.roomID, turnEvent{Type: EvtTurn, PlayerID: result.TurnPlayerID})
	}
}
