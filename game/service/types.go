package service

import "ludoarena/game/board"

// PlayerInfo is the wire-facing roster entry.
type PlayerInfo struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Color     board.Color `json:"color"`
	Ready     bool        `json:"ready"`
	Positions []int       `json:"positions"`
}

// TokenState pairs a player with their token positions, used in full-state
// snapshots.
type TokenState struct {
	ID        string `json:"id"`
	Positions []int  `json:"positions"`
}

// RoomInfo is a sanitized room snapshot for the REST/MCP surfaces.
type RoomInfo struct {
	ID           string       `json:"id"`
	Started      bool         `json:"started"`
	PlayerCount  int          `json:"playerCount"`
	TurnPlayerID string       `json:"turnPlayerId,omitempty"`
	Players      []PlayerInfo `json:"players"`
}

// JoinResult is returned to a successful join request.
type JoinResult struct {
	RoomID  string       `json:"roomId"`
	Player  PlayerInfo   `json:"player"`
	Players []PlayerInfo `json:"players"`
}

// RosterResult carries a roster snapshot after a ready or departure. After
// a mid-game departure TurnPlayerID names the (possibly recomputed) active
// player.
type RosterResult struct {
	PlayerID     string       `json:"playerId"`
	Players      []PlayerInfo `json:"players"`
	RoomRemoved  bool         `json:"roomRemoved,omitempty"`
	TurnPlayerID string       `json:"turnPlayerId,omitempty"`
}

// StartResult announces a started game.
type StartResult struct {
	TurnPlayerID string       `json:"turnPlayerId"`
	State        []TokenState `json:"state"`
}

// RollResult is the outcome of an accepted roll.
type RollResult struct {
	PlayerID     string `json:"playerId"`
	Roll         int    `json:"roll"`
	Moves        []int  `json:"moves"`
	Busted       bool   `json:"busted,omitempty"`
	Passed       bool   `json:"passed,omitempty"`
	NextPlayerID string `json:"nextPlayerId,omitempty"`
}

// MoveDetail names the token and die value a move consumed.
type MoveDetail struct {
	TokenIndex int `json:"tokenIndex"`
	Roll       int `json:"roll"`
}

// MoveResult is the outcome of an executed move. State carries the full
// per-player position snapshot so captures stay consistent on every client.
type MoveResult struct {
	PlayerID       string       `json:"playerId"`
	Positions      []int        `json:"positions"`
	Move           MoveDetail   `json:"move"`
	Captured       bool         `json:"captured"`
	Finished       bool         `json:"finished"`
	PlayerFinished bool         `json:"playerFinished,omitempty"`
	ExtraTurn      bool         `json:"extraTurn,omitempty"`
	NextPlayerID   string       `json:"nextPlayerId,omitempty"`
	State          []TokenState `json:"state"`
}
