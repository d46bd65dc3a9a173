// Package engine holds the authoritative Ludo rules: the per-room roster,
// the turn state machine, dice semantics, and move legality/execution.
// Nothing here touches the network; the service layer serializes access and
// the transports translate outcomes into broadcasts.
package engine

import (
	"errors"
	"math/rand"
	"sync"

	"ludoarena/game/board"
)

const (
	// MaxConsecutiveSixes busts the roller's streak: the third six in a row
	// forfeits the turn regardless of legal moves.
	MaxConsecutiveSixes = 3

	// DiceSides is the number of faces on the die.
	DiceSides = 6
)

// Validation errors reported back to the requesting client.
var (
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrRoomFull           = errors.New("room is full")
	ErrNotEnoughPlayers   = errors.New("need at least 2 players")
	ErrPlayersNotReady    = errors.New("not all players are ready")
)

// Policy violations. These are silently dropped by the protocol handler:
// an honest client's UI never issues them, so no error event is sent.
var (
	ErrGameNotStarted = errors.New("game not started")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrRollPending    = errors.New("a roll is already pending")
	ErrNoRollPending  = errors.New("no roll pending")
	ErrIllegalMove    = errors.New("illegal move")
)

// IsPolicyViolation reports whether err is a turn/legality violation that
// must be dropped without a client-visible error.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrGameNotStarted) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrRollPending) ||
		errors.Is(err, ErrNoRollPending) ||
		errors.Is(err, ErrIllegalMove)
}

// Player is one seat in a room. Positions holds the four token offsets:
// -1 home, 0..51 relative track, 52..57 final lane, 57 finished.
type Player struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Color     board.Color                `json:"color"`
	Ready     bool                       `json:"ready"`
	Positions [board.TokensPerPlayer]int `json:"positions"`
}

// Finished reports whether all four tokens reached the center.
func (p *Player) Finished() bool {
	for _, pos := range p.Positions {
		if pos != board.FinishPos {
			return false
		}
	}
	return true
}

// Room is one independent game instance. Players are kept in join order,
// which fixes seating and turn order for the life of the room.
//
// The embedded mutex makes each room a single-writer critical section: the
// service layer locks it around every operation, so concurrent requests
// against the same room never interleave and different rooms never contend.
type Room struct {
	sync.Mutex

	ID               string
	Players          []*Player
	TurnIndex        int
	CurrentRoll      int // 0 when no roll is outstanding
	ConsecutiveSixes int
	Started          bool

	// roll draws a die value. Overridable in tests for deterministic play.
	roll func() int
}

// NewRoom creates an empty, not-yet-started room.
func NewRoom(id string) *Room {
	return &Room{
		ID:   id,
		roll: func() int { return rand.Intn(DiceSides) + 1 },
	}
}

// CurrentPlayer returns the player whose turn it is, or nil before start
// or in an empty room.
func (r *Room) CurrentPlayer() *Player {
	if len(r.Players) == 0 || r.TurnIndex < 0 || r.TurnIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.TurnIndex]
}

// SetDice overrides the die. Used by tests that need deterministic rolls.
func (r *Room) SetDice(fn func() int) {
	r.roll = fn
}

// PlayerByID looks a player up by identity.
func (r *Room) PlayerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
