package engine

import (
	"github.com/google/uuid"

	"ludoarena/game/board"
)

// Join adds a player to the room. Color resolution: an explicitly requested,
// valid, unused color is honored; anything else falls back to the first
// unused color in the fixed red/green/yellow/blue order.
func (r *Room) Join(name string, requested board.Color) (*Player, error) {
	if r.Started {
		return nil, ErrGameAlreadyStarted
	}
	if len(r.Players) >= len(board.Colors) {
		return nil, ErrRoomFull
	}

	color := r.resolveColor(requested)
	if color == "" {
		return nil, ErrRoomFull
	}

	if name == "" {
		name = "Player " + string('1'+rune(len(r.Players)))
	}

	p := &Player{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
	}
	for i := range p.Positions {
		p.Positions[i] = board.HomePos
	}

	r.Players = append(r.Players, p)
	return p, nil
}

func (r *Room) resolveColor(requested board.Color) board.Color {
	taken := map[board.Color]bool{}
	for _, p := range r.Players {
		taken[p.Color] = true
	}

	if board.Valid(requested) && !taken[requested] {
		return requested
	}
	for _, c := range board.Colors {
		if !taken[c] {
			return c
		}
	}
	return ""
}

// SetReady marks the player ready. Idempotent; meaningless after start.
func (r *Room) SetReady(p *Player) {
	p.Ready = true
}

// Start begins the game. Any seated player may start once at least two
// players joined and everyone is ready; the server deliberately does not
// restrict start to the first joiner.
func (r *Room) Start() error {
	if r.Started {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	for _, p := range r.Players {
		if !p.Ready {
			return ErrPlayersNotReady
		}
	}

	r.Started = true
	r.TurnIndex = 0
	r.CurrentRoll = 0
	r.ConsecutiveSixes = 0
	return nil
}

// Depart removes the player from the roster. The remaining seating order is
// preserved; if the turn pointer fell out of bounds it resets to 0, which
// can visibly skip whose turn it "should" have been. Whenever the departure
// changes which player the pointer names, any pending roll and six streak
// are discarded: a roll is only ever consumed by the player who made it.
// Returns true if the departing player was found.
func (r *Room) Depart(playerID string) bool {
	for i, p := range r.Players {
		if p.ID == playerID {
			holder := r.CurrentPlayer()
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			if r.TurnIndex >= len(r.Players) {
				r.TurnIndex = 0
			}
			if r.CurrentPlayer() != holder {
				r.CurrentRoll = 0
				r.ConsecutiveSixes = 0
			}
			return true
		}
	}
	return false
}

// Empty reports whether the room has no players left.
func (r *Room) Empty() bool {
	return len(r.Players) == 0
}
