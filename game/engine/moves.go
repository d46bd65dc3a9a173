package engine

import "ludoarena/game/board"

// LegalMoves returns the token indices the player may move with the given
// roll. A token at home only enters on a six; a track token may not
// overshoot the final lane; a lane token may not overshoot the center.
func (r *Room) LegalMoves(p *Player, roll int) []int {
	var moves []int
	for i, pos := range p.Positions {
		if movable(pos, roll) {
			moves = append(moves, i)
		}
	}
	return moves
}

func movable(pos, roll int) bool {
	switch {
	case pos == board.FinishPos:
		return false
	case pos == board.HomePos:
		return roll == DiceSides
	case board.OnTrack(pos):
		// Either stays on the track or lands inside the 6-cell lane.
		return pos+roll <= board.FinishPos
	default:
		// Final lane: exact or shorter only.
		return pos+roll <= board.FinishPos
	}
}

// MoveOutcome describes an executed move and the turn transition it caused.
type MoveOutcome struct {
	Player     *Player
	TokenIndex int
	Roll       int
	Captured   bool
	Finished   bool

	// PlayerFinished is set when this move brought the player's fourth
	// token to the center.
	PlayerFinished bool

	// ExtraTurn grants the same player another roll (six, capture or
	// finish). Otherwise NextPlayer names the new active player.
	ExtraTurn  bool
	NextPlayer *Player
}

// Move executes the pending roll on the requested token. Requests from the
// wrong player, without a pending roll, or naming a token that is not
// currently movable are rejected as policy violations with no effect.
func (r *Room) Move(playerID string, tokenIndex int) (*MoveOutcome, error) {
	if !r.Started {
		return nil, ErrGameNotStarted
	}
	current := r.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return nil, ErrNotYourTurn
	}
	if r.CurrentRoll == 0 {
		return nil, ErrNoRollPending
	}

	roll := r.CurrentRoll
	legal := false
	for _, idx := range r.LegalMoves(current, roll) {
		if idx == tokenIndex {
			legal = true
			break
		}
	}
	if !legal {
		return nil, ErrIllegalMove
	}

	out := &MoveOutcome{Player: current, TokenIndex: tokenIndex, Roll: roll}

	pos := current.Positions[tokenIndex]
	var newPos int
	if pos == board.HomePos {
		newPos = 0
	} else {
		newPos = pos + roll
	}

	// Capture applies only on the shared track; final lanes are private
	// coordinate spaces and are never compared across colors.
	if board.OnTrack(newPos) {
		out.Captured = r.captureAt(current, newPos)
	}

	current.Positions[tokenIndex] = newPos
	out.Finished = newPos == board.FinishPos
	out.PlayerFinished = out.Finished && current.Finished()

	// The roll is consumed either way; a six, a capture or a finished
	// token earns the same player another roll.
	r.CurrentRoll = 0
	if roll == DiceSides || out.Captured || out.Finished {
		out.ExtraTurn = true
	} else {
		r.passTurn()
		out.NextPlayer = r.CurrentPlayer()
	}

	return out, nil
}

// captureAt sends home every opposing track token standing on the mover's
// destination cell, unless the cell is safe. Stacked opponents on a
// non-safe cell are all captured.
func (r *Room) captureAt(mover *Player, pos int) bool {
	global := board.GlobalIndex(mover.Color, pos)
	if board.IsSafe(global) {
		return false
	}

	captured := false
	for _, other := range r.Players {
		if other.ID == mover.ID {
			continue
		}
		for i, otherPos := range other.Positions {
			if board.OnTrack(otherPos) && board.GlobalIndex(other.Color, otherPos) == global {
				other.Positions[i] = board.HomePos
				captured = true
			}
		}
	}
	return captured
}
