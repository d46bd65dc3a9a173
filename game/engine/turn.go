package engine

// RollOutcome describes everything a single accepted roll produced. When the
// turn passed (bust or no legal moves) the roll is already consumed and
// NextPlayer names the new active player.
type RollOutcome struct {
	Player     *Player
	Roll       int
	Moves      []int
	Busted     bool
	Passed     bool
	NextPlayer *Player
}

// Roll draws a die for the requesting player. Requests from anyone but the
// active player, or while a roll is still unconsumed, are rejected with a
// policy violation and leave the room untouched.
func (r *Room) Roll(playerID string) (*RollOutcome, error) {
	if !r.Started {
		return nil, ErrGameNotStarted
	}
	current := r.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return nil, ErrNotYourTurn
	}
	if r.CurrentRoll != 0 {
		return nil, ErrRollPending
	}

	value := r.roll()
	if value == DiceSides {
		r.ConsecutiveSixes++
	} else {
		r.ConsecutiveSixes = 0
	}

	out := &RollOutcome{Player: current, Roll: value}

	// Third six in a row busts the streak: the turn is forfeited even if
	// legal moves exist.
	if r.ConsecutiveSixes >= MaxConsecutiveSixes {
		out.Busted = true
		out.Passed = true
		r.passTurn()
		out.NextPlayer = r.CurrentPlayer()
		return out, nil
	}

	out.Moves = r.LegalMoves(current, value)
	if len(out.Moves) == 0 {
		out.Passed = true
		r.passTurn()
		out.NextPlayer = r.CurrentPlayer()
		return out, nil
	}

	r.CurrentRoll = value
	return out, nil
}

// passTurn consumes any pending roll, resets the six streak and advances the
// turn pointer to the next player who still has an unfinished token,
// skipping fully finished players cyclically.
func (r *Room) passTurn() {
	r.CurrentRoll = 0
	r.ConsecutiveSixes = 0

	if len(r.Players) == 0 {
		r.TurnIndex = 0
		return
	}

	for i := 1; i <= len(r.Players); i++ {
		idx := (r.TurnIndex + i) % len(r.Players)
		if !r.Players[idx].Finished() {
			r.TurnIndex = idx
			return
		}
	}
	// Everyone finished; leave the pointer where it is.
}
