// Package board models the shared Ludo track geometry: the 52-cell circular
// main track, each color's entry offset on it, and the safe squares where
// captures never happen. It is pure and carries no game state.
package board

// Color identifies one of the four player colors.
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
)

const (
	// TrackCells is the number of cells on the shared circular main track.
	TrackCells = 52

	// LaneStart is the first relative offset inside a color's private final lane.
	LaneStart = 52

	// FinishPos is the relative offset of a finished token (center of the board).
	FinishPos = 57

	// HomePos marks a token that has not entered the track yet.
	HomePos = -1

	// TokensPerPlayer is the number of tokens each player races to the center.
	TokensPerPlayer = 4
)

// Colors lists the four colors in assignment order. Join order picks the
// first unused entry from this slice.
var Colors = []Color{Red, Green, Yellow, Blue}

// startOffsets maps each color to its entry cell on the global track.
// The four entries divide the ring into equal 13-cell arcs.
var startOffsets = map[Color]int{
	Red:    0,
	Green:  13,
	Yellow: 26,
	Blue:   39,
}

// safeCells are the global track indices where tokens cannot be captured:
// each color's entry cell plus the four star cells between them.
var safeCells = map[int]bool{
	0: true, 8: true, 13: true, 21: true, 26: true, 34: true, 39: true, 47: true,
}

// StartOffset returns the global track index of the color's entry cell.
func StartOffset(c Color) int {
	return startOffsets[c]
}

// Valid reports whether c is one of the four playable colors.
func Valid(c Color) bool {
	_, ok := startOffsets[c]
	return ok
}

// GlobalIndex converts a player's relative track offset (0..51) to the
// canonical global index on the shared ring. Final-lane offsets have no
// global index; callers must only pass main-track positions.
func GlobalIndex(c Color, pos int) int {
	return (startOffsets[c] + pos) % TrackCells
}

// IsSafe reports whether the global track index is a safe square.
func IsSafe(globalIdx int) bool {
	return safeCells[globalIdx]
}

// OnTrack reports whether a relative position is on the shared main track
// (as opposed to home or the private final lane).
func OnTrack(pos int) bool {
	return pos >= 0 && pos < TrackCells
}
