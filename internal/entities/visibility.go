package entities

import "github.com/serumrl/map-engine/internal/errors"

// VisState is the per-tile fog-of-war state. The only legal transitions are
// Unexplored -> Seen -> Visible -> Seen; a tile never returns to Unexplored
// once it has been seen.
type VisState int

// Visibility states
const (
	VisUnexplored VisState = iota
	VisSeen
	VisVisible
)

// Mask characters used by the [floor_N_visibility] file section.
const (
	maskUnexplored = '?'
	maskSeen       = '~'
	maskVisible    = '!'
)

// MaskChar returns the single-character code for the state.
func (s VisState) MaskChar() rune {
	switch s {
	case VisSeen:
		return maskSeen
	case VisVisible:
		return maskVisible
	default:
		return maskUnexplored
	}
}

// VisFromMask converts a mask character back to a visibility state.
func VisFromMask(c rune) (VisState, error) {
	switch c {
	case maskUnexplored:
		return VisUnexplored, nil
	case maskSeen:
		return VisSeen, nil
	case maskVisible:
		return VisVisible, nil
	default:
		return VisUnexplored, errors.UnknownTileCharacterf("no visibility state for character %q", string(c))
	}
}

// Explored reports whether the tile has ever been seen.
func (s VisState) Explored() bool {
	return s != VisUnexplored
}
