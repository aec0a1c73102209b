// Package entities provides the core data structures for the map engine:
// tile kinds, positions, entities, game objects, visibility states, and the
// map-level metadata and change ledger.
package entities

import (
	"github.com/serumrl/map-engine/internal/errors"
)

// TileKind enumerates the kinds of tiles a floor grid can contain.
type TileKind int

// Tile kinds
const (
	TileWall TileKind = iota
	TileFloor
	TileDoor
	TileWindow
	TileStairsUp
	TileStairsDown
	TileUnexplored
	TilePreviouslySeen
)

// tileChars is the canonical bijection between tile kinds and their
// single-character codes. tileKindByChar is derived from it at init so the
// two directions cannot drift apart.
var tileChars = map[TileKind]rune{
	TileWall:           '#',
	TileFloor:          '.',
	TileDoor:           'D',
	TileWindow:         'W',
	TileStairsUp:       '<',
	TileStairsDown:     '>',
	TileUnexplored:     '?',
	TilePreviouslySeen: '~',
}

var tileKindByChar = func() map[rune]TileKind {
	m := make(map[rune]TileKind, len(tileChars))
	for k, c := range tileChars {
		m[c] = k
	}
	return m
}()

// AllTileKinds lists every tile kind, in declaration order.
func AllTileKinds() []TileKind {
	return []TileKind{
		TileWall, TileFloor, TileDoor, TileWindow,
		TileStairsUp, TileStairsDown, TileUnexplored, TilePreviouslySeen,
	}
}

// Char returns the canonical character code for the tile kind.
func (k TileKind) Char() rune {
	return tileChars[k]
}

// TileFromChar converts a character code to its tile kind.
func TileFromChar(c rune) (TileKind, error) {
	k, ok := tileKindByChar[c]
	if !ok {
		return TileWall, errors.UnknownTileCharacterf("no tile kind for character %q", string(c))
	}
	return k, nil
}

// BlocksMovement reports whether the tile kind blocks movement. Doors block
// in their base (closed) state; the floor's effective check overrides this
// when the door object at the tile is open.
func (k TileKind) BlocksMovement() bool {
	switch k {
	case TileWall, TileDoor, TileWindow:
		return true
	default:
		return false
	}
}

// BlocksVision reports whether the tile kind blocks line of sight. Windows
// never block vision even though they block movement. Doors block in their
// base (closed) state, subject to the same override as BlocksMovement.
func (k TileKind) BlocksVision() bool {
	switch k {
	case TileWall, TileDoor:
		return true
	default:
		return false
	}
}

// IsInteractive reports whether the tile kind can be interacted with.
func (k TileKind) IsInteractive() bool {
	switch k {
	case TileDoor, TileStairsUp, TileStairsDown:
		return true
	default:
		return false
	}
}

// String returns a readable name for logging.
func (k TileKind) String() string {
	switch k {
	case TileWall:
		return "wall"
	case TileFloor:
		return "floor"
	case TileDoor:
		return "door"
	case TileWindow:
		return "window"
	case TileStairsUp:
		return "stairs_up"
	case TileStairsDown:
		return "stairs_down"
	case TileUnexplored:
		return "unexplored"
	case TilePreviouslySeen:
		return "previously_seen"
	default:
		return "unknown"
	}
}
