// Package visibility implements the per-floor fog-of-war grid.
//
// Range policy: a tile at offset (dx, dy) from the viewer is in range when
// dx*dx+dy*dy <= r*r+r, a rounded Euclidean disk. Line of sight uses
// Bresenham rays and is symmetric by construction: a target is visible when
// a clear ray exists in either direction, so if A sees B then B sees A for
// the same obstacle set.
package visibility

import (
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

// TileSource answers the obstacle queries Update needs. The owning floor
// implements it, which lets door open/closed state participate without this
// package knowing about doors.
type TileSource interface {
	InBounds(x, y int) bool
	BlocksVision(x, y int) bool
}

// Cell is a floor-local coordinate pair.
type Cell struct {
	X int
	Y int
}

// Grid holds the tri-state visibility for one floor, aligned 1:1 with the
// floor's tile grid.
type Grid struct {
	width  int
	height int
	states [][]entities.VisState
}

// NewGrid creates a grid with every cell unexplored.
func NewGrid(width, height int) (*Grid, error) {
	vb := errors.NewValidationBuilder()
	errors.ValidatePositive("width", width, vb)
	errors.ValidatePositive("height", height, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	states := make([][]entities.VisState, height)
	for y := range states {
		states[y] = make([]entities.VisState, width)
	}
	return &Grid{width: width, height: height, states: states}, nil
}

// Width returns the grid width.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height.
func (g *Grid) Height() int { return g.height }

// State returns the visibility state at (x, y). Out-of-bounds cells read as
// unexplored.
func (g *Grid) State(x, y int) entities.VisState {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return entities.VisUnexplored
	}
	return g.states[y][x]
}

// IsVisible reports whether (x, y) is currently visible.
func (g *Grid) IsVisible(x, y int) bool {
	return g.State(x, y) == entities.VisVisible
}

// IsExplored reports whether (x, y) has ever been seen.
func (g *Grid) IsExplored(x, y int) bool {
	return g.State(x, y).Explored()
}

// Restore overwrites the state at (x, y) without transition checks. Only
// the serializer uses it, when rebuilding a grid from a saved mask.
func (g *Grid) Restore(x, y int, s entities.VisState) error {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return errors.InvalidArgumentf("cell (%d,%d) outside %dx%d grid", x, y, g.width, g.height)
	}
	g.states[y][x] = s
	return nil
}

// Update recomputes visibility from the viewer position. Every tile in the
// returned set becomes visible; tiles that were visible and are no longer
// demote to seen. Explored tiles never return to unexplored.
func (g *Grid) Update(src TileSource, viewerX, viewerY, radius int) []Cell {
	visible := VisibleFrom(src, viewerX, viewerY, radius)

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.states[y][x] == entities.VisVisible {
				g.states[y][x] = entities.VisSeen
			}
		}
	}

	cells := make([]Cell, 0, len(visible))
	for c := range visible {
		if c.X < 0 || c.X >= g.width || c.Y < 0 || c.Y >= g.height {
			continue
		}
		g.states[c.Y][c.X] = entities.VisVisible
		cells = append(cells, c)
	}
	return cells
}

// VisibleFrom computes the set of cells visible from (x, y) within radius,
// without touching any grid state. Security devices use it directly for
// their detection checks.
func VisibleFrom(src TileSource, x, y, radius int) map[Cell]bool {
	visible := make(map[Cell]bool)
	if radius < 0 || !src.InBounds(x, y) {
		return visible
	}

	// dx*dx+dy*dy <= r*r+r keeps the disk symmetric while rounding outward
	// enough to include straight cardinal reach at exactly r.
	rangeSq := radius*radius + radius

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > rangeSq {
				continue
			}
			tx, ty := x+dx, y+dy
			if !src.InBounds(tx, ty) {
				continue
			}
			if lineClear(src, x, y, tx, ty) || lineClear(src, tx, ty, x, y) {
				visible[Cell{X: tx, Y: ty}] = true
			}
		}
	}
	return visible
}
