package entities

import "fmt"

// Position is an integer (x, y, floor) triple. Positions are values:
// equality and map-key hashing compare all three fields.
type Position struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Floor int `json:"floor"`
}

// String formats the position for logs and error messages.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,f%d)", p.X, p.Y, p.Floor)
}

// AdjacentTo reports whether other is reachable in a single step: same
// floor, Chebyshev distance exactly 1 (diagonals allowed).
func (p Position) AdjacentTo(other Position) bool {
	if p.Floor != other.Floor {
		return false
	}
	dx := absInt(p.X - other.X)
	dy := absInt(p.Y - other.Y)
	if dx == 0 && dy == 0 {
		return false
	}
	return dx <= 1 && dy <= 1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
