// Package world owns the floor and map-state aggregates: tile grids,
// per-floor visibility, the entity/object registry, zones, and stairs
// connections between floors.
package world

import (
	"sort"

	"github.com/serumrl/map-engine/internal/engine/visibility"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

// Zone is a named region on a floor, e.g. a guard patrol route or a spawn
// area. Points are floor-local waypoints in order.
type Zone struct {
	Type   string
	Points []entities.Position
}

// StairsLink connects a stairs tile to its counterpart on another floor.
type StairsLink struct {
	TargetFloor int
	Target      entities.Position
}

// FloorConfig holds the parameters for building a floor.
type FloorConfig struct {
	Number        int
	Width         int
	Height        int
	AllowStacking bool
}

// Validate ensures the configuration is usable.
func (c *FloorConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidatePositive("Number", c.Number, vb)
	errors.ValidatePositive("Width", c.Width, vb)
	errors.ValidatePositive("Height", c.Height, vb)
	return vb.Build()
}

// Floor is one Z-level: a tile grid, the matching visibility grid, the
// registry of entities and objects located on it, zones, and stairs links.
type Floor struct {
	number int
	width  int
	height int

	tiles    [][]entities.TileKind
	vis      *visibility.Grid
	registry *Registry
	zones    map[string]Zone
	stairs   map[entities.Position]StairsLink
}

// NewFloor creates a floor filled with wall tiles, matching how generated
// maps start before rooms are carved out.
func NewFloor(cfg *FloorConfig) (*Floor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid floor config")
	}

	tiles := make([][]entities.TileKind, cfg.Height)
	for y := range tiles {
		tiles[y] = make([]entities.TileKind, cfg.Width)
		for x := range tiles[y] {
			tiles[y][x] = entities.TileWall
		}
	}

	vis, err := visibility.NewGrid(cfg.Width, cfg.Height)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create visibility grid")
	}

	return &Floor{
		number:   cfg.Number,
		width:    cfg.Width,
		height:   cfg.Height,
		tiles:    tiles,
		vis:      vis,
		registry: NewRegistry(cfg.AllowStacking),
		zones:    make(map[string]Zone),
		stairs:   make(map[entities.Position]StairsLink),
	}, nil
}

// Number returns the floor number (1-based).
func (f *Floor) Number() int { return f.number }

// Width returns the grid width.
func (f *Floor) Width() int { return f.width }

// Height returns the grid height.
func (f *Floor) Height() int { return f.height }

// Visibility returns the floor's fog-of-war grid.
func (f *Floor) Visibility() *visibility.Grid { return f.vis }

// InBounds reports whether (x, y) lies on the grid.
func (f *Floor) InBounds(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

// TileAt returns the tile kind at (x, y). Out-of-bounds reads come back as
// wall, so edge arithmetic never needs special cases.
func (f *Floor) TileAt(x, y int) entities.TileKind {
	if !f.InBounds(x, y) {
		return entities.TileWall
	}
	return f.tiles[y][x]
}

// SetTile replaces the tile kind at (x, y).
func (f *Floor) SetTile(x, y int, k entities.TileKind) error {
	if !f.InBounds(x, y) {
		return errors.InvalidArgumentf("tile (%d,%d) outside %dx%d floor", x, y, f.width, f.height)
	}
	f.tiles[y][x] = k
	return nil
}

// BlocksVision reports the effective vision blocking at (x, y): the tile
// kind, with an open door overriding its tile. Windows never block vision.
func (f *Floor) BlocksVision(x, y int) bool {
	k := f.TileAt(x, y)
	if k == entities.TileDoor {
		if door := f.DoorAt(f.pos(x, y)); door != nil && door.Door.Open {
			return false
		}
	}
	return k.BlocksVision()
}

// BlocksMovement reports the effective movement blocking at (x, y),
// counting an open door as passable and blocking furniture as impassable.
func (f *Floor) BlocksMovement(x, y int) bool {
	k := f.TileAt(x, y)
	if k == entities.TileDoor {
		if door := f.DoorAt(f.pos(x, y)); door != nil && door.Door.Open {
			k = entities.TileFloor
		}
	}
	if k.BlocksMovement() {
		return true
	}
	for _, o := range f.registry.ObjectsAt(f.pos(x, y)) {
		if o.BlocksMovement() {
			return true
		}
	}
	return false
}

// PlaceEntity adds an actor to the floor after bounds, tile, and occupancy
// validation.
func (f *Floor) PlaceEntity(e *entities.Entity) error {
	if e == nil {
		return errors.InvalidArgument("entity is required")
	}
	if e.Position.Floor != f.number {
		return errors.InvalidArgumentf("entity %s targets floor %d, this is floor %d", e.ID, e.Position.Floor, f.number)
	}
	if !f.InBounds(e.Position.X, e.Position.Y) {
		return errors.InvalidArgumentf("entity %s position %s outside %dx%d floor", e.ID, e.Position, f.width, f.height)
	}
	if f.BlocksMovement(e.Position.X, e.Position.Y) {
		return errors.PositionOccupiedf("tile at %s blocks movement", e.Position)
	}
	return f.registry.AddEntity(e)
}

// MoveEntity applies a single-step move: the destination must be adjacent,
// inside the floor, on a passable tile, and free of blocking occupants.
// Validation happens before any mutation, so a rejected move leaves the
// floor unchanged.
func (f *Floor) MoveEntity(id string, to entities.Position) error {
	e, ok := f.registry.Entity(id)
	if !ok {
		return errors.EntityNotFoundf("no entity with id %q on floor %d", id, f.number)
	}
	if to.Floor != f.number {
		return errors.InvalidMovef("destination %s is not on floor %d", to, f.number)
	}
	if !e.Position.AdjacentTo(to) {
		return errors.InvalidMovef("destination %s is not adjacent to %s", to, e.Position)
	}
	if !f.InBounds(to.X, to.Y) {
		return errors.InvalidMovef("destination %s outside %dx%d floor", to, f.width, f.height)
	}
	if f.BlocksMovement(to.X, to.Y) {
		return errors.InvalidMovef("tile at %s blocks movement", to)
	}
	return f.registry.MoveEntity(id, to)
}

// RemoveEntity deletes an actor; absent ids are a no-op.
func (f *Floor) RemoveEntity(id string) {
	f.registry.RemoveEntity(id)
}

// Entity looks up an actor by id.
func (f *Floor) Entity(id string) (*entities.Entity, bool) {
	return f.registry.Entity(id)
}

// EntitiesAt returns the actors on a tile.
func (f *Floor) EntitiesAt(pos entities.Position) []*entities.Entity {
	return f.registry.EntitiesAt(pos)
}

// Entities returns every actor on the floor, ordered by id.
func (f *Floor) Entities() []*entities.Entity {
	return f.registry.Entities()
}

// PlaceObject adds a static object. Doors must sit on door tiles.
func (f *Floor) PlaceObject(o *entities.GameObject) error {
	if o == nil {
		return errors.InvalidArgument("object is required")
	}
	if o.Position.Floor != f.number {
		return errors.InvalidArgumentf("object %s targets floor %d, this is floor %d", o.ID, o.Position.Floor, f.number)
	}
	if !f.InBounds(o.Position.X, o.Position.Y) {
		return errors.InvalidArgumentf("object %s position %s outside %dx%d floor", o.ID, o.Position, f.width, f.height)
	}
	if o.Kind == entities.ObjectDoor && f.TileAt(o.Position.X, o.Position.Y) != entities.TileDoor {
		return errors.InvalidArgumentf("door %s must sit on a door tile, found %s", o.ID, f.TileAt(o.Position.X, o.Position.Y))
	}
	return f.registry.AddObject(o)
}

// RemoveObject deletes an object; absent ids are a no-op.
func (f *Floor) RemoveObject(id string) {
	f.registry.RemoveObject(id)
}

// Object looks up an object by id.
func (f *Floor) Object(id string) (*entities.GameObject, bool) {
	return f.registry.Object(id)
}

// ObjectsAt returns the objects on a tile.
func (f *Floor) ObjectsAt(pos entities.Position) []*entities.GameObject {
	return f.registry.ObjectsAt(pos)
}

// Objects returns every object on the floor, ordered by id.
func (f *Floor) Objects() []*entities.GameObject {
	return f.registry.Objects()
}

// DoorAt returns the door object on a tile, or nil.
func (f *Floor) DoorAt(pos entities.Position) *entities.GameObject {
	for _, o := range f.registry.ObjectsAt(pos) {
		if o.Kind == entities.ObjectDoor && o.Door != nil {
			return o
		}
	}
	return nil
}

// SetZone stores a named zone.
func (f *Floor) SetZone(name string, z Zone) {
	f.zones[name] = z
}

// Zone looks up a zone by name.
func (f *Floor) Zone(name string) (Zone, bool) {
	z, ok := f.zones[name]
	return z, ok
}

// ZoneNames returns the zone names in stable order.
func (f *Floor) ZoneNames() []string {
	names := make([]string, 0, len(f.zones))
	for name := range f.zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetStairs records a stairs link. The position must hold a stairs tile.
func (f *Floor) SetStairs(pos entities.Position, link StairsLink) error {
	k := f.TileAt(pos.X, pos.Y)
	if k != entities.TileStairsUp && k != entities.TileStairsDown {
		return errors.InvalidArgumentf("tile at %s is %s, not stairs", pos, k)
	}
	f.stairs[pos] = link
	return nil
}

// StairsAt returns the link for a stairs tile.
func (f *Floor) StairsAt(pos entities.Position) (StairsLink, bool) {
	link, ok := f.stairs[pos]
	return link, ok
}

// StairsPositions returns every linked stairs position in stable order.
func (f *Floor) StairsPositions() []entities.Position {
	out := make([]entities.Position, 0, len(f.stairs))
	for pos := range f.stairs {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// UpdateVisibility recomputes fog of war from a viewer on this floor.
func (f *Floor) UpdateVisibility(viewer entities.Position, radius int) []visibility.Cell {
	return f.vis.Update(f, viewer.X, viewer.Y, radius)
}

func (f *Floor) pos(x, y int) entities.Position {
	return entities.Position{X: x, Y: y, Floor: f.number}
}
