package world

import (
	"sort"

	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

// Registry tracks the entities and game objects on one floor. It keeps a
// position index alongside the id maps; every mutating operation updates
// both as part of its contract, so positional queries stay O(k).
type Registry struct {
	allowStacking bool

	entities map[string]*entities.Entity
	objects  map[string]*entities.GameObject

	entityIDsAt map[entities.Position][]string
	objectIDsAt map[entities.Position][]string
}

// NewRegistry creates an empty registry. allowStacking permits two
// movement-blocking actors on one tile; the default configuration leaves it
// off.
func NewRegistry(allowStacking bool) *Registry {
	return &Registry{
		allowStacking: allowStacking,
		entities:      make(map[string]*entities.Entity),
		objects:       make(map[string]*entities.GameObject),
		entityIDsAt:   make(map[entities.Position][]string),
		objectIDsAt:   make(map[entities.Position][]string),
	}
}

// AddEntity registers an actor. It fails with ALREADY_EXISTS on duplicate
// ids and POSITION_OCCUPIED when a movement-blocking actor already holds
// the tile and stacking is off.
func (r *Registry) AddEntity(e *entities.Entity) error {
	if e == nil || e.ID == "" {
		return errors.InvalidArgument("entity with non-empty id is required")
	}
	if _, ok := r.entities[e.ID]; ok {
		return errors.AlreadyExists("entity id " + e.ID + " already registered")
	}
	if !r.allowStacking && e.BlocksMovement() && r.BlockerAt(e.Position) {
		return errors.PositionOccupiedf("position %s already holds a blocking occupant", e.Position)
	}

	r.entities[e.ID] = e
	r.entityIDsAt[e.Position] = append(r.entityIDsAt[e.Position], e.ID)
	return nil
}

// MoveEntity relocates an actor and keeps the position index in sync. The
// caller validates tiles and adjacency; the registry only enforces
// existence and occupancy.
func (r *Registry) MoveEntity(id string, to entities.Position) error {
	e, ok := r.entities[id]
	if !ok {
		return errors.EntityNotFoundf("no entity with id %q", id)
	}
	if !r.allowStacking && e.BlocksMovement() && r.blockerAtExcluding(to, id) {
		return errors.InvalidMovef("position %s already holds a blocking occupant", to)
	}

	r.removeFromIndex(r.entityIDsAt, e.Position, id)
	e.Position = to
	r.entityIDsAt[to] = append(r.entityIDsAt[to], id)
	return nil
}

// RemoveEntity deletes an actor. Removing an absent id is a no-op.
func (r *Registry) RemoveEntity(id string) {
	e, ok := r.entities[id]
	if !ok {
		return
	}
	r.removeFromIndex(r.entityIDsAt, e.Position, id)
	delete(r.entities, id)
}

// Entity looks up an actor by id.
func (r *Registry) Entity(id string) (*entities.Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// EntitiesAt returns the actors on a tile.
func (r *Registry) EntitiesAt(pos entities.Position) []*entities.Entity {
	ids := r.entityIDsAt[pos]
	out := make([]*entities.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.entities[id])
	}
	return out
}

// Entities returns every actor, ordered by id for deterministic iteration.
func (r *Registry) Entities() []*entities.Entity {
	out := make([]*entities.Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddObject registers a static object. Objects may share tiles with each
// other and with actors (a camera can hang over a crate), so only id
// collisions are rejected.
func (r *Registry) AddObject(o *entities.GameObject) error {
	if o == nil || o.ID == "" {
		return errors.InvalidArgument("object with non-empty id is required")
	}
	if _, ok := r.objects[o.ID]; ok {
		return errors.AlreadyExists("object id " + o.ID + " already registered")
	}

	r.objects[o.ID] = o
	r.objectIDsAt[o.Position] = append(r.objectIDsAt[o.Position], o.ID)
	return nil
}

// RemoveObject deletes an object. Removing an absent id is a no-op.
func (r *Registry) RemoveObject(id string) {
	o, ok := r.objects[id]
	if !ok {
		return
	}
	r.removeFromIndex(r.objectIDsAt, o.Position, id)
	delete(r.objects, id)
}

// Object looks up an object by id.
func (r *Registry) Object(id string) (*entities.GameObject, bool) {
	o, ok := r.objects[id]
	return o, ok
}

// ObjectsAt returns the objects on a tile.
func (r *Registry) ObjectsAt(pos entities.Position) []*entities.GameObject {
	ids := r.objectIDsAt[pos]
	out := make([]*entities.GameObject, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.objects[id])
	}
	return out
}

// Objects returns every object, ordered by id.
func (r *Registry) Objects() []*entities.GameObject {
	out := make([]*entities.GameObject, 0, len(r.objects))
	for _, o := range r.objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BlockerAt reports whether a movement-blocking entity or object holds the
// tile.
func (r *Registry) BlockerAt(pos entities.Position) bool {
	return r.blockerAtExcluding(pos, "")
}

func (r *Registry) blockerAtExcluding(pos entities.Position, excludeID string) bool {
	for _, id := range r.entityIDsAt[pos] {
		if id != excludeID && r.entities[id].BlocksMovement() {
			return true
		}
	}
	for _, id := range r.objectIDsAt[pos] {
		if r.objects[id].BlocksMovement() {
			return true
		}
	}
	return false
}

func (r *Registry) removeFromIndex(index map[entities.Position][]string, pos entities.Position, id string) {
	ids := index[pos]
	for i, candidate := range ids {
		if candidate == id {
			index[pos] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(index[pos]) == 0 {
		delete(index, pos)
	}
}
