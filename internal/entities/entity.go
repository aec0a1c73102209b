package entities

import "time"

// EntityKind tags the variant of an Entity.
type EntityKind string

// Entity kinds
const (
	EntityCivilian EntityKind = "CIVILIAN"
	EntityGuard    EntityKind = "GUARD"
	EntityAnimal   EntityKind = "ANIMAL"
)

// Entity is a movable actor on a floor. The shared fields (id, kind,
// position, property bag) are hoisted here; exactly one of the per-variant
// payloads is non-nil, matching Kind.
type Entity struct {
	ID         string            `json:"id"`
	Kind       EntityKind        `json:"kind"`
	Position   Position          `json:"position"`
	Properties map[string]string `json:"properties,omitempty"`

	Civilian *CivilianData `json:"civilian,omitempty"`
	Guard    *GuardData    `json:"guard,omitempty"`
	Animal   *AnimalData   `json:"animal,omitempty"`
}

// CivilianData holds the civilian variant payload.
type CivilianData struct {
	Role            string `json:"role"`
	Routine         string `json:"routine,omitempty"`
	TransformedType string `json:"transformed_type,omitempty"`
}

// GuardData holds the guard variant payload. PatrolRoute waypoints are
// plain values, not references into the floor.
type GuardData struct {
	PatrolRoute    []Position `json:"patrol_route,omitempty"`
	AlertLevel     int        `json:"alert_level"`
	LastSeenPlayer *Position  `json:"last_seen_player,omitempty"`
}

// AnimalData holds the animal variant payload. OriginalType records what
// the subject was before transformation.
type AnimalData struct {
	OriginalType  string    `json:"original_type"`
	AnimalType    string    `json:"animal_type"`
	TransformTime time.Time `json:"transform_time"`
	Friendly      bool      `json:"friendly"`
}

// NewCivilian creates a civilian entity.
func NewCivilian(id string, pos Position, data *CivilianData) *Entity {
	return &Entity{ID: id, Kind: EntityCivilian, Position: pos, Civilian: data}
}

// NewGuard creates a guard entity.
func NewGuard(id string, pos Position, data *GuardData) *Entity {
	return &Entity{ID: id, Kind: EntityGuard, Position: pos, Guard: data}
}

// NewAnimal creates an animal entity.
func NewAnimal(id string, pos Position, data *AnimalData) *Entity {
	return &Entity{ID: id, Kind: EntityAnimal, Position: pos, Animal: data}
}

// BlocksMovement reports whether the actor occupies its tile exclusively.
// All actors do; friendly transformed animals still take up space.
func (e *Entity) BlocksMovement() bool {
	return true
}

// Transformed reports whether the entity is already an animal.
func (e *Entity) Transformed() bool {
	return e.Kind == EntityAnimal
}

// Transform mutates the entity into the animal variant, recording the prior
// role as OriginalType. Transforming an animal again is a no-op.
func (e *Entity) Transform(animalType string, at time.Time) {
	if e.Kind == EntityAnimal {
		return
	}

	original := string(e.Kind)
	switch e.Kind {
	case EntityCivilian:
		if e.Civilian != nil && e.Civilian.Role != "" {
			original = e.Civilian.Role
		}
	case EntityGuard:
		original = "guard"
	}

	e.Animal = &AnimalData{
		OriginalType:  original,
		AnimalType:    animalType,
		TransformTime: at,
	}
	e.Civilian = nil
	e.Guard = nil
	e.Kind = EntityAnimal
}

// Property reads a property-bag value.
func (e *Entity) Property(key string) (string, bool) {
	v, ok := e.Properties[key]
	return v, ok
}

// SetProperty writes a property-bag value.
func (e *Entity) SetProperty(key, value string) {
	if e.Properties == nil {
		e.Properties = make(map[string]string)
	}
	e.Properties[key] = value
}
