// Package mapmanager defines the interface for map state operations
package mapmanager

//go:generate mockgen -destination=mock/mock_service.go -package=mapmanagermock github.com/serumrl/map-engine/internal/services/mapmanager Service

import (
	"context"
	"time"

	"github.com/serumrl/map-engine/internal/engine/visibility"
	"github.com/serumrl/map-engine/internal/entities"
)

// Service defines the interface for map state operations. One Service
// instance manages one loaded map; all mutations funnel through it so the
// change ledger, per-entity flags, and published events stay in agreement.
type Service interface {
	// Visibility
	UpdateVisibility(ctx context.Context, input *UpdateVisibilityInput) (*UpdateVisibilityOutput, error)

	// World mutations
	TransformNPC(ctx context.Context, input *TransformNPCInput) (*TransformNPCOutput, error)
	ToggleDoor(ctx context.Context, input *ToggleDoorInput) (*ToggleDoorOutput, error)
	DisableSecurity(ctx context.Context, input *DisableSecurityInput) (*DisableSecurityOutput, error)
	MoveEntity(ctx context.Context, input *MoveEntityInput) (*MoveEntityOutput, error)
	CollectItem(ctx context.Context, input *CollectItemInput) (*CollectItemOutput, error)
	TriggerEvent(ctx context.Context, input *TriggerEventInput) (*TriggerEventOutput, error)

	// Alert tracking
	UpdateAlertLevel(ctx context.Context, input *UpdateAlertLevelInput) (*UpdateAlertLevelOutput, error)
}

// UpdateVisibilityInput defines the request for a fog-of-war recompute
type UpdateVisibilityInput struct {
	Viewer entities.Position

	// Radius overrides the configured view distance when positive.
	Radius int
}

// UpdateVisibilityOutput defines the response for a fog-of-war recompute.
// Security devices re-check their detection sets against the viewer during
// the same update, so the alert level can move here too.
type UpdateVisibilityOutput struct {
	Visible    []visibility.Cell
	Detections []string
	AlertLevel int
}

// TransformNPCInput defines the request for transforming an NPC
type TransformNPCInput struct {
	EntityID   string
	AnimalType string
}

// TransformNPCOutput defines the response for transforming an NPC
type TransformNPCOutput struct {
	Entity *entities.Entity

	// AlreadyTransformed reports an idempotent repeat: the entity was an
	// animal before this call and nothing changed.
	AlreadyTransformed bool
}

// ToggleDoorInput defines the request for toggling a door
type ToggleDoorInput struct {
	DoorID string

	// Unlock permits toggling a locked door, unlocking it permanently.
	Unlock bool
}

// ToggleDoorOutput defines the response for toggling a door
type ToggleDoorOutput struct {
	Open     bool
	Unlocked bool
}

// DisableSecurityInput defines the request for disabling a security device
type DisableSecurityInput struct {
	DeviceID string
}

// DisableSecurityOutput defines the response for disabling a security device
type DisableSecurityOutput struct {
	Device *entities.GameObject

	// AlreadyDisabled reports an idempotent repeat.
	AlreadyDisabled bool
}

// MoveEntityInput defines the request for moving an entity one step, or
// across floors when it stands on linked stairs.
type MoveEntityInput struct {
	EntityID string
	To       entities.Position
}

// MoveEntityOutput defines the response for moving an entity
type MoveEntityOutput struct {
	Position entities.Position
}

// CollectItemInput defines the request for collecting an object
type CollectItemInput struct {
	ObjectID string
}

// CollectItemOutput defines the response for collecting an object
type CollectItemOutput struct {
	// AlreadyCollected reports an idempotent repeat: the ledger had the id
	// and the object was already gone.
	AlreadyCollected bool
}

// TriggerEventInput defines the request for recording a scripted event
type TriggerEventInput struct {
	EventID string
}

// TriggerEventOutput defines the response for recording a scripted event
type TriggerEventOutput struct {
	EventID string
	At      time.Time
}

// UpdateAlertLevelInput defines the request for an alert recompute. Player
// is the position detection checks against.
type UpdateAlertLevelInput struct {
	Player entities.Position
}

// UpdateAlertLevelOutput defines the response for an alert recompute
type UpdateAlertLevelOutput struct {
	Level int

	// Detections lists the ids of guards and devices that saw the player
	// this recompute, in stable order.
	Detections []string
}
