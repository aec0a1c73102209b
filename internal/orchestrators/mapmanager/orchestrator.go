// Package mapmanager implements the map state orchestrator
package mapmanager

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/serumrl/map-engine/internal/engine/visibility"
	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
	"github.com/serumrl/map-engine/internal/pkg/clock"
	"github.com/serumrl/map-engine/internal/pkg/idgen"
	"github.com/serumrl/map-engine/internal/services/mapmanager"
)

// Event topics published on the bus.
const (
	EventNPCTransformed   = "map.npc_transformed"
	EventDoorToggled      = "map.door_toggled"
	EventSecurityDisabled = "map.security_disabled"
	EventItemCollected    = "map.item_collected"
	EventTriggered        = "map.event_triggered"
	EventAlertChanged     = "map.alert_changed"
)

// Defaults applied when the config leaves a policy zero.
const (
	DefaultViewDistance    = 8
	DefaultAlertDecayDelay = 3
)

// Config holds the dependencies for the map orchestrator
type Config struct {
	State    *world.MapState
	EventBus events.EventBus

	// Clock and IDGenerator default to the real clock and a sequential
	// generator when nil.
	Clock       clock.Clock
	IDGenerator idgen.Generator

	// ViewDistance is the default fog-of-war radius.
	ViewDistance int

	// AlertDecayDelay is how many quiet recomputes pass before the alert
	// level starts stepping back down.
	AlertDecayDelay int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.State == nil {
		vb.RequiredField("State")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}

	return vb.Build()
}

// Orchestrator implements the mapmanager.Service interface. A mutex
// serializes operations: the underlying world types are not safe for
// concurrent mutation.
type Orchestrator struct {
	mu sync.Mutex

	state    *world.MapState
	eventBus events.EventBus
	clock    clock.Clock
	idGen    idgen.Generator

	viewDistance    int
	alertDecayDelay int

	// quietRecomputes counts consecutive alert recomputes with no
	// detections, for the decay policy.
	quietRecomputes int
}

// New creates a new map orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewSequential("event")
	}
	viewDistance := cfg.ViewDistance
	if viewDistance <= 0 {
		viewDistance = DefaultViewDistance
	}
	decayDelay := cfg.AlertDecayDelay
	if decayDelay <= 0 {
		decayDelay = DefaultAlertDecayDelay
	}

	return &Orchestrator{
		state:           cfg.State,
		eventBus:        cfg.EventBus,
		clock:           clk,
		idGen:           idGen,
		viewDistance:    viewDistance,
		alertDecayDelay: decayDelay,
	}, nil
}

// Ensure Orchestrator implements the Service interface
var _ mapmanager.Service = (*Orchestrator)(nil)

// UpdateVisibility recomputes fog of war on the viewer's floor.
func (o *Orchestrator) UpdateVisibility(ctx context.Context, input *mapmanager.UpdateVisibilityInput) (*mapmanager.UpdateVisibilityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	floor, err := o.state.Floor(input.Viewer.Floor)
	if err != nil {
		return nil, err
	}

	radius := input.Radius
	if radius <= 0 {
		radius = o.viewDistance
	}

	cells := floor.UpdateVisibility(input.Viewer, radius)
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})

	// Devices re-check against the viewer in the same update.
	level, detections := o.recomputeAlert(ctx, floor, input.Viewer)

	return &mapmanager.UpdateVisibilityOutput{
		Visible:    cells,
		Detections: detections,
		AlertLevel: level,
	}, nil
}

// TransformNPC turns a civilian or guard into an animal. Repeat calls on an
// already-transformed entity succeed without changing anything.
func (o *Orchestrator) TransformNPC(ctx context.Context, input *mapmanager.TransformNPCInput) (*mapmanager.TransformNPCOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("entityID", input.EntityID, vb)
	errors.ValidateRequired("animalType", input.AnimalType, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	e, _, ok := o.state.FindEntity(input.EntityID)
	if !ok {
		return nil, errors.EntityNotFoundf("no entity with id %q", input.EntityID)
	}

	if e.Transformed() {
		return &mapmanager.TransformNPCOutput{Entity: e, AlreadyTransformed: true}, nil
	}

	e.Transform(input.AnimalType, o.clock.Now())
	o.state.Ledger.MarkTransformed(e.ID)

	o.publish(ctx, EventNPCTransformed, e.ID, "entity", map[string]any{
		"animal_type":   input.AnimalType,
		"original_type": e.Animal.OriginalType,
	})

	return &mapmanager.TransformNPCOutput{Entity: e}, nil
}

// ToggleDoor flips a door between open and closed. Locked doors refuse the
// toggle unless Unlock is set, which unlocks them for good and records the
// unlock in the ledger.
func (o *Orchestrator) ToggleDoor(ctx context.Context, input *mapmanager.ToggleDoorInput) (*mapmanager.ToggleDoorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("doorID", input.DoorID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	door, _, ok := o.state.FindObject(input.DoorID)
	if !ok {
		return nil, errors.EntityNotFoundf("no door with id %q", input.DoorID)
	}
	if door.Kind != entities.ObjectDoor || door.Door == nil {
		return nil, errors.InvalidArgumentf("object %q is a %s, not a door", input.DoorID, door.Kind)
	}

	out := &mapmanager.ToggleDoorOutput{}
	if door.Door.Locked {
		if !input.Unlock {
			return nil, errors.InvalidArgumentf("door %q is locked", input.DoorID)
		}
		door.Door.Locked = false
		o.state.Ledger.MarkDoorUnlocked(door.ID)
		out.Unlocked = true
	}

	door.Door.Open = !door.Door.Open
	out.Open = door.Door.Open

	o.publish(ctx, EventDoorToggled, door.ID, "door", map[string]any{
		"open":     door.Door.Open,
		"unlocked": out.Unlocked,
	})

	return out, nil
}

// DisableSecurity permanently disables a security device. Repeat calls on a
// disabled device succeed without changing anything.
func (o *Orchestrator) DisableSecurity(ctx context.Context, input *mapmanager.DisableSecurityInput) (*mapmanager.DisableSecurityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("deviceID", input.DeviceID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	device, _, ok := o.state.FindObject(input.DeviceID)
	if !ok {
		return nil, errors.EntityNotFoundf("no security device with id %q", input.DeviceID)
	}
	if device.Kind != entities.ObjectSecurityDevice || device.Security == nil {
		return nil, errors.InvalidArgumentf("object %q is a %s, not a security device", input.DeviceID, device.Kind)
	}

	if device.Security.Disabled {
		return &mapmanager.DisableSecurityOutput{Device: device, AlreadyDisabled: true}, nil
	}

	device.Security.Disabled = true
	o.state.Ledger.MarkDeviceDisabled(device.ID)

	o.publish(ctx, EventSecurityDisabled, device.ID, "security_device", nil)

	return &mapmanager.DisableSecurityOutput{Device: device}, nil
}

// MoveEntity applies a single-step move on the entity's floor, or a floor
// change when it stands on stairs linked to the destination.
func (o *Orchestrator) MoveEntity(ctx context.Context, input *mapmanager.MoveEntityInput) (*mapmanager.MoveEntityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("entityID", input.EntityID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	e, floor, ok := o.state.FindEntity(input.EntityID)
	if !ok {
		return nil, errors.EntityNotFoundf("no entity with id %q", input.EntityID)
	}

	if input.To.Floor == floor.Number() {
		if err := floor.MoveEntity(e.ID, input.To); err != nil {
			return nil, err
		}
		return &mapmanager.MoveEntityOutput{Position: e.Position}, nil
	}

	if err := o.traverseStairs(e, floor, input.To); err != nil {
		return nil, err
	}
	return &mapmanager.MoveEntityOutput{Position: e.Position}, nil
}

func (o *Orchestrator) traverseStairs(e *entities.Entity, from *world.Floor, to entities.Position) error {
	link, ok := from.StairsAt(e.Position)
	if !ok {
		return errors.InvalidMovef("entity %q is not on stairs, cannot reach floor %d", e.ID, to.Floor)
	}
	if link.TargetFloor != to.Floor || link.Target != to {
		return errors.InvalidMovef("stairs at %s lead to %s, not %s", e.Position, link.Target, to)
	}

	target, err := o.state.Floor(to.Floor)
	if err != nil {
		return err
	}

	prev := e.Position
	from.RemoveEntity(e.ID)
	e.Position = to
	if err := target.PlaceEntity(e); err != nil {
		// Roll back so a blocked landing leaves the world untouched.
		e.Position = prev
		if restoreErr := from.PlaceEntity(e); restoreErr != nil {
			return errors.Wrap(restoreErr, "failed to restore entity after blocked stairs move")
		}
		return errors.WrapWithCode(err, errors.CodeInvalidMove, "stairs landing is blocked")
	}
	return nil
}

// CollectItem removes an interactive object from the world and records it
// in the ledger. Doors, devices, and furniture stay in place; only
// interactives are portable. Collecting an id the ledger already holds
// succeeds idempotently.
func (o *Orchestrator) CollectItem(ctx context.Context, input *mapmanager.CollectItemInput) (*mapmanager.CollectItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("objectID", input.ObjectID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	obj, floor, ok := o.state.FindObject(input.ObjectID)
	if !ok {
		if o.state.Ledger.CollectedItems[input.ObjectID] {
			return &mapmanager.CollectItemOutput{AlreadyCollected: true}, nil
		}
		return nil, errors.EntityNotFoundf("no object with id %q", input.ObjectID)
	}
	if obj.Kind != entities.ObjectInteractive {
		return nil, errors.InvalidArgumentf("object %q is a %s, not an interactive item", input.ObjectID, obj.Kind)
	}

	floor.RemoveObject(obj.ID)
	o.state.Ledger.MarkItemCollected(obj.ID)

	o.publish(ctx, EventItemCollected, obj.ID, string(obj.Kind), nil)

	return &mapmanager.CollectItemOutput{}, nil
}

// TriggerEvent records a scripted event with the current timestamp. An
// empty id gets a generated one.
func (o *Orchestrator) TriggerEvent(ctx context.Context, input *mapmanager.TriggerEventInput) (*mapmanager.TriggerEventOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	id := input.EventID
	if id == "" {
		id = o.idGen.Generate()
	}

	at := o.clock.Now()
	o.state.Ledger.MarkEventTriggered(id, at)

	o.publish(ctx, EventTriggered, id, "scripted_event", map[string]any{
		"at": at,
	})

	return &mapmanager.TriggerEventOutput{EventID: id, At: at}, nil
}

// UpdateAlertLevel recomputes the map alert level from what can currently
// see the player. Each detecting guard or device adds one level; after
// AlertDecayDelay consecutive quiet recomputes the level steps down one per
// recompute.
func (o *Orchestrator) UpdateAlertLevel(ctx context.Context, input *mapmanager.UpdateAlertLevelInput) (*mapmanager.UpdateAlertLevelOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	floor, err := o.state.Floor(input.Player.Floor)
	if err != nil {
		return nil, err
	}

	level, detections := o.recomputeAlert(ctx, floor, input.Player)

	return &mapmanager.UpdateAlertLevelOutput{
		Level:      level,
		Detections: detections,
	}, nil
}

// recomputeAlert applies the detection pressure and decay policy and
// publishes map.alert_changed when the clamped level moves.
func (o *Orchestrator) recomputeAlert(ctx context.Context, floor *world.Floor, player entities.Position) (int, []string) {
	detections := o.detect(floor, player)
	previous := o.state.AlertLevel

	if len(detections) > 0 {
		o.quietRecomputes = 0
		o.state.SetAlertLevel(previous + len(detections))
	} else {
		o.quietRecomputes++
		if o.quietRecomputes >= o.alertDecayDelay {
			o.state.SetAlertLevel(previous - 1)
		}
	}

	if o.state.AlertLevel != previous {
		o.publish(ctx, EventAlertChanged, o.state.Metadata.Name, "map", map[string]any{
			"level":    o.state.AlertLevel,
			"previous": previous,
		})
	}

	return o.state.AlertLevel, detections
}

// detect returns the ids of active devices and guards with line of sight to
// the player, in stable order. Detecting guards remember where they saw the
// player.
func (o *Orchestrator) detect(floor *world.Floor, player entities.Position) []string {
	playerCell := visibility.Cell{X: player.X, Y: player.Y}
	var detections []string

	for _, obj := range floor.Objects() {
		if !obj.Detecting() {
			continue
		}
		seen := visibility.VisibleFrom(floor, obj.Position.X, obj.Position.Y, obj.Security.DetectionRange)
		if seen[playerCell] {
			detections = append(detections, obj.ID)
		}
	}

	for _, e := range floor.Entities() {
		if e.Kind != entities.EntityGuard || e.Guard == nil {
			continue
		}
		seen := visibility.VisibleFrom(floor, e.Position.X, e.Position.Y, o.viewDistance)
		if seen[playerCell] {
			detections = append(detections, e.ID)
			p := player
			e.Guard.LastSeenPlayer = &p
			if e.Guard.AlertLevel < world.AlertMax {
				e.Guard.AlertLevel++
			}
		}
	}

	sort.Strings(detections)
	return detections
}

// publish sends a bus event, logging instead of failing the operation when
// a subscriber errors.
func (o *Orchestrator) publish(ctx context.Context, topic, sourceID, sourceType string, fields map[string]any) {
	event := events.NewGameEvent(topic, entityRef{id: sourceID, typ: sourceType}, nil)
	for k, v := range fields {
		event.Context().Set(k, v)
	}
	if err := o.eventBus.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish map event",
			"topic", topic,
			"source", sourceID,
			"error", err,
		)
	}
}

// entityRef adapts an id to the bus's entity interface.
type entityRef struct {
	id  string
	typ string
}

func (r entityRef) GetID() string   { return r.id }
func (r entityRef) GetType() string { return r.typ }
