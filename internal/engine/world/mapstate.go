package world

import (
	"log/slog"

	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

// Alert level bounds: 0 is quiet, 4 is full lockdown.
const (
	AlertMin = 0
	AlertMax = 4
)

// MapState aggregates the floors of one map with its metadata, alert level,
// and the change ledger. Floors are owned exclusively: nothing outside this
// package hands out or retains floor internals.
type MapState struct {
	Metadata   entities.Metadata
	AlertLevel int
	Ledger     *entities.Ledger

	floors []*Floor
}

// NewMapState creates a map with no floors yet.
func NewMapState(meta entities.Metadata) *MapState {
	return &MapState{
		Metadata: meta,
		Ledger:   entities.NewLedger(),
	}
}

// AddFloor appends a floor. Floor numbers must be contiguous from 1.
func (m *MapState) AddFloor(f *Floor) error {
	if f == nil {
		return errors.InvalidArgument("floor is required")
	}
	want := len(m.floors) + 1
	if f.Number() != want {
		return errors.InvalidArgumentf("floor number %d out of order, want %d", f.Number(), want)
	}
	m.floors = append(m.floors, f)
	return nil
}

// Floor returns the floor with the given 1-based number.
func (m *MapState) Floor(number int) (*Floor, error) {
	if number < 1 || number > len(m.floors) {
		return nil, errors.NotFoundf("no floor %d (map has %d)", number, len(m.floors))
	}
	return m.floors[number-1], nil
}

// Floors returns the floors in order.
func (m *MapState) Floors() []*Floor {
	return m.floors
}

// FloorCount returns the number of floors.
func (m *MapState) FloorCount() int {
	return len(m.floors)
}

// FindEntity locates an actor by id across all floors.
func (m *MapState) FindEntity(id string) (*entities.Entity, *Floor, bool) {
	for _, f := range m.floors {
		if e, ok := f.Entity(id); ok {
			return e, f, true
		}
	}
	return nil, nil, false
}

// FindObject locates an object by id across all floors.
func (m *MapState) FindObject(id string) (*entities.GameObject, *Floor, bool) {
	for _, f := range m.floors {
		if o, ok := f.Object(id); ok {
			return o, f, true
		}
	}
	return nil, nil, false
}

// SetAlertLevel clamps and stores the alert level.
func (m *MapState) SetAlertLevel(level int) {
	if level < AlertMin {
		level = AlertMin
	}
	if level > AlertMax {
		level = AlertMax
	}
	m.AlertLevel = level
}

// Validate checks the cross-cutting invariants: stairs links are symmetric
// between adjacent floors and every ledger id resolves to an entity or
// object whose flags agree with the ledger.
func (m *MapState) Validate() error {
	if err := m.validateStairs(); err != nil {
		return err
	}
	return m.validateLedger()
}

func (m *MapState) validateStairs() error {
	for _, f := range m.floors {
		for _, pos := range f.StairsPositions() {
			link, _ := f.StairsAt(pos)

			up := f.TileAt(pos.X, pos.Y) == entities.TileStairsUp
			wantFloor := f.Number() - 1
			if up {
				wantFloor = f.Number() + 1
			}
			if link.TargetFloor != wantFloor {
				return errors.InvalidArgumentf(
					"stairs at %s link to floor %d, want %d", pos, link.TargetFloor, wantFloor)
			}

			other, err := m.Floor(link.TargetFloor)
			if err != nil {
				return errors.Wrapf(err, "stairs at %s link to missing floor", pos)
			}

			back, ok := other.StairsAt(link.Target)
			if !ok {
				return errors.InvalidArgumentf(
					"stairs at %s have no counterpart at %s on floor %d", pos, link.Target, link.TargetFloor)
			}
			if back.TargetFloor != f.Number() || back.Target != pos {
				return errors.InvalidArgumentf(
					"stairs link %s -> %s is not symmetric", pos, link.Target)
			}

			wantKind := entities.TileStairsDown
			if !up {
				wantKind = entities.TileStairsUp
			}
			if other.TileAt(link.Target.X, link.Target.Y) != wantKind {
				return errors.InvalidArgumentf(
					"stairs counterpart at %s is %s, want %s",
					link.Target, other.TileAt(link.Target.X, link.Target.Y), wantKind)
			}
		}
	}
	return nil
}

func (m *MapState) validateLedger() error {
	if stale := m.staleLedgerIDs(); len(stale) > 0 {
		return errors.InconsistentLedgerf("ledger references unknown id %q", stale[0])
	}

	for id := range m.Ledger.Transformed {
		if e, _, ok := m.FindEntity(id); ok && !e.Transformed() {
			return errors.InconsistentLedgerf("entity %q in transformed ledger is not an animal", id)
		}
	}
	for id := range m.Ledger.DisabledDevices {
		if o, _, ok := m.FindObject(id); ok {
			if o.Security == nil || !o.Security.Disabled {
				return errors.InconsistentLedgerf("device %q in disabled ledger is not disabled", id)
			}
		}
	}
	for id := range m.Ledger.UnlockedDoors {
		if o, _, ok := m.FindObject(id); ok {
			if o.Door == nil || o.Door.Locked {
				return errors.InconsistentLedgerf("door %q in unlocked ledger is still locked", id)
			}
		}
	}
	return nil
}

// RepairLedger drops ledger entries that reference no known entity or
// object, logging each. Loads call this so a stale save degrades instead of
// failing. Collected items are exempt since collection removes the object.
func (m *MapState) RepairLedger(log *slog.Logger) []string {
	stale := m.staleLedgerIDs()
	for _, id := range stale {
		log.Warn("dropping stale ledger entry",
			"map", m.Metadata.Name,
			"id", id,
			"code", errors.CodeInconsistentLedger.String(),
		)
		delete(m.Ledger.Transformed, id)
		delete(m.Ledger.DisabledDevices, id)
		delete(m.Ledger.UnlockedDoors, id)
	}
	return stale
}

func (m *MapState) staleLedgerIDs() []string {
	var stale []string
	for _, id := range entities.SortedIDs(m.Ledger.Transformed) {
		if _, _, ok := m.FindEntity(id); !ok {
			stale = append(stale, id)
		}
	}
	for _, id := range entities.SortedIDs(m.Ledger.DisabledDevices) {
		if _, _, ok := m.FindObject(id); !ok {
			stale = append(stale, id)
		}
	}
	for _, id := range entities.SortedIDs(m.Ledger.UnlockedDoors) {
		if _, _, ok := m.FindObject(id); !ok {
			stale = append(stale, id)
		}
	}
	return stale
}
