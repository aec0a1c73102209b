package entities

import (
	"sort"
	"time"
)

// Metadata describes a map as a whole.
type Metadata struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	Discovered bool      `json:"discovered"`
}

// TriggeredEvent records a scripted event that has fired.
type TriggeredEvent struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// Ledger is the authoritative record of state changes on a map: which NPCs
// were transformed, which devices disabled, which doors unlocked, which
// items collected, and which scripted events fired. "Has this happened"
// queries go through the ledger, and per-entity flags must stay consistent
// with ledger membership.
type Ledger struct {
	Transformed     map[string]bool  `json:"transformed"`
	DisabledDevices map[string]bool  `json:"disabled_devices"`
	UnlockedDoors   map[string]bool  `json:"unlocked_doors"`
	CollectedItems  map[string]bool  `json:"collected_items"`
	TriggeredEvents []TriggeredEvent `json:"triggered_events"`
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Transformed:     make(map[string]bool),
		DisabledDevices: make(map[string]bool),
		UnlockedDoors:   make(map[string]bool),
		CollectedItems:  make(map[string]bool),
	}
}

// MarkTransformed records an NPC transformation. Returns false if the id
// was already recorded.
func (l *Ledger) MarkTransformed(id string) bool {
	return mark(l.Transformed, id)
}

// MarkDeviceDisabled records a disabled security device.
func (l *Ledger) MarkDeviceDisabled(id string) bool {
	return mark(l.DisabledDevices, id)
}

// MarkDoorUnlocked records an unlocked door.
func (l *Ledger) MarkDoorUnlocked(id string) bool {
	return mark(l.UnlockedDoors, id)
}

// MarkItemCollected records a collected item.
func (l *Ledger) MarkItemCollected(id string) bool {
	return mark(l.CollectedItems, id)
}

// MarkEventTriggered appends a scripted-event record.
func (l *Ledger) MarkEventTriggered(id string, at time.Time) {
	l.TriggeredEvents = append(l.TriggeredEvents, TriggeredEvent{ID: id, At: at})
}

func mark(set map[string]bool, id string) bool {
	if set[id] {
		return false
	}
	set[id] = true
	return true
}

// SortedIDs returns the ids in a ledger set in stable order, for
// serialization and logging.
func SortedIDs(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
