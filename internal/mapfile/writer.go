package mapfile

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

// Writer renders a MapState back into the text format. Output is
// deterministic: entities, objects, zones, and ledger ids all sort by name,
// and every item line carries an explicit pos so parse(write(m)) rebuilds m
// exactly.
type Writer struct{}

// NewWriter creates a writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the full map file.
func (w *Writer) Write(out io.Writer, m *world.MapState) error {
	var b strings.Builder

	w.writeMetadata(&b, m)
	w.writeState(&b, m)
	for _, floor := range m.Floors() {
		w.writeFloor(&b, floor)
	}

	if _, err := io.WriteString(out, b.String()); err != nil {
		return errors.Wrap(err, "failed to write map file")
	}
	return nil
}

// WriteString renders to a string, for tests and the redis repository.
func (w *Writer) WriteString(m *world.MapState) (string, error) {
	var b strings.Builder
	if err := w.Write(&b, m); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (w *Writer) writeMetadata(b *strings.Builder, m *world.MapState) {
	b.WriteString("[metadata]\n")
	fmt.Fprintf(b, "name: %s\n", m.Metadata.Name)
	fmt.Fprintf(b, "type: %s\n", m.Metadata.Type)
	fmt.Fprintf(b, "floors: %d\n", m.FloorCount())
	fmt.Fprintf(b, "alert_level: %d\n", m.AlertLevel)
	fmt.Fprintf(b, "discovered: %t\n", m.Metadata.Discovered)
	if !m.Metadata.CreatedAt.IsZero() {
		fmt.Fprintf(b, "created_at: %s\n", m.Metadata.CreatedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n")
}

func (w *Writer) writeState(b *strings.Builder, m *world.MapState) {
	b.WriteString("[state]\n")
	writeIDList(b, "transformed", m.Ledger.Transformed)
	writeIDList(b, "disabled_cameras", m.Ledger.DisabledDevices)
	writeIDList(b, "unlocked_doors", m.Ledger.UnlockedDoors)
	writeIDList(b, "collected_items", m.Ledger.CollectedItems)

	if len(m.Ledger.TriggeredEvents) > 0 {
		entries := make([]string, len(m.Ledger.TriggeredEvents))
		for i, ev := range m.Ledger.TriggeredEvents {
			entries[i] = fmt.Sprintf("%s@%s", ev.ID, ev.At.UTC().Format(time.RFC3339))
		}
		fmt.Fprintf(b, "triggered_events: %s\n", strings.Join(entries, ", "))
	}
	b.WriteString("\n")
}

func writeIDList(b *strings.Builder, key string, set map[string]bool) {
	if len(set) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", key, strings.Join(entities.SortedIDs(set), ", "))
}

func (w *Writer) writeFloor(b *strings.Builder, f *world.Floor) {
	n := f.Number()

	fmt.Fprintf(b, "[floor_%d]\n", n)
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			b.WriteRune(f.TileAt(x, y).Char())
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if explored := anyExplored(f); explored {
		fmt.Fprintf(b, "[floor_%d_visibility]\n", n)
		for y := 0; y < f.Height(); y++ {
			for x := 0; x < f.Width(); x++ {
				b.WriteRune(f.Visibility().State(x, y).MaskChar())
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Guards without a matching named zone get a synthetic patrol zone so
	// the route survives the round trip. Objects precede actors so a
	// re-parse has doors in place before it seats anyone in a doorway.
	extraZones := make(map[string]world.Zone)
	var items []string
	for _, o := range f.Objects() {
		items = append(items, w.objectLine(o))
	}
	for _, pos := range f.StairsPositions() {
		items = append(items, w.stairsLine(f, pos))
	}
	for _, e := range f.Entities() {
		items = append(items, w.entityLine(f, e, extraZones))
	}
	if len(items) > 0 {
		fmt.Fprintf(b, "[floor_%d_items]\n", n)
		for _, line := range items {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	names := f.ZoneNames()
	for name := range extraZones {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintf(b, "[floor_%d_zones]\n", n)
		for _, name := range names {
			zone, ok := f.Zone(name)
			if !ok {
				zone = extraZones[name]
			}
			fmt.Fprintf(b, "%s: { type: %s, points: %s }\n", name, zone.Type, formatPointList(zone.Points))
		}
		b.WriteString("\n")
	}
}

func anyExplored(f *world.Floor) bool {
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			if f.Visibility().State(x, y) != entities.VisUnexplored {
				return true
			}
		}
	}
	return false
}

func (w *Writer) entityLine(f *world.Floor, e *entities.Entity, extraZones map[string]world.Zone) string {
	props := []string{fmt.Sprintf("id:%s", escapeValue(e.ID))}

	var char rune
	var typeName string
	switch e.Kind {
	case entities.EntityCivilian:
		char, typeName = 'C', typeCivilian
		if e.Civilian != nil {
			props = appendNonEmpty(props, "role", e.Civilian.Role)
			props = appendNonEmpty(props, "routine", e.Civilian.Routine)
			props = appendNonEmpty(props, "transformed_type", e.Civilian.TransformedType)
		}
	case entities.EntityGuard:
		char, typeName = 'G', typeGuard
		if e.Guard != nil {
			if e.Guard.AlertLevel != 0 {
				props = append(props, fmt.Sprintf("alert:%d", e.Guard.AlertLevel))
			}
			if len(e.Guard.PatrolRoute) > 0 {
				props = append(props, fmt.Sprintf("route:%s", w.routeZone(f, e, extraZones)))
			}
			if e.Guard.LastSeenPlayer != nil {
				props = append(props, fmt.Sprintf("last_seen:%s",
					formatPoint(e.Guard.LastSeenPlayer.X, e.Guard.LastSeenPlayer.Y)))
			}
		}
	case entities.EntityAnimal:
		char, typeName = 'A', typeAnimal
		if e.Animal != nil {
			props = appendNonEmpty(props, "original", e.Animal.OriginalType)
			props = appendNonEmpty(props, "animal", e.Animal.AnimalType)
			if !e.Animal.TransformTime.IsZero() {
				props = append(props, fmt.Sprintf("transform_time:%s",
					e.Animal.TransformTime.UTC().Format(time.RFC3339)))
			}
			if e.Animal.Friendly {
				props = append(props, "friendly:true")
			}
		}
	}

	props = append(props, formatExtraProps(typeName, e.Properties)...)
	props = append(props, fmt.Sprintf("pos:%s", formatPoint(e.Position.X, e.Position.Y)))
	return fmt.Sprintf("%c = %s(%s)", char, typeName, strings.Join(props, ","))
}

// routeZone finds a named zone matching the guard's patrol route, or
// registers a synthetic one named after the guard.
func (w *Writer) routeZone(f *world.Floor, e *entities.Entity, extraZones map[string]world.Zone) string {
	for _, name := range f.ZoneNames() {
		zone, _ := f.Zone(name)
		if samePoints(zone.Points, e.Guard.PatrolRoute) {
			return name
		}
	}
	name := "patrol_" + e.ID
	extraZones[name] = world.Zone{Type: "PATROL", Points: e.Guard.PatrolRoute}
	return name
}

func samePoints(a, b []entities.Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (w *Writer) objectLine(o *entities.GameObject) string {
	props := []string{fmt.Sprintf("id:%s", escapeValue(o.ID))}

	var char rune
	var typeName string
	switch o.Kind {
	case entities.ObjectFurniture:
		char, typeName = 'F', typeFurniture
		if o.Furniture != nil {
			props = appendNonEmpty(props, "furniture", o.Furniture.FurnitureType)
			if o.Furniture.Movable {
				props = append(props, "movable:true")
			}
			if o.Furniture.BlocksMovement {
				props = append(props, "blocks:true")
			}
		}
	case entities.ObjectSecurityDevice:
		char, typeName = 'S', typeSecurity
		if o.Security != nil {
			props = append(props, fmt.Sprintf("active:%t", o.Security.Active))
			if o.Security.Disabled {
				props = append(props, "disabled:true")
			}
			if o.Security.DetectionRange != 0 {
				props = append(props, fmt.Sprintf("range:%d", o.Security.DetectionRange))
			}
			props = appendNonEmpty(props, "trigger", o.Security.TriggerCondition)
		}
	case entities.ObjectInteractive:
		char, typeName = 'I', typeInteractive
		if o.Interactive != nil {
			if o.Interactive.Used {
				props = append(props, "used:true")
			}
			if o.Interactive.RequiresKeycard {
				props = append(props, "keycard:true")
			}
			props = appendNonEmpty(props, "result", o.Interactive.InteractionResult)
		}
	case entities.ObjectDoor:
		char, typeName = 'D', typeDoor
		if o.Door != nil {
			props = append(props, fmt.Sprintf("open:%t", o.Door.Open))
			props = append(props, fmt.Sprintf("locked:%t", o.Door.Locked))
		}
	}

	props = append(props, formatExtraProps(typeName, o.Properties)...)
	props = append(props, fmt.Sprintf("pos:%s", formatPoint(o.Position.X, o.Position.Y)))
	return fmt.Sprintf("%c = %s(%s)", char, typeName, strings.Join(props, ","))
}

func (w *Writer) stairsLine(f *world.Floor, pos entities.Position) string {
	link, _ := f.StairsAt(pos)

	char := '<'
	dir := "up"
	if f.TileAt(pos.X, pos.Y) == entities.TileStairsDown {
		char = '>'
		dir = "down"
	}

	return fmt.Sprintf("%c = %s(dir:%s,target:%s,target_floor:%d,pos:%s)",
		char, typeStairs, dir,
		formatPoint(link.Target.X, link.Target.Y), link.TargetFloor,
		formatPoint(pos.X, pos.Y))
}

func appendNonEmpty(props []string, key, value string) []string {
	if value == "" {
		return props
	}
	return append(props, fmt.Sprintf("%s:%s", key, escapeValue(value)))
}

// formatExtraProps renders property-bag keys in sorted order, skipping any
// that collide with the type's own keys.
func formatExtraProps(typeName string, bag map[string]string) []string {
	if len(bag) == 0 {
		return nil
	}
	known := knownKeys[typeName]
	keys := make([]string, 0, len(bag))
	for k := range bag {
		if !known[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s:%s", escapeValue(k), escapeValue(bag[k])))
	}
	return out
}
