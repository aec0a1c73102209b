// Package mapfile reads and writes the sectioned ASCII map format:
//
//	[metadata]        name/type/floors/alert_level/discovered/created_at
//	[state]           the change ledger as comma-joined id lists
//	[floor_N]         fixed-width grid of tile characters
//	[floor_N_visibility]  optional fog-of-war mask ('?' '~' '!')
//	[floor_N_items]   CHAR = TYPE(key:value,...) entity/object bindings
//	[floor_N_zones]   name: { type: TYPE, points: [(x,y), ...] }
//
// Item lines come in two forms. A positioned line carries pos:(x,y) and
// instantiates exactly one entity or object; the writer only emits this
// form, so round-trips are lossless. A template line has no pos and applies
// to every grid occurrence of its character, with a floor tile underneath;
// hand-authored maps use it to scatter identical NPCs without coordinates.
//
// Unknown property keys are never dropped: they land in the property bag
// and re-emit verbatim on write.
package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
	"github.com/serumrl/map-engine/internal/pkg/idgen"
)

// Item type names.
const (
	typeCivilian    = "CIVILIAN"
	typeGuard       = "GUARD"
	typeAnimal      = "ANIMAL"
	typeFurniture   = "FURNITURE"
	typeSecurity    = "SECURITY_DEVICE"
	typeInteractive = "INTERACTIVE"
	typeDoor        = "DOOR"
	typeStairs      = "STAIRS"
)

var (
	sectionRe = regexp.MustCompile(`^\[([a-z0-9_]+)\]$`)
	floorRe   = regexp.MustCompile(`^floor_(\d+)(?:_(items|zones|visibility))?$`)
	zoneRe    = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*:\s*\{\s*type\s*:\s*([A-Za-z0-9_]+)\s*,\s*points\s*:\s*(\[.*\])\s*\}$`)
)

// ParserConfig holds the parser dependencies.
type ParserConfig struct {
	// IDGenerator names entities spawned from template item lines that
	// carry no id. Defaults to a sequential generator per parse.
	IDGenerator idgen.Generator

	// Logger receives parse warnings such as ledger auto-repair. Defaults
	// to slog.Default().
	Logger *slog.Logger

	// AllowStacking permits two blocking actors on one tile, for maps
	// authored with stacked spawns.
	AllowStacking bool
}

// Parser builds MapState values from the text format.
type Parser struct {
	idGen         idgen.Generator
	log           *slog.Logger
	allowStacking bool
}

// NewParser creates a parser. A nil config uses defaults.
func NewParser(cfg *ParserConfig) *Parser {
	if cfg == nil {
		cfg = &ParserConfig{}
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewSequential("item")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Parser{idGen: idGen, log: log, allowStacking: cfg.AllowStacking}
}

// rawFloor accumulates one floor's sections before the build phase.
type rawFloor struct {
	gridRows []string
	visRows  []string
	items    []*itemLine
	zones    map[string]world.Zone
	declared bool
}

// rawMap is the phase-one scan result.
type rawMap struct {
	metadata map[string]string
	state    map[string]string
	floors   map[int]*rawFloor
}

// Parse reads a complete map file. Structural errors abort the load and no
// partial MapState is returned; ledger entries that reference unknown ids
// are dropped with a warning instead.
func (p *Parser) Parse(r io.Reader) (*world.MapState, error) {
	raw, err := p.scan(r)
	if err != nil {
		return nil, err
	}
	return p.build(raw)
}

// ParseString is a convenience wrapper for tests and tooling.
func (p *Parser) ParseString(s string) (*world.MapState, error) {
	return p.Parse(strings.NewReader(s))
}

func (p *Parser) scan(r io.Reader) (*rawMap, error) {
	raw := &rawMap{
		metadata: make(map[string]string),
		state:    make(map[string]string),
		floors:   make(map[int]*rawFloor),
	}

	// Section cursor. kind is "", "metadata", "state", "grid", "items",
	// "zones", or "visibility"; floorNum applies to the floor kinds.
	kind := ""
	floorNum := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)

		// Grid and visibility bodies are verbatim rows; everywhere else
		// blank lines and '#' comments are skipped. A '#' row in a grid is
		// a wall row, not a comment.
		inGridBody := kind == "grid" || kind == "visibility"
		if !inGridBody && (trimmed == "" || strings.HasPrefix(trimmed, "#")) {
			continue
		}
		if inGridBody && trimmed == "" {
			continue
		}

		if m := sectionRe.FindStringSubmatch(trimmed); m != nil {
			name := m[1]
			switch {
			case name == "metadata":
				kind = "metadata"
			case name == "state":
				kind = "state"
			default:
				fm := floorRe.FindStringSubmatch(name)
				if fm == nil {
					return nil, errors.InvalidArgumentf("line %d: unknown section [%s]", lineNo, name)
				}
				floorNum, _ = strconv.Atoi(fm[1])
				if floorNum < 1 {
					return nil, errors.InvalidArgumentf("line %d: floor numbers start at 1, got [%s]", lineNo, name)
				}
				switch fm[2] {
				case "":
					kind = "grid"
					p.floorRaw(raw, floorNum).declared = true
				case "items":
					kind = "items"
				case "zones":
					kind = "zones"
				case "visibility":
					kind = "visibility"
				}
			}
			continue
		}

		switch kind {
		case "metadata":
			key, value, err := splitKeyValue(trimmed)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d in [metadata]", lineNo)
			}
			raw.metadata[key] = value
		case "state":
			key, value, err := splitKeyValue(trimmed)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d in [state]", lineNo)
			}
			raw.state[key] = value
		case "grid":
			fr := p.floorRaw(raw, floorNum)
			fr.gridRows = append(fr.gridRows, line)
		case "visibility":
			fr := p.floorRaw(raw, floorNum)
			fr.visRows = append(fr.visRows, line)
		case "items":
			item, err := parseItemLine(trimmed)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d in [floor_%d_items]", lineNo, floorNum)
			}
			fr := p.floorRaw(raw, floorNum)
			fr.items = append(fr.items, item)
		case "zones":
			name, zone, err := parseZoneLine(trimmed, floorNum)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d in [floor_%d_zones]", lineNo, floorNum)
			}
			fr := p.floorRaw(raw, floorNum)
			fr.zones[name] = zone
		default:
			return nil, errors.InvalidArgumentf("line %d: content before any section: %q", lineNo, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read map file")
	}

	return raw, nil
}

func (p *Parser) floorRaw(raw *rawMap, n int) *rawFloor {
	fr, ok := raw.floors[n]
	if !ok {
		fr = &rawFloor{zones: make(map[string]world.Zone)}
		raw.floors[n] = fr
	}
	return fr
}

func (p *Parser) build(raw *rawMap) (*world.MapState, error) {
	if len(raw.metadata) == 0 {
		return nil, errors.MissingRequiredSection("map file has no [metadata] section")
	}

	meta, floorCount, alert, err := parseMetadata(raw.metadata)
	if err != nil {
		return nil, err
	}

	m := world.NewMapState(meta)
	m.SetAlertLevel(alert)

	for n := 1; n <= floorCount; n++ {
		fr, ok := raw.floors[n]
		if !ok || !fr.declared {
			return nil, errors.MissingRequiredSectionf("metadata declares %d floors but [floor_%d] is missing", floorCount, n)
		}

		floor, err := p.buildFloor(n, fr)
		if err != nil {
			return nil, err
		}
		if err := m.AddFloor(floor); err != nil {
			return nil, err
		}
	}
	for n := range raw.floors {
		if n > floorCount {
			return nil, errors.InvalidArgumentf("[floor_%d] present but metadata declares only %d floors", n, floorCount)
		}
	}

	if err := parseLedger(raw.state, m.Ledger); err != nil {
		return nil, err
	}

	// Stale ledger entries degrade to warnings; everything else fails the
	// load outright.
	m.RepairLedger(p.log)
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "loaded map failed validation")
	}
	return m, nil
}

func (p *Parser) buildFloor(n int, fr *rawFloor) (*world.Floor, error) {
	if len(fr.gridRows) == 0 {
		return nil, errors.MalformedFloorGridf("[floor_%d] has no grid rows", n)
	}

	width := len([]rune(fr.gridRows[0]))
	height := len(fr.gridRows)
	for i, row := range fr.gridRows {
		if len([]rune(row)) != width {
			return nil, errors.MalformedFloorGridf(
				"[floor_%d] row %d has width %d, want %d", n, i+1, len([]rune(row)), width)
		}
	}

	floor, err := world.NewFloor(&world.FloorConfig{
		Number:        n,
		Width:         width,
		Height:        height,
		AllowStacking: p.allowStacking,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create floor %d", n)
	}

	// First pass: tiles. Characters with no tile kind are deferred; they
	// must be bound by a template item line or the grid is malformed.
	type overlay struct {
		char rune
		x, y int
	}
	var overlays []overlay

	for y, row := range fr.gridRows {
		for x, c := range []rune(row) {
			kind, err := entities.TileFromChar(c)
			if err != nil {
				overlays = append(overlays, overlay{char: c, x: x, y: y})
				kind = entities.TileFloor
			}
			if err := floor.SetTile(x, y, kind); err != nil {
				return nil, err
			}
		}
	}

	// Zones go in before items so guards can resolve patrol routes.
	for name, zone := range fr.zones {
		floor.SetZone(name, zone)
	}

	// Positioned items instantiate directly; template lines index by char
	// for the overlay pass. Objects spawn before actors regardless of file
	// order, so a door is in place before anyone is seated in its doorway.
	templates := make(map[rune]*itemLine)
	var positioned []*itemLine
	for _, item := range fr.items {
		if _, ok := item.get("pos"); ok {
			positioned = append(positioned, item)
			continue
		}
		if prev, dup := templates[item.Char]; dup {
			return nil, errors.InvalidArgumentf(
				"floor %d binds character %q twice (%s and %s)", n, string(item.Char), prev.Type, item.Type)
		}
		templates[item.Char] = item
	}

	for _, actorPass := range []bool{false, true} {
		for _, item := range positioned {
			if isActorType(item.Type) != actorPass {
				continue
			}
			posVal, _ := item.get("pos")
			x, y, err := parsePoint(posVal)
			if err != nil {
				return nil, errors.Wrapf(err, "item %q on floor %d", string(item.Char), n)
			}
			if err := p.spawnItem(floor, item, x, y, ""); err != nil {
				return nil, err
			}
		}
	}

	occurrences := make(map[rune]int)
	for _, actorPass := range []bool{false, true} {
		for _, ov := range overlays {
			tmpl, ok := templates[ov.char]
			if !ok {
				return nil, errors.UnknownTileCharacterf(
					"floor %d grid character %q at (%d,%d) has no tile kind and no item binding",
					n, string(ov.char), ov.x, ov.y)
			}
			if isActorType(tmpl.Type) != actorPass {
				continue
			}
			occurrences[ov.char]++
			if err := p.spawnItem(floor, tmpl, ov.x, ov.y, ordinalSuffix(occurrences[ov.char])); err != nil {
				return nil, err
			}
		}
	}

	// Every door tile gets a door object; default closed and unlocked when
	// the map does not spell one out.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := entities.Position{X: x, Y: y, Floor: n}
			if floor.TileAt(x, y) == entities.TileDoor && floor.DoorAt(pos) == nil {
				door := entities.NewDoor(p.idGen.Generate(), pos, &entities.DoorData{})
				if err := floor.PlaceObject(door); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(fr.visRows) > 0 {
		if err := restoreVisibility(floor, fr.visRows); err != nil {
			return nil, err
		}
	}

	return floor, nil
}

// isActorType reports whether a type names a placed entity rather than an
// object or stairs link.
func isActorType(t string) bool {
	switch t {
	case typeCivilian, typeGuard, typeAnimal:
		return true
	}
	return false
}

// ordinalSuffix disambiguates ids when one template spawns several
// instances: the first keeps the declared id, later ones append _2, _3, ...
func ordinalSuffix(occurrence int) string {
	if occurrence <= 1 {
		return ""
	}
	return fmt.Sprintf("_%d", occurrence)
}

func restoreVisibility(floor *world.Floor, rows []string) error {
	if len(rows) != floor.Height() {
		return errors.MalformedFloorGridf(
			"visibility mask for floor %d has %d rows, want %d", floor.Number(), len(rows), floor.Height())
	}
	for y, row := range rows {
		cells := []rune(row)
		if len(cells) != floor.Width() {
			return errors.MalformedFloorGridf(
				"visibility mask row %d has width %d, want %d", y+1, len(cells), floor.Width())
		}
		for x, c := range cells {
			state, err := entities.VisFromMask(c)
			if err != nil {
				return errors.Wrapf(err, "visibility mask at (%d,%d)", x, y)
			}
			if err := floor.Visibility().Restore(x, y, state); err != nil {
				return err
			}
		}
	}
	return nil
}

func splitKeyValue(line string) (string, string, error) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", errors.InvalidArgumentf("expected 'key: value', got %q", line)
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), nil
}

func parseZoneLine(line string, floorNum int) (string, world.Zone, error) {
	m := zoneRe.FindStringSubmatch(line)
	if m == nil {
		return "", world.Zone{}, errors.InvalidArgumentf("bad zone line %q", line)
	}
	points, err := parsePointList(m[3], floorNum)
	if err != nil {
		return "", world.Zone{}, errors.Wrapf(err, "zone %q", m[1])
	}
	return m[1], world.Zone{Type: strings.ToUpper(m[2]), Points: points}, nil
}

func parseMetadata(kv map[string]string) (entities.Metadata, int, int, error) {
	meta := entities.Metadata{
		Name: kv["name"],
		Type: kv["type"],
	}

	floorsVal, ok := kv["floors"]
	if !ok {
		return meta, 0, 0, errors.MissingRequiredSection("[metadata] missing 'floors'")
	}
	floorCount, err := strconv.Atoi(floorsVal)
	if err != nil || floorCount < 1 {
		return meta, 0, 0, errors.InvalidArgumentf("bad floors count %q", floorsVal)
	}

	alert := 0
	if v, ok := kv["alert_level"]; ok {
		alert, err = strconv.Atoi(v)
		if err != nil || alert < world.AlertMin || alert > world.AlertMax {
			return meta, 0, 0, errors.InvalidArgumentf("bad alert_level %q", v)
		}
	}

	if v, ok := kv["discovered"]; ok {
		meta.Discovered, err = strconv.ParseBool(v)
		if err != nil {
			return meta, 0, 0, errors.InvalidArgumentf("bad discovered flag %q", v)
		}
	}

	if v, ok := kv["created_at"]; ok {
		meta.CreatedAt, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return meta, 0, 0, errors.InvalidArgumentf("bad created_at %q", v)
		}
	}

	return meta, floorCount, alert, nil
}

func parseLedger(kv map[string]string, ledger *entities.Ledger) error {
	for _, id := range splitIDList(kv["transformed"]) {
		ledger.MarkTransformed(id)
	}
	for _, id := range splitIDList(kv["disabled_cameras"]) {
		ledger.MarkDeviceDisabled(id)
	}
	for _, id := range splitIDList(kv["unlocked_doors"]) {
		ledger.MarkDoorUnlocked(id)
	}
	for _, id := range splitIDList(kv["collected_items"]) {
		ledger.MarkItemCollected(id)
	}

	for _, entry := range splitIDList(kv["triggered_events"]) {
		at := strings.LastIndex(entry, "@")
		if at < 0 {
			return errors.InvalidArgumentf("bad triggered event %q, want id@timestamp", entry)
		}
		ts, err := time.Parse(time.RFC3339, entry[at+1:])
		if err != nil {
			return errors.InvalidArgumentf("bad triggered event timestamp in %q", entry)
		}
		ledger.MarkEventTriggered(entry[:at], ts)
	}
	return nil
}

func splitIDList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
