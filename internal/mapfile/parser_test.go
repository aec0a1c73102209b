package mapfile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

const bankLobby = `[metadata]
name: bank_lobby
type: office
floors: 2
alert_level: 1
discovered: true
created_at: 2026-08-20T09:00:00Z

[state]
transformed: teller_2
collected_items: keycard_1

[floor_1]
#######
#..D..#
#.....#
#..<..#
#######

[floor_1_items]
C = CIVILIAN(id:clerk_1,role:clerk,routine:desk,pos:(1,1))
G = GUARD(id:guard_1,route:lobby_patrol,pos:(5,1))
A = ANIMAL(id:teller_2,original:teller,animal:ferret,friendly:true,pos:(1,2))
S = SECURITY_DEVICE(id:camera_1,active:true,range:4,pos:(5,2))
D = DOOR(id:door_1,open:false,locked:true,pos:(3,1))
< = STAIRS(dir:up,target:(3,3),target_floor:2,pos:(3,3))

[floor_1_zones]
lobby_patrol: { type: PATROL, points: [(1,3), (5,3)] }

[floor_2]
#######
#.....#
#.....#
#..>..#
#######

[floor_2_items]
> = STAIRS(dir:down,target:(3,3),target_floor:1,pos:(3,3))
`

func TestParseFullMap(t *testing.T) {
	m, err := NewParser(nil).ParseString(bankLobby)
	require.NoError(t, err)

	assert.Equal(t, "bank_lobby", m.Metadata.Name)
	assert.Equal(t, "office", m.Metadata.Type)
	assert.True(t, m.Metadata.Discovered)
	assert.Equal(t, 1, m.AlertLevel)
	assert.Equal(t, 2, m.FloorCount())
	assert.Equal(t, time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC), m.Metadata.CreatedAt)

	f1, err := m.Floor(1)
	require.NoError(t, err)
	assert.Equal(t, 7, f1.Width())
	assert.Equal(t, 5, f1.Height())
	assert.Equal(t, entities.TileDoor, f1.TileAt(3, 1))
	assert.Equal(t, entities.TileStairsUp, f1.TileAt(3, 3))

	clerk, ok := f1.Entity("clerk_1")
	require.True(t, ok)
	assert.Equal(t, "clerk", clerk.Civilian.Role)
	assert.Equal(t, entities.Position{X: 1, Y: 1, Floor: 1}, clerk.Position)

	ferret, ok := f1.Entity("teller_2")
	require.True(t, ok)
	assert.True(t, ferret.Transformed())
	assert.Equal(t, "teller", ferret.Animal.OriginalType)
	assert.True(t, ferret.Animal.Friendly)

	camera, ok := f1.Object("camera_1")
	require.True(t, ok)
	assert.True(t, camera.Detecting())
	assert.Equal(t, 4, camera.Security.DetectionRange)

	door := f1.DoorAt(entities.Position{X: 3, Y: 1, Floor: 1})
	require.NotNil(t, door)
	assert.Equal(t, "door_1", door.ID)
	assert.True(t, door.Door.Locked)

	assert.True(t, m.Ledger.Transformed["teller_2"])
	assert.True(t, m.Ledger.CollectedItems["keycard_1"])
}

func TestParseResolvesGuardRoute(t *testing.T) {
	m, err := NewParser(nil).ParseString(bankLobby)
	require.NoError(t, err)

	f1, _ := m.Floor(1)
	guard, ok := f1.Entity("guard_1")
	require.True(t, ok)
	assert.Equal(t, []entities.Position{
		{X: 1, Y: 3, Floor: 1},
		{X: 5, Y: 3, Floor: 1},
	}, guard.Guard.PatrolRoute)
}

func TestParseStairsLinkBothFloors(t *testing.T) {
	m, err := NewParser(nil).ParseString(bankLobby)
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	f1, _ := m.Floor(1)
	link, ok := f1.StairsAt(entities.Position{X: 3, Y: 3, Floor: 1})
	require.True(t, ok)
	assert.Equal(t, 2, link.TargetFloor)
	assert.Equal(t, entities.Position{X: 3, Y: 3, Floor: 2}, link.Target)
}

func TestParseTemplateItemsSpawnPerOccurrence(t *testing.T) {
	src := `[metadata]
name: cells
floors: 1

[floor_1]
#####
#C.C#
#####

[floor_1_items]
C = CIVILIAN(id:hostage,role:hostage)
`
	m, err := NewParser(nil).ParseString(src)
	require.NoError(t, err)

	f1, _ := m.Floor(1)
	require.Len(t, f1.Entities(), 2)

	first, ok := f1.Entity("hostage")
	require.True(t, ok)
	assert.Equal(t, entities.Position{X: 1, Y: 1, Floor: 1}, first.Position)

	second, ok := f1.Entity("hostage_2")
	require.True(t, ok)
	assert.Equal(t, entities.Position{X: 3, Y: 1, Floor: 1}, second.Position)

	// The template character overlays a walkable floor tile.
	assert.Equal(t, entities.TileFloor, f1.TileAt(1, 1))
}

func TestParseDoorTileGetsDefaultDoor(t *testing.T) {
	src := `[metadata]
name: hall
floors: 1

[floor_1]
#####
#.D.#
#####
`
	m, err := NewParser(nil).ParseString(src)
	require.NoError(t, err)

	f1, _ := m.Floor(1)
	door := f1.DoorAt(entities.Position{X: 2, Y: 1, Floor: 1})
	require.NotNil(t, door)
	assert.False(t, door.Door.Open)
	assert.False(t, door.Door.Locked)
}

func TestParseRaggedGridFails(t *testing.T) {
	src := `[metadata]
name: broken
floors: 1

[floor_1]
#####
#..#
#####
`
	_, err := NewParser(nil).ParseString(src)
	assert.True(t, errors.IsMalformedFloorGrid(err))
}

func TestParseMissingFloorSectionFails(t *testing.T) {
	src := `[metadata]
name: broken
floors: 2

[floor_1]
###
#.#
###
`
	_, err := NewParser(nil).ParseString(src)
	assert.True(t, errors.IsMissingRequiredSection(err))
}

func TestParseFloorZeroRejected(t *testing.T) {
	src := `[metadata]
name: broken
floors: 1

[floor_0]
###
#.#
###

[floor_1]
###
#.#
###
`
	_, err := NewParser(nil).ParseString(src)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestParseMissingMetadataFails(t *testing.T) {
	_, err := NewParser(nil).ParseString("[floor_1]\n###\n")
	assert.True(t, errors.IsMissingRequiredSection(err))
}

func TestParseUnboundGridCharacterFails(t *testing.T) {
	src := `[metadata]
name: broken
floors: 1

[floor_1]
###
#X#
###
`
	_, err := NewParser(nil).ParseString(src)
	assert.True(t, errors.IsUnknownTileCharacter(err))
}

func TestParseStaleLedgerEntryIsDropped(t *testing.T) {
	src := `[metadata]
name: stale
floors: 1

[state]
transformed: long_gone
collected_items: keycard_9

[floor_1]
###
#.#
###
`
	m, err := NewParser(nil).ParseString(src)
	require.NoError(t, err, "stale ledger ids degrade, not fail")

	assert.Empty(t, m.Ledger.Transformed)
	assert.True(t, m.Ledger.CollectedItems["keycard_9"], "collected items are exempt from repair")
}

func TestParseVisibilityMask(t *testing.T) {
	src := `[metadata]
name: fog
floors: 1

[floor_1]
#####
#...#
#####

[floor_1_visibility]
?~~~?
?~!~?
?????
`
	m, err := NewParser(nil).ParseString(src)
	require.NoError(t, err)

	f1, _ := m.Floor(1)
	assert.True(t, f1.Visibility().IsVisible(2, 1))
	assert.True(t, f1.Visibility().IsExplored(1, 1))
	assert.False(t, f1.Visibility().IsExplored(0, 0))
}

func TestParseEscapedPropertyValues(t *testing.T) {
	src := `[metadata]
name: escapes
floors: 1

[floor_1]
#####
#...#
#####

[floor_1_items]
I = INTERACTIVE(id:panel_1,result:open\, then run,pos:(2,1))
`
	m, err := NewParser(nil).ParseString(src)
	require.NoError(t, err)

	f1, _ := m.Floor(1)
	panel, ok := f1.Object("panel_1")
	require.True(t, ok)
	assert.Equal(t, "open, then run", panel.Interactive.InteractionResult)
}

func TestParseUnknownKeysLandInPropertyBag(t *testing.T) {
	src := `[metadata]
name: extras
floors: 1

[floor_1]
#####
#...#
#####

[floor_1_items]
C = CIVILIAN(id:clerk_1,role:clerk,mood:nervous,pos:(1,1))
`
	m, err := NewParser(nil).ParseString(src)
	require.NoError(t, err)

	f1, _ := m.Floor(1)
	clerk, _ := f1.Entity("clerk_1")
	mood, ok := clerk.Property("mood")
	require.True(t, ok)
	assert.Equal(t, "nervous", mood)
}

func TestParseTriggeredEvents(t *testing.T) {
	src := `[metadata]
name: events
floors: 1

[state]
triggered_events: alarm_test@2026-08-20T10:30:00Z

[floor_1]
###
#.#
###
`
	m, err := NewParser(nil).ParseString(src)
	require.NoError(t, err)

	require.Len(t, m.Ledger.TriggeredEvents, 1)
	assert.Equal(t, "alarm_test", m.Ledger.TriggeredEvents[0].ID)
	assert.Equal(t, time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC), m.Ledger.TriggeredEvents[0].At)
}
