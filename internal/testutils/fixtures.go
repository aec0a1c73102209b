package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
)

// TestMapName is the default map name for test fixtures
const TestMapName = "test_office"

// CreateTestMap builds a single-floor office map with one of everything:
// a civilian, a patrolling guard, a camera, a locked door, a desk, and a
// keycard panel.
//
//	##########
//	#........#
//	#..D.....#
//	#........#
//	#........#
//	##########
func CreateTestMap(t *testing.T) *world.MapState {
	t.Helper()

	m := world.NewMapState(entities.Metadata{Name: TestMapName, Type: "office"})

	f, err := world.NewFloor(&world.FloorConfig{Number: 1, Width: 10, Height: 6})
	require.NoError(t, err)
	for y := 1; y < 5; y++ {
		for x := 1; x < 9; x++ {
			require.NoError(t, f.SetTile(x, y, entities.TileFloor))
		}
	}
	require.NoError(t, f.SetTile(3, 2, entities.TileDoor))

	f.SetZone("patrol_main", world.Zone{
		Type: "PATROL",
		Points: []entities.Position{
			{X: 1, Y: 4, Floor: 1},
			{X: 8, Y: 4, Floor: 1},
		},
	})

	require.NoError(t, f.PlaceEntity(entities.NewCivilian("clerk_1",
		entities.Position{X: 1, Y: 1, Floor: 1},
		&entities.CivilianData{Role: "clerk", Routine: "desk"})))

	zone, _ := f.Zone("patrol_main")
	require.NoError(t, f.PlaceEntity(entities.NewGuard("guard_1",
		entities.Position{X: 1, Y: 4, Floor: 1},
		&entities.GuardData{PatrolRoute: zone.Points})))

	require.NoError(t, f.PlaceObject(entities.NewSecurityDevice("camera_1",
		entities.Position{X: 8, Y: 1, Floor: 1},
		&entities.SecurityDeviceData{Active: true, DetectionRange: 4})))

	require.NoError(t, f.PlaceObject(entities.NewDoor("door_1",
		entities.Position{X: 3, Y: 2, Floor: 1},
		&entities.DoorData{Open: false, Locked: true})))

	require.NoError(t, f.PlaceObject(entities.NewFurniture("desk_1",
		entities.Position{X: 5, Y: 3, Floor: 1},
		&entities.FurnitureData{FurnitureType: "desk", BlocksMovement: true})))

	require.NoError(t, f.PlaceObject(entities.NewInteractive("keycard_1",
		entities.Position{X: 6, Y: 1, Floor: 1},
		&entities.InteractiveData{InteractionResult: "opens the side door"})))

	require.NoError(t, m.AddFloor(f))
	require.NoError(t, m.Validate())
	return m
}

// CreateTestMapWithStairs extends CreateTestMap with a second floor linked
// by a stairs pair at (8,4).
func CreateTestMapWithStairs(t *testing.T) *world.MapState {
	t.Helper()

	m := CreateTestMap(t)
	f1, err := m.Floor(1)
	require.NoError(t, err)

	f2, err := world.NewFloor(&world.FloorConfig{Number: 2, Width: 10, Height: 6})
	require.NoError(t, err)
	for y := 1; y < 5; y++ {
		for x := 1; x < 9; x++ {
			require.NoError(t, f2.SetTile(x, y, entities.TileFloor))
		}
	}

	up := entities.Position{X: 8, Y: 4, Floor: 1}
	down := entities.Position{X: 8, Y: 4, Floor: 2}
	require.NoError(t, f1.SetTile(8, 4, entities.TileStairsUp))
	require.NoError(t, f2.SetTile(8, 4, entities.TileStairsDown))
	require.NoError(t, f1.SetStairs(up, world.StairsLink{TargetFloor: 2, Target: down}))
	require.NoError(t, f2.SetStairs(down, world.StairsLink{TargetFloor: 1, Target: up}))

	require.NoError(t, m.AddFloor(f2))
	require.NoError(t, m.Validate())
	return m
}
