package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serumrl/map-engine/internal/entities"
)

func TestPositionAdjacency(t *testing.T) {
	center := entities.Position{X: 5, Y: 5, Floor: 1}

	assert.True(t, center.AdjacentTo(entities.Position{X: 6, Y: 5, Floor: 1}))
	assert.True(t, center.AdjacentTo(entities.Position{X: 4, Y: 4, Floor: 1}))
	assert.False(t, center.AdjacentTo(center), "a position is not adjacent to itself")
	assert.False(t, center.AdjacentTo(entities.Position{X: 7, Y: 5, Floor: 1}))
	assert.False(t, center.AdjacentTo(entities.Position{X: 6, Y: 5, Floor: 2}), "floors do not touch")
}

func TestTransformCivilian(t *testing.T) {
	when := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	civ := entities.NewCivilian("civ_1", entities.Position{X: 1, Y: 1, Floor: 1}, &entities.CivilianData{
		Role: "scientist",
	})

	civ.Transform("capuchin", when)

	require.Equal(t, entities.EntityAnimal, civ.Kind)
	require.NotNil(t, civ.Animal)
	assert.Equal(t, "scientist", civ.Animal.OriginalType)
	assert.Equal(t, "capuchin", civ.Animal.AnimalType)
	assert.Equal(t, when, civ.Animal.TransformTime)
	assert.Nil(t, civ.Civilian)
}

func TestTransformGuardKeepsOriginalType(t *testing.T) {
	g := entities.NewGuard("guard_1", entities.Position{X: 2, Y: 2, Floor: 1}, &entities.GuardData{})

	g.Transform("lemur", time.Now())

	require.NotNil(t, g.Animal)
	assert.Equal(t, "guard", g.Animal.OriginalType)
	assert.Nil(t, g.Guard)
}

func TestTransformIdempotent(t *testing.T) {
	civ := entities.NewCivilian("civ_2", entities.Position{}, &entities.CivilianData{Role: "janitor"})
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	civ.Transform("rat", first)
	civ.Transform("pigeon", first.Add(time.Hour))

	assert.Equal(t, "rat", civ.Animal.AnimalType, "second transform must not change the animal")
	assert.Equal(t, first, civ.Animal.TransformTime)
}

func TestLedgerMarks(t *testing.T) {
	l := entities.NewLedger()

	assert.True(t, l.MarkTransformed("civ_1"))
	assert.False(t, l.MarkTransformed("civ_1"), "second mark reports already present")
	assert.True(t, l.MarkDeviceDisabled("camera_2"))
	assert.True(t, l.MarkDoorUnlocked("door_3"))
	assert.True(t, l.MarkItemCollected("keycard_1"))

	l.MarkEventTriggered("alarm_test", time.Now())
	assert.Len(t, l.TriggeredEvents, 1)
}

func TestSortedIDs(t *testing.T) {
	set := map[string]bool{"b": true, "a": true, "c": true}
	assert.Equal(t, []string{"a", "b", "c"}, entities.SortedIDs(set))
}

func TestObjectBlocksMovement(t *testing.T) {
	crate := entities.NewFurniture("crate_1", entities.Position{}, &entities.FurnitureData{
		FurnitureType:  "crate",
		BlocksMovement: true,
	})
	camera := entities.NewSecurityDevice("camera_1", entities.Position{}, &entities.SecurityDeviceData{
		Active:         true,
		DetectionRange: 5,
	})
	door := entities.NewDoor("door_1", entities.Position{}, &entities.DoorData{})

	assert.True(t, crate.BlocksMovement())
	assert.False(t, camera.BlocksMovement())
	assert.False(t, door.BlocksMovement(), "door blocking comes from the tile, not the object")
	assert.True(t, camera.Detecting())

	camera.Security.Disabled = true
	assert.False(t, camera.Detecting())
}
