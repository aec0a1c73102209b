package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

func pos(x, y int) entities.Position {
	return entities.Position{X: x, Y: y, Floor: 1}
}

func civ(id string, p entities.Position) *entities.Entity {
	return entities.NewCivilian(id, p, &entities.CivilianData{Role: "clerk"})
}

func TestRegistryAddAndLookup(t *testing.T) {
	r := world.NewRegistry(false)

	require.NoError(t, r.AddEntity(civ("civ_1", pos(2, 3))))

	e, ok := r.Entity("civ_1")
	require.True(t, ok)
	assert.Equal(t, pos(2, 3), e.Position)

	at := r.EntitiesAt(pos(2, 3))
	require.Len(t, at, 1)
	assert.Equal(t, "civ_1", at[0].ID)
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	r := world.NewRegistry(false)
	require.NoError(t, r.AddEntity(civ("civ_1", pos(0, 0))))

	err := r.AddEntity(civ("civ_1", pos(1, 1)))
	assert.Equal(t, errors.CodeAlreadyExists, errors.GetCode(err))
}

func TestRegistryNoStackingByDefault(t *testing.T) {
	r := world.NewRegistry(false)
	require.NoError(t, r.AddEntity(civ("civ_1", pos(2, 2))))

	err := r.AddEntity(civ("civ_2", pos(2, 2)))
	assert.True(t, errors.IsPositionOccupied(err))
}

func TestRegistryStackingAllowed(t *testing.T) {
	r := world.NewRegistry(true)
	require.NoError(t, r.AddEntity(civ("civ_1", pos(2, 2))))
	require.NoError(t, r.AddEntity(civ("civ_2", pos(2, 2))))

	assert.Len(t, r.EntitiesAt(pos(2, 2)), 2)
}

func TestRegistryMoveKeepsIndexInSync(t *testing.T) {
	r := world.NewRegistry(false)
	require.NoError(t, r.AddEntity(civ("civ_1", pos(1, 1))))

	require.NoError(t, r.MoveEntity("civ_1", pos(1, 2)))

	assert.Empty(t, r.EntitiesAt(pos(1, 1)), "old index entry must be gone")
	require.Len(t, r.EntitiesAt(pos(1, 2)), 1)

	e, _ := r.Entity("civ_1")
	assert.Equal(t, pos(1, 2), e.Position)
}

func TestRegistryMoveUnknownID(t *testing.T) {
	r := world.NewRegistry(false)
	err := r.MoveEntity("ghost", pos(0, 0))
	assert.True(t, errors.IsEntityNotFound(err))
}

func TestRegistryMoveOntoBlocker(t *testing.T) {
	r := world.NewRegistry(false)
	require.NoError(t, r.AddEntity(civ("civ_1", pos(1, 1))))
	require.NoError(t, r.AddEntity(civ("civ_2", pos(1, 2))))

	err := r.MoveEntity("civ_1", pos(1, 2))
	assert.True(t, errors.IsInvalidMove(err))

	e, _ := r.Entity("civ_1")
	assert.Equal(t, pos(1, 1), e.Position, "failed move leaves position unchanged")
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := world.NewRegistry(false)
	require.NoError(t, r.AddEntity(civ("civ_1", pos(1, 1))))

	r.RemoveEntity("civ_1")
	r.RemoveEntity("civ_1")
	r.RemoveEntity("never_existed")

	_, ok := r.Entity("civ_1")
	assert.False(t, ok)
	assert.Empty(t, r.EntitiesAt(pos(1, 1)))
}

func TestRegistryObjectsShareTiles(t *testing.T) {
	r := world.NewRegistry(false)

	desk := entities.NewFurniture("desk_1", pos(3, 3), &entities.FurnitureData{
		FurnitureType: "desk", BlocksMovement: false,
	})
	camera := entities.NewSecurityDevice("camera_1", pos(3, 3), &entities.SecurityDeviceData{
		Active: true, DetectionRange: 6,
	})

	require.NoError(t, r.AddObject(desk))
	require.NoError(t, r.AddObject(camera))
	assert.Len(t, r.ObjectsAt(pos(3, 3)), 2)

	r.RemoveObject("desk_1")
	assert.Len(t, r.ObjectsAt(pos(3, 3)), 1)
}

func TestRegistryBlockerAt(t *testing.T) {
	r := world.NewRegistry(false)

	crate := entities.NewFurniture("crate_1", pos(4, 4), &entities.FurnitureData{
		FurnitureType: "crate", BlocksMovement: true,
	})
	require.NoError(t, r.AddObject(crate))

	assert.True(t, r.BlockerAt(pos(4, 4)))
	assert.False(t, r.BlockerAt(pos(4, 5)))

	err := r.AddEntity(civ("civ_1", pos(4, 4)))
	assert.True(t, errors.IsPositionOccupied(err), "blocking furniture occupies the tile")
}

func TestRegistryDeterministicOrder(t *testing.T) {
	r := world.NewRegistry(false)
	require.NoError(t, r.AddEntity(civ("b", pos(0, 0))))
	require.NoError(t, r.AddEntity(civ("a", pos(1, 0))))
	require.NoError(t, r.AddEntity(civ("c", pos(2, 0))))

	var ids []string
	for _, e := range r.Entities() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
