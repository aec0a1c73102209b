package world_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

func newTwoFloorMap(t *testing.T) *world.MapState {
	t.Helper()
	m := world.NewMapState(entities.Metadata{Name: "lab", Type: "office"})

	for n := 1; n <= 2; n++ {
		f := openFloor(t, n, 7, 7)
		require.NoError(t, m.AddFloor(f))
	}
	return m
}

func linkStairs(t *testing.T, m *world.MapState) {
	t.Helper()
	f1, err := m.Floor(1)
	require.NoError(t, err)
	f2, err := m.Floor(2)
	require.NoError(t, err)

	up := entities.Position{X: 5, Y: 5, Floor: 1}
	down := entities.Position{X: 5, Y: 5, Floor: 2}

	require.NoError(t, f1.SetTile(5, 5, entities.TileStairsUp))
	require.NoError(t, f2.SetTile(5, 5, entities.TileStairsDown))
	require.NoError(t, f1.SetStairs(up, world.StairsLink{TargetFloor: 2, Target: down}))
	require.NoError(t, f2.SetStairs(down, world.StairsLink{TargetFloor: 1, Target: up}))
}

func TestAddFloorContiguous(t *testing.T) {
	m := world.NewMapState(entities.Metadata{Name: "lab"})

	f2, err := world.NewFloor(&world.FloorConfig{Number: 2, Width: 5, Height: 5})
	require.NoError(t, err)

	err = m.AddFloor(f2)
	assert.Error(t, err, "floors must start at 1")

	f1, err := world.NewFloor(&world.FloorConfig{Number: 1, Width: 5, Height: 5})
	require.NoError(t, err)
	assert.NoError(t, m.AddFloor(f1))
	assert.NoError(t, m.AddFloor(f2))
	assert.Equal(t, 2, m.FloorCount())
}

func TestFloorLookup(t *testing.T) {
	m := newTwoFloorMap(t)

	f, err := m.Floor(2)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Number())

	_, err = m.Floor(3)
	assert.True(t, errors.IsNotFound(err))
	_, err = m.Floor(0)
	assert.True(t, errors.IsNotFound(err))
}

func TestFindAcrossFloors(t *testing.T) {
	m := newTwoFloorMap(t)
	f2, _ := m.Floor(2)
	require.NoError(t, f2.PlaceEntity(entities.NewGuard("guard_1",
		entities.Position{X: 3, Y: 3, Floor: 2}, &entities.GuardData{})))

	e, f, ok := m.FindEntity("guard_1")
	require.True(t, ok)
	assert.Equal(t, 2, f.Number())
	assert.Equal(t, entities.EntityGuard, e.Kind)

	_, _, ok = m.FindEntity("nobody")
	assert.False(t, ok)
}

func TestSetAlertLevelClamps(t *testing.T) {
	m := newTwoFloorMap(t)

	m.SetAlertLevel(9)
	assert.Equal(t, world.AlertMax, m.AlertLevel)
	m.SetAlertLevel(-3)
	assert.Equal(t, world.AlertMin, m.AlertLevel)
}

func TestValidateStairsSymmetry(t *testing.T) {
	m := newTwoFloorMap(t)
	linkStairs(t, m)
	assert.NoError(t, m.Validate())
}

func TestValidateStairsAsymmetric(t *testing.T) {
	m := newTwoFloorMap(t)
	f1, _ := m.Floor(1)

	require.NoError(t, f1.SetTile(5, 5, entities.TileStairsUp))
	require.NoError(t, f1.SetStairs(entities.Position{X: 5, Y: 5, Floor: 1}, world.StairsLink{
		TargetFloor: 2,
		Target:      entities.Position{X: 5, Y: 5, Floor: 2},
	}))

	// Floor 2 has no counterpart.
	assert.Error(t, m.Validate())
}

func TestValidateLedgerConsistency(t *testing.T) {
	m := newTwoFloorMap(t)
	f1, _ := m.Floor(1)

	camera := entities.NewSecurityDevice("camera_1",
		entities.Position{X: 2, Y: 2, Floor: 1},
		&entities.SecurityDeviceData{Active: true, DetectionRange: 5})
	require.NoError(t, f1.PlaceObject(camera))

	m.Ledger.MarkDeviceDisabled("camera_1")
	err := m.Validate()
	assert.True(t, errors.IsInconsistentLedger(err), "ledger says disabled, flag says active")

	camera.Security.Disabled = true
	assert.NoError(t, m.Validate())
}

func TestRepairLedgerDropsStaleIDs(t *testing.T) {
	m := newTwoFloorMap(t)
	m.Ledger.MarkTransformed("long_gone")
	m.Ledger.MarkDeviceDisabled("camera_gone")

	dropped := m.RepairLedger(slog.Default())

	assert.ElementsMatch(t, []string{"long_gone", "camera_gone"}, dropped)
	assert.Empty(t, m.Ledger.Transformed)
	assert.Empty(t, m.Ledger.DisabledDevices)
	assert.NoError(t, m.Validate())
}

func TestTransformedLedgerFlagConsistency(t *testing.T) {
	m := newTwoFloorMap(t)
	f1, _ := m.Floor(1)
	c := civ("civ_1", entities.Position{X: 2, Y: 2, Floor: 1})
	require.NoError(t, f1.PlaceEntity(c))

	m.Ledger.MarkTransformed("civ_1")
	err := m.Validate()
	assert.True(t, errors.IsInconsistentLedger(err))

	c.Transform("ferret", time.Now())
	assert.NoError(t, m.Validate())
}
