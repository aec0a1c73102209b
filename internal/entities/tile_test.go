package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

func TestTileCharBijection(t *testing.T) {
	seen := make(map[rune]entities.TileKind)
	for _, kind := range entities.AllTileKinds() {
		c := kind.Char()

		prev, dup := seen[c]
		require.False(t, dup, "character %q shared by %s and %s", string(c), prev, kind)
		seen[c] = kind

		back, err := entities.TileFromChar(c)
		require.NoError(t, err)
		assert.Equal(t, kind, back)
	}
}

func TestTileFromCharUnknown(t *testing.T) {
	_, err := entities.TileFromChar('X')
	require.Error(t, err)
	assert.True(t, errors.IsUnknownTileCharacter(err))
}

func TestTileFlags(t *testing.T) {
	assert.True(t, entities.TileWall.BlocksMovement())
	assert.True(t, entities.TileWall.BlocksVision())
	assert.False(t, entities.TileWall.IsInteractive())

	assert.False(t, entities.TileFloor.BlocksMovement())
	assert.False(t, entities.TileFloor.BlocksVision())

	// Closed is the base state for doors; windows block movement but never
	// vision.
	assert.True(t, entities.TileDoor.BlocksMovement())
	assert.True(t, entities.TileDoor.BlocksVision())
	assert.True(t, entities.TileDoor.IsInteractive())

	assert.True(t, entities.TileWindow.BlocksMovement())
	assert.False(t, entities.TileWindow.BlocksVision())

	assert.True(t, entities.TileStairsUp.IsInteractive())
	assert.True(t, entities.TileStairsDown.IsInteractive())
	assert.False(t, entities.TileStairsUp.BlocksMovement())
}

func TestVisStateMaskRoundTrip(t *testing.T) {
	for _, s := range []entities.VisState{entities.VisUnexplored, entities.VisSeen, entities.VisVisible} {
		back, err := entities.VisFromMask(s.MaskChar())
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}

	_, err := entities.VisFromMask('x')
	assert.Error(t, err)
}
