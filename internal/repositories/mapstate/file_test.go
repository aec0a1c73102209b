package mapstate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serumrl/map-engine/internal/errors"
	"github.com/serumrl/map-engine/internal/repositories/mapstate"
	"github.com/serumrl/map-engine/internal/testutils"
)

func newFileRepo(t *testing.T) (mapstate.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := mapstate.NewFileRepository(&mapstate.FileConfig{Dir: dir})
	require.NoError(t, err)
	return repo, dir
}

func TestFileRepositorySaveAndGet(t *testing.T) {
	repo, dir := newFileRepo(t)
	ctx := context.Background()

	m := testutils.CreateTestMapWithStairs(t)
	_, err := repo.Save(ctx, mapstate.SaveInput{State: m})
	require.NoError(t, err)

	// One plain text file per map.
	data, err := os.ReadFile(filepath.Join(dir, testutils.TestMapName+".map"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[metadata]")

	out, err := repo.Get(ctx, mapstate.GetInput{Name: testutils.TestMapName})
	require.NoError(t, err)
	assert.Equal(t, 2, out.State.FloorCount())
	require.NoError(t, out.State.Validate())
}

func TestFileRepositoryGetMissing(t *testing.T) {
	repo, _ := newFileRepo(t)

	_, err := repo.Get(context.Background(), mapstate.GetInput{Name: "nowhere"})
	assert.True(t, errors.IsNotFound(err))
}

func TestFileRepositoryRejectsPathEscapes(t *testing.T) {
	repo, _ := newFileRepo(t)

	_, err := repo.Get(context.Background(), mapstate.GetInput{Name: "../etc/passwd"})
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestFileRepositoryListAndDelete(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	list, err := repo.List(ctx, mapstate.ListInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Names)

	m := testutils.CreateTestMap(t)
	_, err = repo.Save(ctx, mapstate.SaveInput{State: m})
	require.NoError(t, err)

	list, err = repo.List(ctx, mapstate.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{testutils.TestMapName}, list.Names)

	_, err = repo.Delete(ctx, mapstate.DeleteInput{Name: testutils.TestMapName})
	require.NoError(t, err)

	_, err = repo.Delete(ctx, mapstate.DeleteInput{Name: testutils.TestMapName})
	assert.True(t, errors.IsNotFound(err))
}
