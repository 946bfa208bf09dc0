package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/b2t/internal/artifact"
	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/database"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/pkg/math/vector"
)

func testModel(t *testing.T, k int) *artifact.Model {
	t.Helper()
	train, err := bundle.New(bundle.SplitTrain,
		[]vector.V{{0, 0}, {1, 0}, {0, 1}},
		[]string{"s0", "s1", "s2"},
		[]string{"a", "b", "c"},
	)
	require.NoError(t, err)
	m, err := artifact.New(train, k, geom.MetricManhattan, extract.WindowSpec{Window: 4, Stride: 2, Length: 40}, extract.MethodMedianPool)
	require.NoError(t, err)
	return m
}

func TestDB_SaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "model.db"))
	require.NoError(t, err)
	defer db.Close(ctx)

	store := New(db)
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, artifact.ErrNotFound)

	m := testModel(t, 2)
	require.NoError(t, store.Save(ctx, m))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	replacement := testModel(t, 1)
	require.NoError(t, store.Save(ctx, replacement))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, got.ID)
	assert.Equal(t, 1, got.K)
}

func TestSaveLoadFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "models", "model.db")

	_, err := LoadFile(ctx, path)
	require.Error(t, err)

	m := testModel(t, 3)
	require.NoError(t, SaveFile(ctx, path, m))
	got, err := LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}
