package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/database"
	"github.com/go-sod/b2t/pkg/math/vector"
)

func openDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "features.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close(context.Background())
	})
	return db
}

func testBundle(t *testing.T, split string, base float64) *bundle.Bundle {
	t.Helper()
	b, err := bundle.New(split,
		[]vector.V{{base, 0.1}, {base + 1, 1.0 / 3}, {base + 2, -7.25}},
		[]string{split + "-a", split + "-b", split + "-c"},
		[]string{"hello", "world", "hello"},
	)
	require.NoError(t, err)
	return b
}

func TestDB_SaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New(openDB(t))

	train := testBundle(t, bundle.SplitTrain, 0)
	val := testBundle(t, bundle.SplitVal, 10)
	require.NoError(t, store.Save(ctx, train))
	require.NoError(t, store.Save(ctx, val))

	got, err := store.Load(ctx, bundle.SplitTrain)
	require.NoError(t, err)
	assert.Equal(t, train, got)

	again, err := store.Load(ctx, bundle.SplitTrain)
	require.NoError(t, err)
	assert.Equal(t, got, again, "loading must be idempotent")

	splits, err := store.Splits()
	require.NoError(t, err)
	assert.Equal(t, []string{bundle.SplitTrain, bundle.SplitVal}, splits)
}

func TestDB_SaveReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New(openDB(t))

	require.NoError(t, store.Save(ctx, testBundle(t, bundle.SplitTest, 0)))
	replacement, err := bundle.New(bundle.SplitTest, []vector.V{{42}}, []string{"only"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, replacement))

	got, err := store.Load(ctx, bundle.SplitTest)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
	assert.False(t, got.Labeled())
}

func TestDB_LoadMissing(t *testing.T) {
	t.Parallel()
	store := New(openDB(t))
	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, bundle.ErrNotFound)

	require.NoError(t, store.Delete(context.Background(), "nope"))
}

func TestDB_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New(openDB(t))
	require.NoError(t, store.Save(ctx, testBundle(t, bundle.SplitVal, 1)))
	require.NoError(t, store.Delete(ctx, bundle.SplitVal))
	_, err := store.Load(ctx, bundle.SplitVal)
	assert.ErrorIs(t, err, bundle.ErrNotFound)
}

func TestDB_Reopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "features_val.db")

	db, err := database.Open(ctx, path)
	require.NoError(t, err)
	val := testBundle(t, bundle.SplitVal, 3)
	require.NoError(t, New(db).Save(ctx, val))
	require.NoError(t, db.Close(ctx))

	ro, err := database.OpenReadOnly(ctx, path)
	require.NoError(t, err)
	defer ro.Close(ctx)
	got, err := New(ro).Load(ctx, bundle.SplitVal)
	require.NoError(t, err)
	assert.Equal(t, val, got)
}
