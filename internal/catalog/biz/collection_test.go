package biz_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
)

func TestCollectionCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.collectionUC.Create(ctx, "wallpapers")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "wallpapers", c.Name)
	assert.True(t, env.store.DirExists("wallpapers"))

	got, err := env.collections.GetByName(ctx, "wallpapers")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestCollectionCreateRejectsDuplicateRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.collectionUC.Create(ctx, "wallpapers")
	require.NoError(t, err)

	_, err = env.collectionUC.Create(ctx, "wallpapers")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCollectionExists, apperrors.ExtractCode(err))
}

func TestCollectionCreateRejectsExistingDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// a hand-made directory with no catalog row is drift, not ownership
	require.NoError(t, env.store.MakeDir("orphan"))

	_, err := env.collectionUC.Create(ctx, "orphan")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCollectionExists, apperrors.ExtractCode(err))
}

func TestCollectionCreateRejectsInvalidName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"", "a/b", "..", "."} {
		_, err := env.collectionUC.Create(ctx, name)
		require.Error(t, err, name)
		assert.Equal(t, apperrors.ErrInvalidName, apperrors.ExtractCode(err), name)
	}
}

func TestCollectionCreateRollsBackRowWhenMkdirFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// a regular file at the directory path makes mkdir fail while the
	// DirExists precondition still passes
	require.NoError(t, os.WriteFile(filepath.Join(env.store.Root(), "blocked"), []byte("x"), 0o644))

	_, err := env.collectionUC.Create(ctx, "blocked")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrIO, apperrors.ExtractCode(err))

	// the compensating delete removed the row again
	list, err := env.collectionUC.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCollectionRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.collectionUC.Create(ctx, "old")
	require.NoError(t, err)
	_, err = env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.txt", Content: strings.NewReader("hello"), Collection: "old",
	})
	require.NoError(t, err)

	renamed, err := env.collectionUC.Rename(ctx, "old", "new")
	require.NoError(t, err)
	assert.Equal(t, c.ID, renamed.ID)
	assert.Equal(t, "new", renamed.Name)

	assert.False(t, env.store.DirExists("old"))
	assert.True(t, env.store.FileExists("new/a.txt"))

	f, err := env.files.GetByPath(ctx, "new/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", f.FileName)

	_, err = env.files.GetByPath(ctx, "old/a.txt")
	require.Error(t, err)
}

func TestCollectionRenamePreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.collectionUC.Rename(ctx, "missing", "new")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCollectionNotFound, apperrors.ExtractCode(err))

	_, err = env.collectionUC.Create(ctx, "a")
	require.NoError(t, err)
	_, err = env.collectionUC.Create(ctx, "b")
	require.NoError(t, err)

	_, err = env.collectionUC.Rename(ctx, "a", "b")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCollectionExists, apperrors.ExtractCode(err))

	// catalog row without a backing directory refuses the rename
	require.NoError(t, env.store.RemoveDir("a"))
	_, err = env.collectionUC.Rename(ctx, "a", "c")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCollectionNotFound, apperrors.ExtractCode(err))
}

func TestCollectionDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.collectionUC.Create(ctx, "wallpapers")
	require.NoError(t, err)
	_, err = env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.txt", Content: strings.NewReader("x"), Collection: "wallpapers",
	})
	require.NoError(t, err)

	require.NoError(t, env.collectionUC.Delete(ctx, "wallpapers"))

	assert.False(t, env.store.DirExists("wallpapers"))
	_, err = env.files.GetByPath(ctx, "wallpapers/a.txt")
	require.Error(t, err)

	list, err := env.collectionUC.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCollectionDeleteToleratesMissingDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.collectionUC.Create(ctx, "wallpapers")
	require.NoError(t, err)
	require.NoError(t, env.store.RemoveDir("wallpapers"))

	require.NoError(t, env.collectionUC.Delete(ctx, "wallpapers"))

	list, err := env.collectionUC.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCollectionListOrderedByName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"zebra", "alpha", "mid"} {
		_, err := env.collectionUC.Create(ctx, name)
		require.NoError(t, err)
	}

	list, err := env.collectionUC.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "mid", list[1].Name)
	assert.Equal(t, "zebra", list[2].Name)
}
