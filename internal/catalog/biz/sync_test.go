package biz_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
)

func TestReconcileNoDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.txt", Content: strings.NewReader("x"), Collection: "art",
	})
	require.NoError(t, err)

	report, err := env.syncUC.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.AddedCollections)
	assert.Empty(t, report.RemovedCollections)
	assert.Empty(t, report.AddedFiles)
	assert.Empty(t, report.RemovedFiles)
}

func TestReconcileAdoptsHandMadeDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.MakeDir("dropped"))
	_, err := env.store.WriteFile("dropped/pic.png", strings.NewReader("pngpng"))
	require.NoError(t, err)

	report, err := env.syncUC.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dropped"}, report.AddedCollections)
	assert.Equal(t, []string{"dropped/pic.png"}, report.AddedFiles)

	c, err := env.collections.GetByName(ctx, "dropped")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.FileCount)
	assert.Equal(t, int64(6), c.TotalFileSize)

	f, err := env.files.GetByPath(ctx, "dropped/pic.png")
	require.NoError(t, err)
	require.NotNil(t, f.CollectionID)
	assert.Equal(t, c.ID, *f.CollectionID)
	assert.Equal(t, int64(6), f.FileSize)
	assert.Equal(t, "image/png", f.MimeType)
}

func TestReconcileAdoptsRootFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.WriteFile("orphan.png", strings.NewReader("x"))
	require.NoError(t, err)

	report, err := env.syncUC.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan.png"}, report.AddedFiles)

	f, err := env.files.GetByPath(ctx, "orphan.png")
	require.NoError(t, err)
	assert.Nil(t, f.CollectionID)
}

func TestReconcileRemovesStaleRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.txt", Content: strings.NewReader("x"), Collection: "gone",
	})
	require.NoError(t, err)
	_, err = env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "stale.txt", Content: strings.NewReader("y"),
	})
	require.NoError(t, err)

	// pull the rug out from under the catalog
	require.NoError(t, env.store.RemoveDir("gone"))
	require.NoError(t, env.store.RemoveFile("stale.txt"))

	report, err := env.syncUC.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, report.RemovedCollections)
	assert.Equal(t, []string{"stale.txt"}, report.RemovedFiles)

	list, err := env.collectionUC.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := env.files.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReconcileIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.MakeDir("a"))
	_, err := env.store.WriteFile("a/1.txt", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = env.store.WriteFile("root.txt", strings.NewReader("y"))
	require.NoError(t, err)

	first, err := env.syncUC.Reconcile(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first.AddedFiles)

	second, err := env.syncUC.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.AddedCollections)
	assert.Empty(t, second.RemovedCollections)
	assert.Empty(t, second.AddedFiles)
	assert.Empty(t, second.RemovedFiles)
}

func TestReconcileRefreshesStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.txt", Content: strings.NewReader("aa"), Collection: "art",
	})
	require.NoError(t, err)

	// a file dropped into the directory behind the catalog's back
	_, err = env.store.WriteFile("art/b.txt", strings.NewReader("bbbb"))
	require.NoError(t, err)

	_, err = env.syncUC.Reconcile(ctx)
	require.NoError(t, err)

	c, err := env.collections.GetByName(ctx, "art")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.FileCount)
	assert.Equal(t, int64(6), c.TotalFileSize)
}
