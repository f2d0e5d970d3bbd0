package biz_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
)

func TestUploadToRoot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name:    "photo.jpg",
		Content: strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "photo.jpg", f.FileName)
	assert.Equal(t, "photo.jpg", f.FilePath)
	assert.Equal(t, int64(10), f.FileSize)
	assert.Equal(t, "image/jpeg", f.MimeType)
	assert.Nil(t, f.CollectionID)
	assert.True(t, env.store.FileExists("photo.jpg"))
}

func TestUploadCreatesCollectionImplicitly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name:       "a.png",
		Content:    strings.NewReader("png"),
		Collection: "art",
	})
	require.NoError(t, err)

	require.NotNil(t, f.CollectionID)
	assert.Equal(t, "art/a.png", f.FilePath)

	c, err := env.collections.GetByName(ctx, "art")
	require.NoError(t, err)
	assert.Equal(t, *f.CollectionID, c.ID)
	assert.Equal(t, int64(1), c.FileCount)
	assert.Equal(t, int64(3), c.TotalFileSize)
}

func TestUploadIntoHandMadeDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// unlike explicit create, implicit creation accepts an existing directory
	require.NoError(t, env.store.MakeDir("art"))

	_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name:       "a.png",
		Content:    strings.NewReader("x"),
		Collection: "art",
	})
	require.NoError(t, err)

	_, err = env.collections.GetByName(ctx, "art")
	require.NoError(t, err)
}

func TestUploadResolvesNameCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.jpg", Content: strings.NewReader("one"), Collection: "art",
	})
	require.NoError(t, err)
	second, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.jpg", Content: strings.NewReader("two"), Collection: "art",
	})
	require.NoError(t, err)

	assert.Equal(t, "a.jpg", first.FileName)
	assert.Equal(t, "a_1.jpg", second.FileName)
	assert.Equal(t, "art/a_1.jpg", second.FilePath)
	assert.True(t, env.store.FileExists("art/a.jpg"))
	assert.True(t, env.store.FileExists("art/a_1.jpg"))

	c, err := env.collections.GetByName(ctx, "art")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.FileCount)
	assert.Equal(t, int64(6), c.TotalFileSize)
}

func TestUploadStripsDirectoryFromName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name:    "some/dir/photo.jpg",
		Content: strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", f.FileName)
	assert.Equal(t, "photo.jpg", f.FilePath)
}

func TestUploadRejectsTraversal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name:    "../escape.txt",
		Content: strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidName, apperrors.ExtractCode(err))
}

func TestBulkUploadPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	items := []*biz.UploadInput{
		{Name: "ok1.txt", Content: strings.NewReader("aa")},
		{Name: "", Content: strings.NewReader("bad")},
		{Name: "ok2.txt", Content: strings.NewReader("bbbb")},
	}

	result, err := env.fileUC.BulkUpload(ctx, "batch", items)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)

	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Message)
	assert.True(t, result.Results[2].Success)

	// stats reflect only the successful items, recomputed once at the end
	c, err := env.collections.GetByName(ctx, "batch")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.FileCount)
	assert.Equal(t, int64(6), c.TotalFileSize)
}

func TestBulkUploadEmpty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.fileUC.BulkUpload(context.Background(), "batch", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.ExtractCode(err))
}

func TestDeleteFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.txt", Content: strings.NewReader("abc"), Collection: "art",
	})
	require.NoError(t, err)

	require.NoError(t, env.fileUC.Delete(ctx, "art/a.txt"))

	assert.False(t, env.store.FileExists("art/a.txt"))
	_, err = env.files.GetByPath(ctx, "art/a.txt")
	require.Error(t, err)

	c, err := env.collections.GetByName(ctx, "art")
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.FileCount)
	assert.Equal(t, int64(0), c.TotalFileSize)
}

func TestDeleteFileWithMissingBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
		Name: "a.txt", Content: strings.NewReader("abc"),
	})
	require.NoError(t, err)
	require.NoError(t, env.store.RemoveFile("a.txt"))

	// the row is stale; delete treats it as already reconciled
	require.NoError(t, env.fileUC.Delete(ctx, "a.txt"))

	_, err = env.files.GetByPath(ctx, "a.txt")
	require.Error(t, err)
}

func TestDeleteUnknownFile(t *testing.T) {
	env := newTestEnv(t)

	err := env.fileUC.Delete(context.Background(), "nope.txt")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrFileNotFound, apperrors.ExtractCode(err))
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := env.fileUC.Upload(ctx, &biz.UploadInput{
			Name: name, Content: strings.NewReader("x"), Collection: "art",
		})
		require.NoError(t, err)
	}

	page1, err := env.fileUC.List(ctx, "art", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page1.Total)
	assert.Len(t, page1.Files, 2)
	require.NotNil(t, page1.Collection)
	assert.Equal(t, "art", page1.Collection.Name)

	page2, err := env.fileUC.List(ctx, "art", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Files, 1)
}

func TestListUnknownCollection(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.fileUC.List(context.Background(), "nope", 1, 10)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCollectionNotFound, apperrors.ExtractCode(err))
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, in := range []*biz.UploadInput{
		{Name: "a.txt", Content: strings.NewReader("aa"), Collection: "art"},
		{Name: "b.txt", Content: strings.NewReader("bbb"), Collection: "art"},
		{Name: "c.txt", Content: strings.NewReader("c")},
	} {
		_, err := env.fileUC.Upload(ctx, in)
		require.NoError(t, err, i)
	}

	stats, err := env.statsUC.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalFiles)
	assert.Equal(t, int64(6), stats.TotalSize)
	assert.Equal(t, int64(1), stats.CollectionCount)
	assert.Len(t, stats.RecentFiles, 3)
	require.Len(t, stats.TopCollections, 1)
	assert.Equal(t, "art", stats.TopCollections[0].Name)
}
