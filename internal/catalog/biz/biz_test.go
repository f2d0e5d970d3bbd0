package biz_test

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wallify/cdn-backend/internal/blob"
	"github.com/wallify/cdn-backend/internal/catalog/biz"
	"github.com/wallify/cdn-backend/internal/catalog/data"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/database"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
)

type testEnv struct {
	db          *database.DB
	store       *blob.Store
	collections biz.CollectionRepo
	files       biz.FileRepo

	collectionUC *biz.CollectionUseCase
	fileUC       *biz.FileUseCase
	syncUC       *biz.SyncUseCase
	statsUC      *biz.StatsUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(dir, "catalog.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(gdb))

	logCfg := logger.DefaultConfig()
	logCfg.Level = "error"
	log, err := logger.New(logCfg)
	require.NoError(t, err)

	db := database.FromGorm(gdb, log)

	store, err := blob.New(filepath.Join(dir, "cdn"))
	require.NoError(t, err)

	collections := data.NewCollectionRepo(db)
	files := data.NewFileRepo(db)

	return &testEnv{
		db:          db,
		store:       store,
		collections: collections,
		files:       files,

		collectionUC: biz.NewCollectionUseCase(collections, files, store, db, log),
		fileUC:       biz.NewFileUseCase(files, collections, store, db, log),
		syncUC:       biz.NewSyncUseCase(collections, files, store, db, log),
		statsUC:      biz.NewStatsUseCase(files, collections),
	}
}
