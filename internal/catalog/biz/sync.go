package biz

import (
	"context"
	"mime"
	"path"
	"sync"

	"github.com/wallify/cdn-backend/internal/blob"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/database"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncReport lists the changes one reconciliation pass applied. Running a
// second pass with no filesystem change in between yields an empty report.
type SyncReport struct {
	AddedCollections   []string `json:"added_collections"`
	RemovedCollections []string `json:"removed_collections"`
	AddedFiles         []string `json:"added_files"`
	RemovedFiles       []string `json:"removed_files"`
	SkippedFiles       []string `json:"skipped_files,omitempty"`
}

// SyncUseCase makes the catalog exactly match the blob store's current
// directory structure in one pass. The directory tree is authoritative:
// rows without a backing entry are removed, entries without a row are
// inserted, and every surviving collection's cached stats are recomputed.
// Only existence drift is handled; a file replaced in place with different
// bytes under the same name is invisible to this pass.
type SyncUseCase struct {
	collections CollectionRepo
	files       FileRepo
	store       *blob.Store
	db          *database.DB
	logger      *logger.Logger

	// Reconciliation is an infrequent operational action; serializing it
	// globally is simpler than fine-grained locking against mutations.
	mu sync.Mutex
}

func NewSyncUseCase(
	collections CollectionRepo,
	files FileRepo,
	store *blob.Store,
	db *database.DB,
	log *logger.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		collections: collections,
		files:       files,
		store:       store,
		db:          db,
		logger:      log,
	}
}

type fileKey struct {
	collection string // empty for root-level files
	name       string
}

// Reconcile walks the blob store, diffs it against the full catalog and
// applies all repairs in a single transaction.
func (uc *SyncUseCase) Reconcile(ctx context.Context) (*SyncReport, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap, err := uc.store.Walk()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrIO)
	}

	catalogCollections, err := uc.collections.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	catalogFiles, err := uc.files.All(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	collectionsByName := make(map[string]*models.Collection, len(catalogCollections))
	collectionsByID := make(map[string]*models.Collection, len(catalogCollections))
	for _, c := range catalogCollections {
		collectionsByName[c.Name] = c
		collectionsByID[c.ID] = c
	}

	diskDirs := make(map[string]bool, len(snap.Collections))
	for _, name := range snap.Collections {
		diskDirs[name] = true
	}
	diskFiles := make(map[fileKey]blob.Entry, len(snap.Files))
	for _, e := range snap.Files {
		diskFiles[fileKey{collection: e.Collection, name: e.Name}] = e
	}

	report := &SyncReport{SkippedFiles: snap.Skipped}

	err = uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		collections := uc.collections.WithTx(tx)
		files := uc.files.WithTx(tx)

		// Directories without a catalog row become collections.
		for _, name := range snap.Collections {
			if _, ok := collectionsByName[name]; ok {
				continue
			}
			c := &models.Collection{Name: name}
			if err := collections.Create(ctx, c); err != nil {
				return err
			}
			collectionsByName[name] = c
			collectionsByID[c.ID] = c
			report.AddedCollections = append(report.AddedCollections, name)
		}

		// Catalog rows without a directory are dropped with their files.
		removedCollectionIDs := make(map[string]bool)
		for _, c := range catalogCollections {
			if diskDirs[c.Name] {
				continue
			}
			if err := files.DeleteByCollection(ctx, c.ID); err != nil {
				return err
			}
			if err := collections.Delete(ctx, c.ID); err != nil {
				return err
			}
			removedCollectionIDs[c.ID] = true
			delete(collectionsByName, c.Name)
			report.RemovedCollections = append(report.RemovedCollections, c.Name)
		}

		// Index surviving catalog files by (collection, name).
		catalogByKey := make(map[fileKey]*models.File, len(catalogFiles))
		for _, f := range catalogFiles {
			collectionName := ""
			if f.CollectionID != nil {
				if removedCollectionIDs[*f.CollectionID] {
					continue // already deleted with its collection
				}
				if c, ok := collectionsByID[*f.CollectionID]; ok {
					collectionName = c.Name
				}
			}
			catalogByKey[fileKey{collection: collectionName, name: f.FileName}] = f
		}

		// Disk entries without a row are inserted with fresh size and MIME.
		for key, entry := range diskFiles {
			if _, ok := catalogByKey[key]; ok {
				continue
			}
			f := &models.File{
				FileName: entry.Name,
				FilePath: entry.RelPath(),
				FileSize: entry.Size,
				MimeType: mime.TypeByExtension(path.Ext(entry.Name)),
			}
			if key.collection != "" {
				c := collectionsByName[key.collection]
				f.CollectionID = &c.ID
			}
			if err := files.Create(ctx, f); err != nil {
				return err
			}
			report.AddedFiles = append(report.AddedFiles, entry.RelPath())
		}

		// Rows without a disk entry are removed.
		for key, f := range catalogByKey {
			if _, ok := diskFiles[key]; ok {
				continue
			}
			if err := files.Delete(ctx, f.ID); err != nil {
				return err
			}
			report.RemovedFiles = append(report.RemovedFiles, f.FilePath)
		}

		// Refresh every surviving collection's cached stats.
		for _, c := range collectionsByName {
			if err := collections.RecomputeStats(ctx, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	uc.logger.Info("reconciliation completed",
		zap.Int("added_collections", len(report.AddedCollections)),
		zap.Int("removed_collections", len(report.RemovedCollections)),
		zap.Int("added_files", len(report.AddedFiles)),
		zap.Int("removed_files", len(report.RemovedFiles)),
		zap.Int("skipped", len(report.SkippedFiles)))

	return report, nil
}
