package biz

import (
	"context"
	"io"
	"mime"
	"path"

	"github.com/wallify/cdn-backend/internal/blob"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/database"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadInput is one file to store
type UploadInput struct {
	Name       string
	Content    io.Reader
	Collection string // empty means the blob root
}

// UploadItemResult is the outcome for one file of a bulk upload
type UploadItemResult struct {
	Success bool         `json:"success"`
	Name    string       `json:"name"`
	Message string       `json:"message,omitempty"`
	File    *models.File `json:"file,omitempty"`
}

// BulkUploadResult aggregates per-item outcomes; partial success is a normal
// outcome of a bulk upload, not a failure.
type BulkUploadResult struct {
	Total      int                 `json:"total"`
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
	Results    []*UploadItemResult `json:"results"`
}

// FileUseCase implements upload, bulk upload, delete and listing of files
type FileUseCase struct {
	files       FileRepo
	collections CollectionRepo
	store       *blob.Store
	db          *database.DB
	logger      *logger.Logger
}

func NewFileUseCase(
	files FileRepo,
	collections CollectionRepo,
	store *blob.Store,
	db *database.DB,
	log *logger.Logger,
) *FileUseCase {
	return &FileUseCase{
		files:       files,
		collections: collections,
		store:       store,
		db:          db,
		logger:      log,
	}
}

// Upload stores one file. When a collection name is given and no catalog row
// exists the collection is created implicitly (row plus idempotent mkdir);
// unlike the explicit create path this does not refuse on a pre-existing
// directory, which keeps bulk ingest into hand-made directories working.
// The file row is inserted only after the disk write fully succeeded, with
// the real on-disk size, and the owning collection's cached stats are
// recomputed in the same transaction.
func (uc *FileUseCase) Upload(ctx context.Context, in *UploadInput) (*models.File, error) {
	f, err := uc.upload(ctx, in, true)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (uc *FileUseCase) upload(ctx context.Context, in *UploadInput, recomputeStats bool) (*models.File, error) {
	if in.Name == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "no file name given")
	}
	if in.Content == nil {
		return nil, apperrors.New(apperrors.ErrValidation, "no file content given")
	}
	if err := blob.ValidateRelPath(in.Name); err != nil {
		return nil, err
	}

	var collection *models.Collection
	if in.Collection != "" {
		var err error
		collection, err = uc.ensureCollection(ctx, in.Collection)
		if err != nil {
			return nil, err
		}
	}

	name := uc.store.ResolveName(in.Collection, path.Base(in.Name))
	relPath := name
	if in.Collection != "" {
		relPath = in.Collection + "/" + name
	}

	size, err := uc.store.WriteFile(relPath, in.Content)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrIO, "failed to write %q", relPath)
	}

	f := &models.File{
		FileName: name,
		FilePath: relPath,
		FileSize: size,
		MimeType: mime.TypeByExtension(path.Ext(name)),
	}
	if collection != nil {
		f.CollectionID = &collection.ID
	}

	err = uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := uc.files.WithTx(tx).Create(ctx, f); err != nil {
			return err
		}
		if recomputeStats && collection != nil {
			return uc.collections.WithTx(tx).RecomputeStats(ctx, collection.ID)
		}
		return nil
	})
	if err != nil {
		// The bytes are on disk but the row never landed; reconciliation
		// will pick the file up later, so only the error is reported.
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	uc.logger.Info("file uploaded",
		zap.String("path", relPath),
		zap.Int64("size", size))

	return f, nil
}

// ensureCollection returns the catalog row for name, creating row and
// directory when missing
func (uc *FileUseCase) ensureCollection(ctx context.Context, name string) (*models.Collection, error) {
	if err := blob.ValidateCollectionName(name); err != nil {
		return nil, err
	}

	c, err := uc.collections.GetByName(ctx, name)
	if err != nil {
		if !database.IsRecordNotFoundError(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
		}
		c = &models.Collection{Name: name}
		if err := uc.collections.Create(ctx, c); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
		}
	}

	if err := uc.store.MakeDirAll(name); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrIO, "failed to create directory for collection %q", name)
	}
	return c, nil
}

// BulkUpload stores a batch of files with per-item isolation: one item's
// write or catalog error is recorded in its result and never aborts or rolls
// back its siblings. Collection stats are recomputed once after the batch.
func (uc *FileUseCase) BulkUpload(ctx context.Context, collection string, items []*UploadInput) (*BulkUploadResult, error) {
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.ErrValidation, "no files given")
	}

	result := &BulkUploadResult{Total: len(items)}

	for _, item := range items {
		item.Collection = collection

		f, err := uc.upload(ctx, item, false)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, &UploadItemResult{
				Success: false,
				Name:    item.Name,
				Message: apperrors.FormatError(apperrors.ExtractCode(err), apperrors.GetDetails(err)),
			})
			continue
		}

		result.Successful++
		result.Results = append(result.Results, &UploadItemResult{
			Success: true,
			Name:    f.FileName,
			File:    f,
		})
	}

	if collection != "" && result.Successful > 0 {
		if c, err := uc.collections.GetByName(ctx, collection); err == nil {
			if err := uc.collections.RecomputeStats(ctx, c.ID); err != nil {
				uc.logger.Warn("failed to recompute collection stats after bulk upload",
					zap.String("collection", collection),
					zap.Error(err))
			}
		}
	}

	return result, nil
}

// Delete removes a file by its store-relative path. A row whose on-disk file
// is already gone is treated as already reconciled: the row is deleted and
// the request succeeds.
func (uc *FileUseCase) Delete(ctx context.Context, relPath string) error {
	if err := blob.ValidateRelPath(relPath); err != nil {
		return err
	}

	f, err := uc.files.GetByPath(ctx, relPath)
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return apperrors.Newf(apperrors.ErrFileNotFound, "file %q not found in catalog", relPath)
		}
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if uc.store.FileExists(relPath) {
		if err := uc.store.RemoveFile(relPath); err != nil {
			return apperrors.Wrapf(err, apperrors.ErrIO, "failed to remove %q", relPath)
		}
	}

	err = uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := uc.files.WithTx(tx).Delete(ctx, f.ID); err != nil {
			return err
		}
		if f.CollectionID != nil {
			return uc.collections.WithTx(tx).RecomputeStats(ctx, *f.CollectionID)
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	uc.logger.Info("file deleted", zap.String("path", relPath))
	return nil
}

// FileListing is one page of files plus the collection when one was requested
type FileListing struct {
	Files      []*models.File
	Total      int64
	Collection *models.Collection
}

// List returns a page of files, optionally scoped to a collection
func (uc *FileUseCase) List(ctx context.Context, collection string, page, perPage int) (*FileListing, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var collectionID *string
	var c *models.Collection
	if collection != "" {
		var err error
		c, err = uc.collections.GetByName(ctx, collection)
		if err != nil {
			if database.IsRecordNotFoundError(err) {
				return nil, apperrors.Newf(apperrors.ErrCollectionNotFound, "collection %q not found", collection)
			}
			return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
		}
		collectionID = &c.ID
	}

	files, total, err := uc.files.List(ctx, collectionID, false, (page-1)*perPage, perPage)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	return &FileListing{Files: files, Total: total, Collection: c}, nil
}
