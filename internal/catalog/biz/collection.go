package biz

import (
	"context"

	"github.com/wallify/cdn-backend/internal/blob"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/database"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CollectionUseCase keeps collection directories and catalog rows in
// lockstep: every mutation touches both stores, with compensating actions
// where a step can fail after the other store was already changed.
type CollectionUseCase struct {
	collections CollectionRepo
	files       FileRepo
	store       *blob.Store
	db          *database.DB
	logger      *logger.Logger
}

func NewCollectionUseCase(
	collections CollectionRepo,
	files FileRepo,
	store *blob.Store,
	db *database.DB,
	log *logger.Logger,
) *CollectionUseCase {
	return &CollectionUseCase{
		collections: collections,
		files:       files,
		store:       store,
		db:          db,
		logger:      log,
	}
}

// Create inserts the catalog row first, then creates the directory. A row OR
// a directory with the name already existing refuses the create: a mismatch
// between the two is a drift signal, and create stays conservative. If the
// directory cannot be created the just-inserted row is deleted again.
func (uc *CollectionUseCase) Create(ctx context.Context, name string) (*models.Collection, error) {
	if err := blob.ValidateCollectionName(name); err != nil {
		return nil, err
	}

	if _, err := uc.collections.GetByName(ctx, name); err == nil {
		return nil, apperrors.Newf(apperrors.ErrCollectionExists, "collection %q already exists in catalog", name)
	} else if !database.IsRecordNotFoundError(err) {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if uc.store.DirExists(name) {
		return nil, apperrors.Newf(apperrors.ErrCollectionExists, "a directory named %q already exists", name)
	}

	c := &models.Collection{Name: name}
	if err := uc.collections.Create(ctx, c); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if err := uc.store.MakeDir(name); err != nil {
		// Compensate: the row committed but the directory never appeared.
		if derr := uc.collections.Delete(ctx, c.ID); derr != nil {
			uc.logger.Error("failed to roll back collection row after mkdir failure",
				zap.String("collection", name),
				zap.Error(derr))
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrIO, "failed to create directory for collection %q", name)
	}

	uc.logger.Info("collection created", zap.String("collection", name))
	return c, nil
}

// Rename checks all four preconditions (catalog row for old exists, none for
// new, directory for old exists, none for new) before touching anything,
// then renames the directory and updates catalog rows. The window between
// directory rename and catalog update is a known drift condition repaired by
// reconciliation.
func (uc *CollectionUseCase) Rename(ctx context.Context, oldName, newName string) (*models.Collection, error) {
	if err := blob.ValidateCollectionName(oldName); err != nil {
		return nil, err
	}
	if err := blob.ValidateCollectionName(newName); err != nil {
		return nil, err
	}

	c, err := uc.collections.GetByName(ctx, oldName)
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, apperrors.Newf(apperrors.ErrCollectionNotFound, "collection %q not found in catalog", oldName)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if _, err := uc.collections.GetByName(ctx, newName); err == nil {
		return nil, apperrors.Newf(apperrors.ErrCollectionExists, "collection %q already exists in catalog", newName)
	} else if !database.IsRecordNotFoundError(err) {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if !uc.store.DirExists(oldName) {
		return nil, apperrors.Newf(apperrors.ErrCollectionNotFound, "directory for collection %q not found", oldName)
	}
	if uc.store.DirExists(newName) {
		return nil, apperrors.Newf(apperrors.ErrCollectionExists, "a directory named %q already exists", newName)
	}

	if err := uc.store.RenameDir(oldName, newName); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrIO, "failed to rename directory %q", oldName)
	}

	err = uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := uc.collections.WithTx(tx).Rename(ctx, c.ID, newName); err != nil {
			return err
		}
		return uc.files.WithTx(tx).RewritePathPrefix(ctx, c.ID, oldName, newName)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	uc.logger.Info("collection renamed",
		zap.String("from", oldName),
		zap.String("to", newName))

	return uc.collections.GetByID(ctx, c.ID)
}

// Delete removes the backing directory best-effort and then deletes the
// collection row together with every owned file row in one transaction.
func (uc *CollectionUseCase) Delete(ctx context.Context, name string) error {
	if err := blob.ValidateCollectionName(name); err != nil {
		return err
	}

	c, err := uc.collections.GetByName(ctx, name)
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return apperrors.Newf(apperrors.ErrCollectionNotFound, "collection %q not found in catalog", name)
		}
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if uc.store.DirExists(name) {
		if err := uc.store.RemoveDir(name); err != nil {
			// Filesystem trouble must not leave the catalog row behind.
			uc.logger.Warn("failed to remove collection directory",
				zap.String("collection", name),
				zap.Error(err))
		}
	}

	err = uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := uc.files.WithTx(tx).DeleteByCollection(ctx, c.ID); err != nil {
			return err
		}
		return uc.collections.WithTx(tx).Delete(ctx, c.ID)
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	uc.logger.Info("collection deleted", zap.String("collection", name))
	return nil
}

// List returns all collections ordered by name
func (uc *CollectionUseCase) List(ctx context.Context) ([]*models.Collection, error) {
	cs, err := uc.collections.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return cs, nil
}
