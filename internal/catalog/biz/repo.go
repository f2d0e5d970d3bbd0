package biz

import (
	"context"

	"github.com/wallify/cdn-backend/internal/catalog/models"
	"gorm.io/gorm"
)

// CollectionRepo defines the interface for collection catalog operations.
// WithTx returns a copy of the repo bound to the given transaction so
// multi-step mutations can span both repos atomically.
type CollectionRepo interface {
	WithTx(tx *gorm.DB) CollectionRepo
	Create(ctx context.Context, c *models.Collection) error
	GetByName(ctx context.Context, name string) (*models.Collection, error)
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	List(ctx context.Context) ([]*models.Collection, error)
	Rename(ctx context.Context, id, newName string) error
	Delete(ctx context.Context, id string) error
	RecomputeStats(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	TopByFileCount(ctx context.Context, n int) ([]*models.Collection, error)
}

// FileRepo defines the interface for file catalog operations
type FileRepo interface {
	WithTx(tx *gorm.DB) FileRepo
	Create(ctx context.Context, f *models.File) error
	GetByPath(ctx context.Context, path string) (*models.File, error)
	List(ctx context.Context, collectionID *string, rootOnly bool, offset, limit int) ([]*models.File, int64, error)
	All(ctx context.Context) ([]*models.File, error)
	Delete(ctx context.Context, id string) error
	DeleteByCollection(ctx context.Context, collectionID string) error
	RewritePathPrefix(ctx context.Context, collectionID, oldName, newName string) error
	Recent(ctx context.Context, n int) ([]*models.File, error)
	Totals(ctx context.Context) (int64, int64, error)
}
