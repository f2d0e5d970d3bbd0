package data

import (
	"context"
	"strings"
	"time"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// FileRepo implements biz.FileRepo on gorm
type FileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *database.DB) biz.FileRepo {
	return &FileRepo{db: db.DB}
}

func (r *FileRepo) WithTx(tx *gorm.DB) biz.FileRepo {
	return &FileRepo{db: tx}
}

func (r *FileRepo) Create(ctx context.Context, f *models.File) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FileRepo) GetByPath(ctx context.Context, path string) (*models.File, error) {
	var f models.File
	if err := r.db.WithContext(ctx).Where("file_path = ?", path).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns one page of files ordered newest first, along with the total
// row count for the same filter. A nil collectionID filters for root-level
// files only when rootOnly is set, otherwise no collection filter is applied.
func (r *FileRepo) List(ctx context.Context, collectionID *string, rootOnly bool, offset, limit int) ([]*models.File, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.File{})
	if collectionID != nil {
		q = q.Where("collection_id = ?", *collectionID)
	} else if rootOnly {
		q = q.Where("collection_id IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var fs []*models.File
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&fs).Error; err != nil {
		return nil, 0, err
	}
	return fs, total, nil
}

// All loads the full files table, used by reconciliation
func (r *FileRepo) All(ctx context.Context) ([]*models.File, error) {
	var fs []*models.File
	if err := r.db.WithContext(ctx).Find(&fs).Error; err != nil {
		return nil, err
	}
	return fs, nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.File{}).Error
}

// DeleteByCollection removes every file row owned by the collection; paired
// with the collection delete in the same transaction it implements the
// cascade explicitly so sqlite test databases match postgres behavior.
func (r *FileRepo) DeleteByCollection(ctx context.Context, collectionID string) error {
	return r.db.WithContext(ctx).Where("collection_id = ?", collectionID).Delete(&models.File{}).Error
}

// RewritePathPrefix replaces the leading "old/" path segment with "new/" for
// every file owned by the collection, after a collection rename.
func (r *FileRepo) RewritePathPrefix(ctx context.Context, collectionID, oldName, newName string) error {
	var fs []*models.File
	if err := r.db.WithContext(ctx).Where("collection_id = ?", collectionID).Find(&fs).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, f := range fs {
		rewritten := strings.Replace(f.FilePath, oldName+"/", newName+"/", 1)
		if rewritten == f.FilePath {
			continue
		}
		err := r.db.WithContext(ctx).Model(&models.File{}).
			Where("id = ?", f.ID).
			Updates(map[string]interface{}{
				"file_path":  rewritten,
				"updated_at": now,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Recent returns the n most recently created files
func (r *FileRepo) Recent(ctx context.Context, n int) ([]*models.File, error) {
	var fs []*models.File
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&fs).Error; err != nil {
		return nil, err
	}
	return fs, nil
}

// Totals returns the total file count and byte size across the catalog
func (r *FileRepo) Totals(ctx context.Context) (int64, int64, error) {
	var stats struct {
		Count int64
		Size  int64
	}
	err := r.db.WithContext(ctx).Model(&models.File{}).
		Select("COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS size").
		Scan(&stats).Error
	return stats.Count, stats.Size, err
}
