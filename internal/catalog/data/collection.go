package data

import (
	"context"
	"time"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// CollectionRepo implements biz.CollectionRepo on gorm
type CollectionRepo struct {
	db *gorm.DB
}

func NewCollectionRepo(db *database.DB) biz.CollectionRepo {
	return &CollectionRepo{db: db.DB}
}

func (r *CollectionRepo) WithTx(tx *gorm.DB) biz.CollectionRepo {
	return &CollectionRepo{db: tx}
}

func (r *CollectionRepo) Create(ctx context.Context, c *models.Collection) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CollectionRepo) GetByName(ctx context.Context, name string) (*models.Collection, error) {
	var c models.Collection
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepo) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	var c models.Collection
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all collections ordered by name
func (r *CollectionRepo) List(ctx context.Context) ([]*models.Collection, error) {
	var cs []*models.Collection
	if err := r.db.WithContext(ctx).Order("name").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *CollectionRepo) Rename(ctx context.Context, id, newName string) error {
	return r.db.WithContext(ctx).Model(&models.Collection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       newName,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *CollectionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Collection{}).Error
}

// RecomputeStats refreshes the cached file_count and total_file_size of a
// collection from the files table; the caches are never written any other way.
func (r *CollectionRepo) RecomputeStats(ctx context.Context, id string) error {
	var stats struct {
		Count int64
		Size  int64
	}

	err := r.db.WithContext(ctx).Model(&models.File{}).
		Select("COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS size").
		Where("collection_id = ?", id).
		Scan(&stats).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.Collection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"file_count":      stats.Count,
			"total_file_size": stats.Size,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *CollectionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Collection{}).Count(&n).Error
	return n, err
}

// TopByFileCount returns the n collections holding the most files
func (r *CollectionRepo) TopByFileCount(ctx context.Context, n int) ([]*models.Collection, error) {
	var cs []*models.Collection
	if err := r.db.WithContext(ctx).Order("file_count DESC").Limit(n).Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}
