package biz

import (
	"context"

	"github.com/wallify/cdn-backend/internal/catalog/models"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
)

// AdminStats is the dashboard summary for the admin panel
type AdminStats struct {
	TotalFiles      int64                `json:"total_files"`
	TotalSize       int64                `json:"total_size"`
	CollectionCount int64                `json:"collection_count"`
	RecentFiles     []*models.File       `json:"recent_files"`
	TopCollections  []*models.Collection `json:"top_collections"`
}

// StatsUseCase aggregates catalog-wide numbers for the admin panel
type StatsUseCase struct {
	files       FileRepo
	collections CollectionRepo
}

func NewStatsUseCase(files FileRepo, collections CollectionRepo) *StatsUseCase {
	return &StatsUseCase{files: files, collections: collections}
}

func (uc *StatsUseCase) AdminStats(ctx context.Context) (*AdminStats, error) {
	totalFiles, totalSize, err := uc.files.Totals(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	collectionCount, err := uc.collections.Count(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	recent, err := uc.files.Recent(ctx, 5)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	top, err := uc.collections.TopByFileCount(ctx, 5)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	return &AdminStats{
		TotalFiles:      totalFiles,
		TotalSize:       totalSize,
		CollectionCount: collectionCount,
		RecentFiles:     recent,
		TopCollections:  top,
	}, nil
}
