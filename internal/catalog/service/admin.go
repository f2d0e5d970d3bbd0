package service

import (
	"github.com/gin-gonic/gin"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
	"github.com/wallify/cdn-backend/internal/pkg/cache"
	"github.com/wallify/cdn-backend/internal/pkg/response"
)

const cacheKeyStats = "catalog:stats"

// AdminService exposes reconciliation and dashboard stats
type AdminService struct {
	sync  *biz.SyncUseCase
	stats *biz.StatsUseCase
	cache *cache.Cache
}

func NewAdminService(syncUC *biz.SyncUseCase, statsUC *biz.StatsUseCase, c *cache.Cache) *AdminService {
	return &AdminService{sync: syncUC, stats: statsUC, cache: c}
}

// Sync handles POST /api/v1/admin/sync
func (s *AdminService) Sync(c *gin.Context) {
	report, err := s.sync.Reconcile(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.InvalidatePrefix(c.Request.Context(), cachePrefixCatalog)
	response.Success(c, report)
}

// Stats handles GET /api/v1/admin/stats
func (s *AdminService) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var cached biz.AdminStats
	if s.cache.Get(ctx, cacheKeyStats, &cached) {
		response.Success(c, &cached)
		return
	}

	stats, err := s.stats.AdminStats(ctx)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.Set(ctx, cacheKeyStats, stats)
	response.Success(c, stats)
}
