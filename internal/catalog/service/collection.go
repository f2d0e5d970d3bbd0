package service

import (
	"github.com/gin-gonic/gin"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/cache"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
	"github.com/wallify/cdn-backend/internal/pkg/response"
)

const (
	cacheKeyCollections = "catalog:collections"
	cachePrefixCatalog  = "catalog:"
)

// CollectionService exposes collection endpoints
type CollectionService struct {
	uc    *biz.CollectionUseCase
	cache *cache.Cache
}

func NewCollectionService(uc *biz.CollectionUseCase, c *cache.Cache) *CollectionService {
	return &CollectionService{uc: uc, cache: c}
}

type createCollectionRequest struct {
	Name string `json:"name" binding:"required"`
}

type renameCollectionRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

// Create handles POST /api/v1/collections
func (s *CollectionService) Create(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	collection, err := s.uc.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.InvalidatePrefix(c.Request.Context(), cachePrefixCatalog)
	response.Created(c, collection)
}

// Rename handles PUT /api/v1/collections/:name
func (s *CollectionService) Rename(c *gin.Context) {
	var req renameCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	collection, err := s.uc.Rename(c.Request.Context(), c.Param("name"), req.NewName)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.InvalidatePrefix(c.Request.Context(), cachePrefixCatalog)
	response.Success(c, collection)
}

// Delete handles DELETE /api/v1/collections/:name
func (s *CollectionService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.InvalidatePrefix(c.Request.Context(), cachePrefixCatalog)
	response.Success(c, gin.H{"deleted": c.Param("name")})
}

// List handles GET /api/v1/collections
func (s *CollectionService) List(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []*models.Collection
	if s.cache.Get(ctx, cacheKeyCollections, &cached) {
		response.Success(c, cached)
		return
	}

	collections, err := s.uc.List(ctx)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.Set(ctx, cacheKeyCollections, collections)
	response.Success(c, collections)
}
