package service

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wallify/cdn-backend/internal/catalog/biz"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	"github.com/wallify/cdn-backend/internal/pkg/cache"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
	"github.com/wallify/cdn-backend/internal/pkg/response"
)

// FileService exposes file upload, delete and listing endpoints
type FileService struct {
	uc      *biz.FileUseCase
	cache   *cache.Cache
	baseURL string
}

func NewFileService(uc *biz.FileUseCase, c *cache.Cache, baseURL string) *FileService {
	return &FileService{uc: uc, cache: c, baseURL: strings.TrimRight(baseURL, "/")}
}

// fileView is a catalog row plus its public URL
type fileView struct {
	*models.File
	URL string `json:"url"`
}

func (s *FileService) publicURL(c *gin.Context, relPath string) string {
	base := s.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	escaped := make([]string, 0, 2)
	for _, part := range strings.Split(relPath, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return base + "/cdn/" + strings.Join(escaped, "/")
}

func (s *FileService) view(c *gin.Context, f *models.File) *fileView {
	return &fileView{File: f, URL: s.publicURL(c, f.FilePath)}
}

// Upload handles POST /api/v1/files
func (s *FileService) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, "file is required")
		return
	}

	file, err := s.uploadOne(c, fh, c.PostForm("collection"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.InvalidatePrefix(c.Request.Context(), cachePrefixCatalog)
	response.Created(c, s.view(c, file))
}

func (s *FileService) uploadOne(c *gin.Context, fh *multipart.FileHeader, collection string) (*models.File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrIO, fh.Filename)
	}
	defer src.Close()

	return s.uc.Upload(c.Request.Context(), &biz.UploadInput{
		Name:       fh.Filename,
		Content:    src,
		Collection: collection,
	})
}

// BulkUpload handles POST /api/v1/files/bulk
func (s *FileService) BulkUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.ErrorWithCode(c, apperrors.ErrValidation, "files are required")
		return
	}
	collection := c.PostForm("collection")

	items := make([]*biz.UploadInput, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			response.HandleError(c, apperrors.Wrap(err, apperrors.ErrIO, fh.Filename))
			return
		}
		opened = append(opened, src)
		items = append(items, &biz.UploadInput{
			Name:       fh.Filename,
			Content:    src,
			Collection: collection,
		})
	}

	result, err := s.uc.BulkUpload(c.Request.Context(), collection, items)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	for _, item := range result.Results {
		if item.File != nil {
			item.Message = s.publicURL(c, item.File.FilePath)
		}
	}
	s.cache.InvalidatePrefix(c.Request.Context(), cachePrefixCatalog)
	response.Success(c, result)
}

type deleteFileRequest struct {
	Path string `json:"path" binding:"required"`
}

// Delete handles DELETE /api/v1/files
func (s *FileService) Delete(c *gin.Context) {
	var req deleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	if err := s.uc.Delete(c.Request.Context(), req.Path); err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.InvalidatePrefix(c.Request.Context(), cachePrefixCatalog)
	response.Success(c, gin.H{"deleted": req.Path})
}

// fileListView mirrors biz.FileListing with URLs attached
type fileListView struct {
	Files      []*fileView        `json:"files"`
	Total      int64              `json:"total"`
	Collection *models.Collection `json:"collection,omitempty"`
}

// List handles GET /api/v1/files
func (s *FileService) List(c *gin.Context) {
	ctx := c.Request.Context()
	collection := c.Query("collection")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	key := fmt.Sprintf("catalog:files:%s:%d:%d", collection, page, perPage)
	var cached biz.FileListing
	if s.cache.Get(ctx, key, &cached) {
		response.Success(c, s.listView(c, &cached))
		return
	}

	listing, err := s.uc.List(ctx, collection, page, perPage)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.cache.Set(ctx, key, listing)
	response.Success(c, s.listView(c, listing))
}

func (s *FileService) listView(c *gin.Context, listing *biz.FileListing) *fileListView {
	views := make([]*fileView, 0, len(listing.Files))
	for _, f := range listing.Files {
		views = append(views, s.view(c, f))
	}
	return &fileListView{Files: views, Total: listing.Total, Collection: listing.Collection}
}
