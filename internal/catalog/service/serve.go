package service

import (
	"mime"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wallify/cdn-backend/internal/blob"
	"github.com/wallify/cdn-backend/internal/pkg/imaging"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	"github.com/wallify/cdn-backend/internal/pkg/response"
)

// ServeService streams stored files, optionally downscaled
type ServeService struct {
	store  *blob.Store
	logger *logger.Logger
}

func NewServeService(store *blob.Store, log *logger.Logger) *ServeService {
	return &ServeService{store: store, logger: log}
}

// Serve handles GET /cdn/*filepath. A width query parameter triggers an
// on-the-fly resize for jpeg, png and gif; everything else is streamed as-is.
func (s *ServeService) Serve(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	if err := blob.ValidateRelPath(rel); err != nil {
		response.HandleError(c, err)
		return
	}
	abs := s.store.Abs(rel)

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		c.Status(404)
		return
	}

	mimeType := mime.TypeByExtension(path.Ext(rel))

	if widthParam := c.Query("width"); widthParam != "" && imaging.IsResizable(mimeType) {
		width, err := strconv.Atoi(widthParam)
		if err == nil && width > 0 {
			s.serveResized(c, abs, width)
			return
		}
	}

	c.File(abs)
}

func (s *ServeService) serveResized(c *gin.Context, abs string, width int) {
	f, err := os.Open(abs)
	if err != nil {
		c.Status(404)
		return
	}
	defer f.Close()

	resized, err := imaging.Resize(f, width)
	if err != nil {
		// fall back to the original rather than failing the request
		s.logger.Warn("image resize failed, serving original",
			zap.String("path", abs),
			zap.Int("width", width),
			zap.Error(err))
		c.File(abs)
		return
	}
	c.Data(200, resized.MimeType, resized.Data)
}
