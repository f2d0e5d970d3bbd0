package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallify/cdn-backend/internal/blob"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
)

func newServeRouter(t *testing.T) (*gin.Engine, *blob.Store) {
	t.Helper()

	store, err := blob.New(filepath.Join(t.TempDir(), "cdn"))
	require.NoError(t, err)

	logCfg := logger.DefaultConfig()
	logCfg.Level = "error"
	log, err := logger.New(logCfg)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	svc := NewServeService(store, log)
	engine.GET("/cdn/*filepath", svc.Serve)
	return engine, store
}

func TestServeFile(t *testing.T) {
	engine, store := newServeRouter(t)
	_, err := store.WriteFile("hello.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cdn/hello.txt", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestServeFileFromCollection(t *testing.T) {
	engine, store := newServeRouter(t)
	require.NoError(t, store.MakeDir("art"))
	_, err := store.WriteFile("art/a.txt", strings.NewReader("x"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cdn/art/a.txt", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServeMissingFile(t *testing.T) {
	engine, _ := newServeRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cdn/nope.txt", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeDirectoryIs404(t *testing.T) {
	engine, store := newServeRouter(t)
	require.NoError(t, store.MakeDir("art"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cdn/art", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeResizesImage(t *testing.T) {
	engine, store := newServeRouter(t)

	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for x := 0; x < 100; x++ {
		for y := 0; y < 50; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	_, err := store.WriteFile("pic.png", &buf)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cdn/pic.png?width=20", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	out, _, err := image.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())
}

func TestServeIgnoresBadWidth(t *testing.T) {
	engine, store := newServeRouter(t)
	_, err := store.WriteFile("a.txt", strings.NewReader("plain"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cdn/a.txt?width=20", nil)
	engine.ServeHTTP(w, req)

	// width on a non-image serves the original bytes
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "plain", w.Body.String())
}
