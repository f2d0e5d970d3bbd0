package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wallify/cdn-backend/internal/auth"
	catalogservice "github.com/wallify/cdn-backend/internal/catalog/service"
	"github.com/wallify/cdn-backend/internal/conf"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	userservice "github.com/wallify/cdn-backend/internal/user/service"
)

// Services bundles the handler groups mounted on the router
type Services struct {
	User       *userservice.UserService
	Collection *catalogservice.CollectionService
	File       *catalogservice.FileService
	Admin      *catalogservice.AdminService
	Serve      *catalogservice.ServeService
}

// HTTPServer wraps gin with graceful shutdown
type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	cfg *conf.ServerConfig,
	svc *Services,
	jwtManager *auth.JWTManager,
	verifier auth.UserVerifier,
	log *logger.Logger,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	registerRoutes(engine, svc, jwtManager, verifier, log)

	return &HTTPServer{
		engine: engine,
		server: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:        engine,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		logger: log,
	}
}

func registerRoutes(
	engine *gin.Engine,
	svc *Services,
	jwtManager *auth.JWTManager,
	verifier auth.UserVerifier,
	log *logger.Logger,
) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireToken := auth.JWTAuth(jwtManager, verifier, log)
	requireAdmin := auth.RequireAdmin(verifier)

	// file serving is token-checked; the ?token= fallback in JWTAuth keeps
	// plain <img src=...> links working
	engine.GET("/cdn/*filepath", requireToken, svc.Serve.Serve)

	api := engine.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", svc.User.Register)
		authGroup.POST("/login", svc.User.Login)
		authGroup.POST("/admin", svc.User.CreateAdmin)
		authGroup.POST("/reset-api-key", requireToken, svc.User.ResetAPIKey)
	}

	authed := api.Group("")
	authed.Use(requireToken)
	{
		authed.GET("/collections", svc.Collection.List)
		authed.GET("/files", svc.File.List)

		// catalog mutations are admin-only
		authed.POST("/collections", requireAdmin, svc.Collection.Create)
		authed.PUT("/collections/:name", requireAdmin, svc.Collection.Rename)
		authed.DELETE("/collections/:name", requireAdmin, svc.Collection.Delete)

		authed.POST("/files", requireAdmin, svc.File.Upload)
		authed.POST("/files/bulk", requireAdmin, svc.File.BulkUpload)
		authed.DELETE("/files", requireAdmin, svc.File.Delete)
	}

	admin := api.Group("/admin")
	admin.Use(requireToken, requireAdmin)
	{
		admin.POST("/sync", svc.Admin.Sync)
		admin.GET("/stats", svc.Admin.Stats)
		admin.GET("/users", svc.User.ListUsers)
		admin.PUT("/users/:id", svc.User.UpdateUser)
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// Start begins serving; it blocks until the listener stops
func (s *HTTPServer) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.server.Shutdown(ctx)
}
