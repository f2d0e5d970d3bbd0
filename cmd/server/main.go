package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wallify/cdn-backend/internal/auth"
	"github.com/wallify/cdn-backend/internal/blob"
	catalogbiz "github.com/wallify/cdn-backend/internal/catalog/biz"
	catalogdata "github.com/wallify/cdn-backend/internal/catalog/data"
	"github.com/wallify/cdn-backend/internal/catalog/models"
	catalogservice "github.com/wallify/cdn-backend/internal/catalog/service"
	"github.com/wallify/cdn-backend/internal/conf"
	"github.com/wallify/cdn-backend/internal/pkg/cache"
	"github.com/wallify/cdn-backend/internal/pkg/database"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	"github.com/wallify/cdn-backend/internal/server"
	userbiz "github.com/wallify/cdn-backend/internal/user/biz"
	userdata "github.com/wallify/cdn-backend/internal/user/data"
	userservice "github.com/wallify/cdn-backend/internal/user/service"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := conf.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logCfg := &logger.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		Output:           cfg.Log.Output,
		EnableCaller:     cfg.Log.EnableCaller,
		EnableStacktrace: cfg.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   cfg.Log.File.Filename,
			MaxSize:    cfg.Log.File.MaxSize,
			MaxAge:     cfg.Log.File.MaxAge,
			MaxBackups: cfg.Log.File.MaxBackups,
			Compress:   cfg.Log.File.Compress,
		},
	}
	if err := logger.InitGlobal(logCfg); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.L()

	dbCfg := database.DefaultConfig()
	dbCfg.Host = cfg.Database.Host
	dbCfg.Port = cfg.Database.Port
	dbCfg.User = cfg.Database.User
	dbCfg.Password = cfg.Database.Password
	dbCfg.DBName = cfg.Database.DBName
	dbCfg.SSLMode = cfg.Database.SSLMode

	db, err := database.New(dbCfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	defer db.Close()

	if err := models.Migrate(db.DB); err != nil {
		return fmt.Errorf("failed to migrate catalog tables: %w", err)
	}
	if err := userdata.Migrate(db.DB); err != nil {
		return fmt.Errorf("failed to migrate user table: %w", err)
	}

	store, err := blob.New(cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("failed to init blob store: %w", err)
	}

	var cacheClient *cache.Cache
	if cfg.Redis.Enabled {
		cacheClient, err = cache.New(&cache.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.CacheTTL,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer cacheClient.Close()
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenExpiryDays)

	collectionRepo := catalogdata.NewCollectionRepo(db)
	fileRepo := catalogdata.NewFileRepo(db)
	userRepo := userdata.NewUserRepo(db)

	collectionUC := catalogbiz.NewCollectionUseCase(collectionRepo, fileRepo, store, db, log)
	fileUC := catalogbiz.NewFileUseCase(fileRepo, collectionRepo, store, db, log)
	syncUC := catalogbiz.NewSyncUseCase(collectionRepo, fileRepo, store, db, log)
	statsUC := catalogbiz.NewStatsUseCase(fileRepo, collectionRepo)
	userUC := userbiz.NewUserUseCase(userRepo, jwtManager, cfg.Auth.AdminKey)

	services := &server.Services{
		User:       userservice.NewUserService(userUC),
		Collection: catalogservice.NewCollectionService(collectionUC, cacheClient),
		File:       catalogservice.NewFileService(fileUC, cacheClient, cfg.Server.BaseURL),
		Admin:      catalogservice.NewAdminService(syncUC, statsUC, cacheClient),
		Serve:      catalogservice.NewServeService(store, log),
	}

	httpServer := server.NewHTTPServer(&cfg.Server, services, jwtManager, userUC, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
