package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/cache"
	"github.com/cursolab/cursolab-backend/internal/handlers"
	"github.com/cursolab/cursolab-backend/internal/packing"
	"github.com/cursolab/cursolab-backend/internal/platform/assistant"
	"github.com/cursolab/cursolab-backend/internal/platform/config"
	"github.com/cursolab/cursolab-backend/internal/platform/envutil"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/server"
	"github.com/cursolab/cursolab-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Could not load config", "error", err)
	}

	// Persistence cache: redis when configured, sqlite otherwise.
	var courseCache cache.CourseCache
	if addr := envutil.String("REDIS_ADDR", ""); addr != "" {
		courseCache, err = cache.NewRedisCache(log, addr)
		if err != nil {
			log.Fatal("Could not init redis cache", "addr", addr, "error", err)
		}
		log.Info("Using redis course cache", "addr", addr)
	} else {
		courseCache, err = cache.NewSQLiteCache(log, cfg.CacheSQLitePath)
		if err != nil {
			log.Fatal("Could not init sqlite cache", "path", cfg.CacheSQLitePath, "error", err)
		}
		log.Info("Using sqlite course cache", "path", cfg.CacheSQLitePath)
	}

	// Services
	log.Info("Setting up services...")
	blobStore := blobs.NewStore(log)
	resolver := services.NewAssetResolver(log, blobStore)
	normalizer := services.NewPoseNormalizer(log)
	sessions := services.NewSessionManager(log, blobStore, courseCache, cfg.CacheDebounce())

	mascotArt, err := services.NewMascotArtService(log)
	if err != nil {
		log.Warn("Could not init MascotArtService", "error", err)
		mascotArt = nil
	}

	var assistantClient assistant.Client
	if client, err := assistant.NewClient(log); err != nil {
		log.Warn("Assistant unavailable", "error", err)
	} else {
		assistantClient = client
	}

	packer := packing.NewPacker(log, resolver, normalizer, cfg.PackConcurrency)
	unpacker := packing.NewUnpacker(log, blobStore, cfg.PackConcurrency)

	// Handlers
	courseHandler := handlers.NewCourseHandler(log, sessions, courseCache, assistantClient)
	assetHandler := handlers.NewAssetHandler(log, sessions, blobStore, mascotArt)
	archiveHandler := handlers.NewArchiveHandler(log, sessions, packer, unpacker)

	router := server.NewRouter(server.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		CourseHandler:  courseHandler,
		AssetHandler:   assetHandler,
		ArchiveHandler: archiveHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("Starting cursolab backend", "addr", addr)
	if err := router.Run(addr); err != nil {
		sessions.CloseAll(context.Background())
		log.Fatal("Server exited", "error", err)
	}
	sessions.CloseAll(context.Background())
}
