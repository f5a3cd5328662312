package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aseptimu/shortlink/internal/app/cache"
	"github.com/aseptimu/shortlink/internal/app/config"
	handlershttp "github.com/aseptimu/shortlink/internal/app/handlers/http"
	"github.com/aseptimu/shortlink/internal/app/handlers/http/dbhandlers"
	"github.com/aseptimu/shortlink/internal/app/logger"
	httpserver "github.com/aseptimu/shortlink/internal/app/server/http"
	"github.com/aseptimu/shortlink/internal/app/service"
	"github.com/aseptimu/shortlink/internal/app/store"
	"github.com/aseptimu/shortlink/internal/app/workers"
	"go.uber.org/zap"
)

const cacheNamespace = "shortlink"

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sugar, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, sugar)
	stop()
	sugar.Sync()
	if err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.ConfigType, logger *zap.SugaredLogger) error {
	var (
		linkStore service.Store
		pinger    dbhandlers.Pinger
	)

	switch {
	case cfg.DSN != "":
		logger.Infow("Database mode enabled")
		if err := store.MigrateDB(cfg.DSN, logger); err != nil {
			return err
		}
		db, err := store.NewDB(ctx, cfg.DSN, cfg.DBTimeout, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		linkStore, pinger = db, db
	case cfg.FileStoragePath != "":
		logger.Infow("File storage mode enabled", "storagePath", cfg.FileStoragePath)
		fs, err := store.NewFileStore(cfg.FileStoragePath, logger)
		if err != nil {
			return err
		}
		linkStore = fs
	default:
		logger.Infow("In-memory storage mode enabled")
		linkStore = store.NewInMemoryStore()
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL, cacheNamespace)
		if err != nil {
			return err
		}
		defer rc.Close()
		logger.Infow("Redis cache enabled", "ttl", cfg.CacheTTL)
		linkStore = store.NewCachedStore(linkStore, rc, rc.Keys(), rc.TTL(), logger)
	}

	svc := service.NewShortLinkService(linkStore, service.Options{
		LinkTTL:    cfg.LinkTTL,
		CodeLength: cfg.CodeLength,
		MaxRetries: cfg.MaxRetries,
	}, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sweeperDone := workers.StartExpirySweeper(ctx, cfg.SweepInterval, svc, logger)

	h := handlershttp.New(cfg, svc, svc, pinger, logger)
	err := httpserver.NewServer(cfg.ServerAddress, cfg.AllowedOrigins, logger, h).Run(ctx)

	cancel()
	<-sweeperDone
	return err
}
