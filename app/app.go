package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"mifoto-print/app/controller"
	"mifoto-print/app/router"
	"mifoto-print/cart"
	"mifoto-print/catalog"
	"mifoto-print/config"
	"mifoto-print/db"
	"mifoto-print/logger"
	"mifoto-print/pricing"
	"mifoto-print/repository"
	"mifoto-print/service"
)

// Initialize wires the application from cfg and returns the HTTP handler.
func Initialize(ctx context.Context, cfg *config.Config) (http.Handler, error) {
	sizes := catalog.Default()
	if cfg.PricesFile != "" {
		loaded, err := catalog.LoadFromFile(cfg.PricesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load prices: %w", err)
		}
		sizes = loaded
	}

	// Cart snapshots go to Postgres when it is configured
	var carts cart.Store
	if dsn := cfg.Database.DSN(); dsn != "" {
		if err := db.InitDB(ctx, dsn); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		carts = repository.NewCartRepository()
	} else {
		logger.L().Warnf("⚠️  No database configured, carts are kept in memory")
		carts = repository.NewMemoryCartRepository()
	}

	photos, err := repository.NewPhotoRepository(cfg.PhotoDir)
	if err != nil {
		return nil, err
	}

	cache, err := newRenderCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	compositor := service.NewCompositor(sizes, cache, cfg.Render.Quality)

	manager := cart.NewManager(cart.NewAggregator(sizes), carts)
	sessions := service.NewEditorSessions(sizes)

	backend, err := newPrintBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	checkout := service.NewCheckoutService(manager, photos, compositor, backend, cfg.Render.Workers, cfg.Render.EagerPrint)

	proofs, err := service.NewProofService(photos, sizes, cfg.ChromePath)
	if err != nil {
		return nil, err
	}

	controllers := &router.Controllers{
		Catalog: controller.NewCatalogController(sizes),
		Session: controller.NewSessionController(sizes, sessions, photos, compositor, manager),
		Order:   controller.NewOrderController(manager, checkout, proofs, pricing.NewEngine(sizes)),
	}
	return router.SetupRoutes(controllers), nil
}

func newRenderCache(ctx context.Context, cfg *config.Config) (service.RenderCache, error) {
	switch cfg.Render.Cache {
	case "memory":
		return service.NewMemoryRenderCache(cfg.Render.CacheSize), nil
	case "disk":
		disk, err := service.NewDiskRenderCache(cfg.Render.CacheDir)
		if err != nil {
			return nil, err
		}
		return disk, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.L().Infof("✓ Render cache backed by redis at %s", cfg.Redis.Addr)
		return service.NewRedisRenderCache(client, time.Duration(cfg.Redis.TTLHours)*time.Hour), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown RENDER_CACHE %q (memory, disk, redis or none)", cfg.Render.Cache)
	}
}

// newPrintBackend uploads to Drive when credentials and a folder are configured,
// otherwise print jobs are written below the photo directory.
func newPrintBackend(ctx context.Context, cfg *config.Config) (service.PrintBackendInterface, error) {
	if cfg.GoogleCredentials != "" && cfg.PrintFolderID != "" {
		drive, err := service.NewDrivePrintBackend(ctx, cfg.GoogleCredentials, cfg.PrintFolderID)
		if err != nil {
			return nil, err
		}
		return drive, nil
	}
	dir := filepath.Join(cfg.PhotoDir, "print-jobs")
	logger.L().Infof("📁 Print jobs will be written to %s", dir)
	return service.NewDirPrintBackend(dir), nil
}
