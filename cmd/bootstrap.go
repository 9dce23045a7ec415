package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fraud-assessment-service/internal/assets"
	"fraud-assessment-service/internal/config"
	"fraud-assessment-service/internal/database/minio"
	"fraud-assessment-service/internal/database/redis"
	"fraud-assessment-service/internal/repository"
	"fraud-assessment-service/internal/services"
)

// loadAssets reads every classifier and the encoder bundle. Callers decide
// whether a failure is fatal.
func loadAssets(ctx context.Context, cfg *config.ServiceConfig) (*assets.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	store, err := assets.Load(ctx, cfg.AssetCfg.ModelDir, assets.DefaultModelFiles)
	if err != nil {
		return nil, err
	}
	slog.Info("model assets loaded", "dir", store.Dir(), "variants", store.Variants())
	return store, nil
}

// newSessionRepository returns the configured session store and a cleanup func.
func newSessionRepository(cfg *config.ServiceConfig) (repository.SessionRepository, func(), error) {
	if cfg.SessionCfg.Store != "redis" {
		slog.Info("using in-memory session store", "ttl", cfg.SessionCfg.TTL)
		return repository.NewMemorySessionRepository(cfg.SessionCfg.TTL), func() {}, nil
	}

	client, err := redis.Connect(context.Background(), redis.Addr(cfg.RedisCfg), cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis session store: %w", err)
	}
	slog.Info("using redis session store",
		"addr", redis.Addr(cfg.RedisCfg),
		"db", cfg.RedisCfg.DB,
		"ttl", cfg.SessionCfg.TTL)
	cleanup := func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
	return repository.NewRedisSessionRepository(client, cfg.SessionCfg.TTL), cleanup, nil
}

// newReportArchiver connects to MinIO when enabled. Archiving is optional, so
// a connection failure only disables it.
func newReportArchiver(cfg *config.ServiceConfig) services.ReportArchiver {
	if !cfg.MinioCfg.Enabled {
		return nil
	}
	archive, err := minio.NewReportArchive(cfg.MinioCfg)
	if err != nil {
		slog.Warn("report archiving disabled", "endpoint", cfg.MinioCfg.MinioURL, "error", err)
		return nil
	}
	return archive
}

func newAssessmentService(cfg *config.ServiceConfig, store *assets.Store, assetErr error, sessions repository.SessionRepository) *services.AssessmentService {
	var catalog services.ModelCatalog
	if store != nil {
		catalog = store
	}
	return services.NewAssessmentService(
		catalog,
		assetErr,
		sessions,
		services.NewRiskEngine(cfg.RiskCfg),
		cfg.AssetCfg.DefaultModel,
	)
}
