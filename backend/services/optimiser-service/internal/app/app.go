package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"greenshift/backend/libs/db"
	libredis "greenshift/backend/libs/redis"
	appconfig "greenshift/backend/services/optimiser-service/internal/config"
	"greenshift/backend/services/optimiser-service/internal/feed"
	httpserver "greenshift/backend/services/optimiser-service/internal/http"
	"greenshift/backend/services/optimiser-service/internal/http/handlers"
	"greenshift/backend/services/optimiser-service/internal/http/middleware"
	"greenshift/backend/services/optimiser-service/internal/ingest"
	rediscache "greenshift/backend/services/optimiser-service/internal/redis"
	"greenshift/backend/services/optimiser-service/internal/repository"
	"greenshift/backend/services/optimiser-service/internal/service"
	"greenshift/backend/services/optimiser-service/internal/ws"
)

// App wires dependencies for the optimiser service.
type App struct {
	server    *httpserver.Server
	db        *sql.DB
	simulator *feed.Simulator
	logger    *zap.Logger
}

// New builds application graph.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	propertyRepo := repository.NewPropertyRepository(sqlDB)
	tariffRepo := repository.NewTariffRepository(sqlDB)
	usageRepo := repository.NewUsageRepository(sqlDB)

	if cfg.Seed.Dir != "" {
		if err := ingest.SeedDir(ctx, cfg.Seed.Dir, tariffRepo, usageRepo, logger); err != nil {
			return nil, err
		}
	}

	// Caching is optional; without redis every scenario is recomputed.
	var cache service.ReportCache
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		cache = rediscache.NewReportCache(client, cfg.CacheTTL())
	} else {
		logger.Warn("redis address not set, report caching disabled")
	}

	optimiser := service.NewOptimiserService(propertyRepo, tariffRepo, usageRepo, cache, service.Settings{
		PeakStartHour: cfg.Engine.PeakStartHour,
		PeakEndHour:   cfg.Engine.PeakEndHour,
		SlotDuration:  cfg.SlotDuration(),
		WindowDays:    cfg.Engine.WindowDays,
	}, logger)

	hub := ws.NewHub(logger)

	var simulator *feed.Simulator
	if cfg.Feed.Enabled {
		simulator = feed.NewSimulator(feed.Config{
			MpanID:       cfg.Feed.MpanID,
			Tick:         cfg.FeedTick(),
			SlotDuration: cfg.SlotDuration(),
			BaseLoadKW:   cfg.Feed.BaseLoadKW,
		}, hub, logger)
	}

	routes := httpserver.Routes{
		RunScenario: handlers.NewRunScenarioHandler(optimiser),
		Context:     handlers.NewContextHandler(optimiser),
		UsageLogs:   handlers.NewUsageLogsHandler(optimiser),
		AddProperty: handlers.NewAddPropertyHandler(optimiser),
		AddDevice:   handlers.NewAddDeviceHandler(optimiser),
		Feed:        ws.NewFeedHandler(hub, logger),
		Health:      handlers.NewHealthHandler(),
		Auth:        middleware.AuthMiddleware(cfg.JWT.Secret),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:    server,
		db:        sqlDB,
		simulator: simulator,
		logger:    logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation. The feed
// simulator, when enabled, runs alongside and stops with the server.
func (a *App) Run(ctx context.Context) error {
	if a.simulator != nil {
		go a.simulator.Run(ctx)
	}
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
