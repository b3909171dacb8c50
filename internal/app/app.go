package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BushMasterhtps/text-club-sub002/internal/config"
	"github.com/BushMasterhtps/text-club-sub002/internal/httpapi"
	"github.com/BushMasterhtps/text-club-sub002/internal/repository"
	"github.com/BushMasterhtps/text-club-sub002/internal/service"
	"github.com/BushMasterhtps/text-club-sub002/pkg/cache"
	dbbuilder "github.com/BushMasterhtps/text-club-sub002/pkg/database"
	"github.com/BushMasterhtps/text-club-sub002/pkg/httpserver"
	"github.com/BushMasterhtps/text-club-sub002/pkg/metrics"

	"go.uber.org/zap"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	httpServer *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reporting timezone %q: %w", cfg.Timezone, err)
	}

	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
	)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	mets := metrics.New("textclub")

	workRepo := repository.NewWorkItemRepository(dbPool)

	weights := make([]service.WeightEntry, 0, len(cfg.Scoring.Weights))
	for _, w := range cfg.Scoring.Weights {
		weights = append(weights, service.WeightEntry{
			Category:    w.Category,
			Disposition: w.Disposition,
			Points:      w.Points,
		})
	}

	builder := service.NewScorecardBuilder(service.NewWeightTable(weights), service.BuilderConfig{
		ExternalCategory:   cfg.Scoring.ExternalCategory,
		ExternalDayMinimum: cfg.Scoring.ExternalDayMinimum,
		IdleCeilingHours:   cfg.Scoring.IdleCeilingHours,
		RestrictedCategory: cfg.Scoring.RestrictedCategory,
		Location:           loc,
	})

	scorecardService := service.NewScorecardService(workRepo, builder, serviceConfig(cfg, loc), logger, mets)

	handlers := httpapi.NewHandlers(scorecardService, cacheClient, logger, mets,
		time.Duration(cfg.CacheTTLMinutes)*time.Minute)

	mux := http.NewServeMux()
	handlers.Routes(mux)

	httpServer, err := httpserver.New(
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(logger),
		httpserver.WithHandler(mux),
		httpserver.WithMiddlewares(
			httpserver.LoggingMiddleware(logger),
			httpserver.MetricsMiddleware(mets),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		httpServer: httpServer,
	}, nil
}

// serviceConfig maps file/env configuration onto the scoring pipeline's
// injected parameters.
func serviceConfig(cfg *config.Config, loc *time.Location) service.ServiceConfig {
	sc := service.ServiceConfig{
		Hybrid: service.HybridWeights{
			Volume:     cfg.Scoring.VolumeWeight,
			Complexity: cfg.Scoring.ComplexityWeight,
		},
		ExemptAgentIDs:        cfg.Scoring.ExemptAgents,
		AllTimeMinCompletions: cfg.Scoring.AllTimeMinCompletions,
		PeriodMinDaysWorked:   cfg.Scoring.PeriodMinDaysWorked,
		PeriodLengthDays:      cfg.Scoring.PeriodLengthDays,
		Location:              loc,
	}

	if anchor, err := time.ParseInLocation("2006-01-02", cfg.Scoring.PeriodAnchor, loc); err == nil {
		sc.PeriodAnchor = anchor
	}

	if len(cfg.Scoring.Tiers) > 0 {
		tiers := make(service.TierThresholds, 0, len(cfg.Scoring.Tiers))
		for _, t := range cfg.Scoring.Tiers {
			tiers = append(tiers, service.TierRule{
				Name:          t.Name,
				MinPercentile: t.MinPercentile,
				MinScore:      t.MinScore,
			})
		}
		sc.Tiers = tiers
	}

	return sc
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.httpServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")

	_ = a.logger.Sync()
	return nil
}
