package httpapi

import (
	"context"
	"time"

	"github.com/BushMasterhtps/text-club-sub002/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// ScorecardService is the scoring entry point the handlers depend on.
type ScorecardService interface {
	TeamScoreboard(ctx context.Context) (service.TeamReport, error)
	AgentScorecard(ctx context.Context, agentID string) (service.AgentReport, error)
	WindowScoreboard(ctx context.Context, start, end time.Time) (service.WindowReport, error)
}
