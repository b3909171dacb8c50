package service

import (
	"context"
	"time"

	"github.com/BushMasterhtps/text-club-sub002/internal/repository/models"
)

// WorkRepository defines the interface for database operations for service.
// ForEachWorkItemInWindow streams rows through fn so the all-time window can
// be folded without holding the full history in memory. A zero start means
// unbounded history.
type WorkRepository interface {
	ForEachWorkItemInWindow(ctx context.Context, start, end time.Time, fn func(models.WorkItem) error) error
	ListExternalCompletions(ctx context.Context, start, end time.Time) ([]models.ExternalCompletion, error)
	ListAgents(ctx context.Context) ([]models.Agent, error)
}
