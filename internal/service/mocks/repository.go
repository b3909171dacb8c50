package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/BushMasterhtps/text-club-sub002/internal/repository/models"
)

// MockWorkRepository is a mock implementation of the WorkRepository interface
// for testing the service layer.
type MockWorkRepository struct {
	ForEachWorkItemInWindowFunc func(ctx context.Context, start, end time.Time, fn func(models.WorkItem) error) error
	ListExternalCompletionsFunc func(ctx context.Context, start, end time.Time) ([]models.ExternalCompletion, error)
	ListAgentsFunc              func(ctx context.Context) ([]models.Agent, error)
}

// ForEachWorkItemInWindow implements the WorkRepository interface
func (m *MockWorkRepository) ForEachWorkItemInWindow(ctx context.Context, start, end time.Time, fn func(models.WorkItem) error) error {
	if m.ForEachWorkItemInWindowFunc != nil {
		return m.ForEachWorkItemInWindowFunc(ctx, start, end, fn)
	}
	return errors.New("ForEachWorkItemInWindowFunc not implemented")
}

// ListExternalCompletions implements the WorkRepository interface
func (m *MockWorkRepository) ListExternalCompletions(ctx context.Context, start, end time.Time) ([]models.ExternalCompletion, error) {
	if m.ListExternalCompletionsFunc != nil {
		return m.ListExternalCompletionsFunc(ctx, start, end)
	}
	return nil, errors.New("ListExternalCompletionsFunc not implemented")
}

// ListAgents implements the WorkRepository interface
func (m *MockWorkRepository) ListAgents(ctx context.Context) ([]models.Agent, error) {
	if m.ListAgentsFunc != nil {
		return m.ListAgentsFunc(ctx)
	}
	return nil, errors.New("ListAgentsFunc not implemented")
}

// StaticWorkRepository is a convenience mock backed by in-memory slices.
type StaticWorkRepository struct {
	Agents    []models.Agent
	Items     []models.WorkItem
	Externals []models.ExternalCompletion
}

func (s *StaticWorkRepository) ForEachWorkItemInWindow(_ context.Context, start, end time.Time, fn func(models.WorkItem) error) error {
	for _, item := range s.Items {
		if start.IsZero() || !item.CompletedAt.Before(start) {
			if item.CompletedAt.Before(end) {
				if err := fn(item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *StaticWorkRepository) ListExternalCompletions(_ context.Context, _, _ time.Time) ([]models.ExternalCompletion, error) {
	return s.Externals, nil
}

func (s *StaticWorkRepository) ListAgents(_ context.Context) ([]models.Agent, error) {
	return s.Agents, nil
}
