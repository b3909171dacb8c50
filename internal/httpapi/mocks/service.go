package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/BushMasterhtps/text-club-sub002/internal/service"
)

// MockScorecardService is a mock implementation of the scoring service
// interface for testing the handler layer.
type MockScorecardService struct {
	TeamScoreboardFunc   func(ctx context.Context) (service.TeamReport, error)
	AgentScorecardFunc   func(ctx context.Context, agentID string) (service.AgentReport, error)
	WindowScoreboardFunc func(ctx context.Context, start, end time.Time) (service.WindowReport, error)
}

// TeamScoreboard implements the scoring service interface
func (m *MockScorecardService) TeamScoreboard(ctx context.Context) (service.TeamReport, error) {
	if m.TeamScoreboardFunc != nil {
		return m.TeamScoreboardFunc(ctx)
	}
	return service.TeamReport{}, errors.New("TeamScoreboardFunc not implemented")
}

// AgentScorecard implements the scoring service interface
func (m *MockScorecardService) AgentScorecard(ctx context.Context, agentID string) (service.AgentReport, error) {
	if m.AgentScorecardFunc != nil {
		return m.AgentScorecardFunc(ctx, agentID)
	}
	return service.AgentReport{}, errors.New("AgentScorecardFunc not implemented")
}

// WindowScoreboard implements the scoring service interface
func (m *MockScorecardService) WindowScoreboard(ctx context.Context, start, end time.Time) (service.WindowReport, error) {
	if m.WindowScoreboardFunc != nil {
		return m.WindowScoreboardFunc(ctx, start, end)
	}
	return service.WindowReport{}, errors.New("WindowScoreboardFunc not implemented")
}
