package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BushMasterhtps/text-club-sub002/internal/repository/models"
	"github.com/BushMasterhtps/text-club-sub002/internal/service/mocks"
)

// fixedNow is a Wednesday afternoon; the standard windows derived from it are
// today [06-18, 06-19), trailing week [06-12, 06-19) and prior week
// [06-05, 06-12), all in UTC.
var fixedNow = time.Date(2025, time.June, 18, 15, 0, 0, 0, time.UTC)

func fixtureRepo() *mocks.StaticWorkRepository {
	day := func(d, hour int) time.Time {
		return time.Date(2025, time.June, d, hour, 0, 0, 0, time.UTC)
	}
	return &mocks.StaticWorkRepository{
		Agents: []models.Agent{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
			{ID: "carol", Name: "Carol"},
			{ID: "dave", Name: "Dave", RestrictedOnly: true},
			{ID: "eve", Name: "Eve"},
		},
		Items: []models.WorkItem{
			{ID: 1, AgentID: "alice", Category: "chat", CompletedAt: day(17, 9)},
			{ID: 2, AgentID: "alice", Category: "chat", CompletedAt: day(17, 11)},
			{ID: 3, AgentID: "alice", Category: "chat", CompletedAt: day(17, 14)},
			{ID: 4, AgentID: "alice", Category: "refund", CompletedAt: day(18, 10)},
			{ID: 5, AgentID: "alice", Category: "chat", CompletedAt: day(10, 9)},
			{ID: 6, AgentID: "alice", Category: "chat", CompletedAt: day(10, 13)},
			{ID: 7, AgentID: "bob", Category: "chat", CompletedAt: day(17, 10)},
			{ID: 8, AgentID: "bob", Category: "chat", CompletedAt: day(13, 10)},
			{ID: 9, AgentID: "carol", Category: "chat", CompletedAt: day(17, 12)},
			{ID: 10, AgentID: "dave", Category: "spam_review", CompletedAt: day(17, 12)},
		},
		Externals: []models.ExternalCompletion{
			{AgentID: "alice", Date: day(16, 0), Count: 20},
		},
	}
}

func fixtureService(t *testing.T, repo WorkRepository) *ScorecardService {
	t.Helper()
	weights := NewWeightTable([]WeightEntry{
		{Category: "chat", Points: 1.0},
		{Category: "refund", Points: 3.0},
		{Category: "board", Points: 0.5},
		{Category: "spam_review", Points: 1.0},
	})
	builder := NewScorecardBuilder(weights, BuilderConfig{
		ExternalCategory:   "board",
		RestrictedCategory: "spam_review",
	})
	svc := NewScorecardService(repo, builder, ServiceConfig{
		ExemptAgentIDs:        []string{"carol"},
		AllTimeMinCompletions: 5,
		PeriodMinDaysWorked:   2,
		PeriodAnchor:          time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
	}, zap.NewNop(), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func rankedIDs(ranked []RankedAgent) []string {
	ids := make([]string, 0, len(ranked))
	for _, ra := range ranked {
		ids = append(ids, ra.AgentID)
	}
	return ids
}

func cardIDs(cards []UnrankedAgent) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.AgentID)
	}
	return ids
}

func TestScorecardService_TeamScoreboard(t *testing.T) {
	svc := fixtureService(t, fixtureRepo())

	report, err := svc.TeamScoreboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixedNow, report.GeneratedAt)

	t.Run("reports every standard window", func(t *testing.T) {
		require.Len(t, report.Windows, 5)
		for _, name := range []string{WindowAllTime, WindowCurrentPeriod, WindowToday, WindowTrailingWeek, WindowPriorWeek} {
			assert.Contains(t, report.Windows, name)
		}
	})

	t.Run("window boundaries are half open day edges", func(t *testing.T) {
		today := report.Windows[WindowToday].Window
		assert.Equal(t, time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC), today.Start)
		assert.Equal(t, time.Date(2025, time.June, 19, 0, 0, 0, 0, time.UTC), today.End)

		trailing := report.Windows[WindowTrailingWeek].Window
		assert.Equal(t, time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC), trailing.Start)
		assert.Equal(t, today.End, trailing.End)

		prior := report.Windows[WindowPriorWeek].Window
		assert.Equal(t, time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC), prior.Start)
		assert.Equal(t, trailing.Start, prior.End)
	})

	t.Run("current period steps from the anchor", func(t *testing.T) {
		period := report.Windows[WindowCurrentPeriod].Window
		assert.Equal(t, time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC), period.Start)
		assert.Equal(t, time.Date(2025, time.June, 23, 0, 0, 0, 0, time.UTC), period.End)
	})

	t.Run("exempt agents are reported but never ranked", func(t *testing.T) {
		trailing := report.Windows[WindowTrailingWeek]
		assert.Contains(t, cardIDs(trailing.Exempt), "carol")
		assert.NotContains(t, rankedIDs(trailing.Ranked), "carol")
	})

	t.Run("exempt and unqualified entries carry the not-ranked tier", func(t *testing.T) {
		trailing := report.Windows[WindowTrailingWeek]
		require.NotEmpty(t, trailing.Exempt)
		require.NotEmpty(t, trailing.Unqualified)
		for _, ua := range trailing.Exempt {
			assert.Equal(t, TierNotRanked, ua.Tier)
		}
		for _, ua := range trailing.Unqualified {
			assert.Equal(t, TierNotRanked, ua.Tier)
		}
	})

	t.Run("restricted only agents with no board activity vanish", func(t *testing.T) {
		for name, wr := range report.Windows {
			assert.NotContains(t, rankedIDs(wr.Ranked), "dave", name)
			assert.NotContains(t, cardIDs(wr.Exempt), "dave", name)
			assert.NotContains(t, cardIDs(wr.Unqualified), "dave", name)
		}
	})

	t.Run("agents with no activity land in the unqualified set", func(t *testing.T) {
		trailing := report.Windows[WindowTrailingWeek]
		assert.Contains(t, cardIDs(trailing.Unqualified), "eve")
	})

	t.Run("all time view enforces the completion minimum", func(t *testing.T) {
		allTime := report.Windows[WindowAllTime]
		assert.Contains(t, rankedIDs(allTime.Ranked), "alice")
		assert.Contains(t, cardIDs(allTime.Unqualified), "bob")
	})

	t.Run("period view enforces the days worked minimum and ranks the rest", func(t *testing.T) {
		period := report.Windows[WindowCurrentPeriod]
		require.Equal(t, []string{"alice", "bob"}, rankedIDs(period.Ranked))

		alice := period.Ranked[0]
		assert.Equal(t, 1, alice.RankByHybrid)
		assert.Equal(t, 4, alice.DaysWorked)
		assert.Equal(t, 26, alice.TotalCount)
		assert.InDelta(t, 100.0, alice.HybridScore, 1e-9)

		bob := period.Ranked[1]
		assert.Equal(t, 2, bob.RankByHybrid)
		assert.Equal(t, 2, bob.DaysWorked)
	})

	t.Run("board completions count toward volume and weighted points", func(t *testing.T) {
		trailing := report.Windows[WindowTrailingWeek]
		require.Equal(t, "alice", trailing.Ranked[0].AgentID)
		alice := trailing.Ranked[0]
		assert.Equal(t, 4, alice.ItemCount)
		assert.Equal(t, 20, alice.ExternalCount)
		assert.Equal(t, 24, alice.TotalCount)
		assert.Equal(t, 3, alice.DaysWorked)
		assert.InDelta(t, 16.0, alice.WeightedPoints, 1e-9)
	})

	t.Run("leader has no gap and followers point at the agent ahead", func(t *testing.T) {
		period := report.Windows[WindowCurrentPeriod]
		require.Contains(t, period.Gaps, "alice")
		assert.Nil(t, period.Gaps["alice"])

		gap := period.Gaps["bob"]
		require.NotNil(t, gap)
		assert.Equal(t, "alice", gap.AheadAgentID)
		assert.Equal(t, 1, gap.AheadRank)
		assert.Greater(t, gap.HybridGap, 0.0)
	})

	t.Run("roster names flow onto the scorecards", func(t *testing.T) {
		period := report.Windows[WindowCurrentPeriod]
		assert.Equal(t, "Alice", period.Ranked[0].AgentName)
	})

	t.Run("rebuilding from the same data is identical", func(t *testing.T) {
		again, err := svc.TeamScoreboard(context.Background())
		require.NoError(t, err)
		assert.Equal(t, report, again)
	})
}

func TestScorecardService_AgentScorecard(t *testing.T) {
	svc := fixtureService(t, fixtureRepo())

	t.Run("unknown agent is not found", func(t *testing.T) {
		_, err := svc.AgentScorecard(context.Background(), "mallory")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAgentNotFound)
	})

	t.Run("returns every standard window plus rank and gap", func(t *testing.T) {
		report, err := svc.AgentScorecard(context.Background(), "alice")
		require.NoError(t, err)

		assert.Equal(t, "alice", report.AgentID)
		assert.Equal(t, "Alice", report.AgentName)
		require.Len(t, report.Windows, 5)

		require.NotNil(t, report.Ranked)
		assert.Equal(t, 1, report.Ranked.RankByHybrid)
		assert.Nil(t, report.Gap)
	})

	t.Run("trends compare trailing week against prior week", func(t *testing.T) {
		report, err := svc.AgentScorecard(context.Background(), "alice")
		require.NoError(t, err)
		require.NotEmpty(t, report.Trends)

		items := deltaByMetric(t, report.Trends, MetricItemsPerDay)
		// Trailing week: 24 completions over 3 days. Prior week: 2 over 1 day.
		assert.InDelta(t, 8.0, items.CurrentValue, 1e-9)
		assert.InDelta(t, 2.0, items.PriorValue, 1e-9)
		assert.InDelta(t, 300.0, items.PercentChange, 1e-9)
	})

	t.Run("follower carries a gap to the agent ahead", func(t *testing.T) {
		report, err := svc.AgentScorecard(context.Background(), "bob")
		require.NoError(t, err)
		require.NotNil(t, report.Ranked)
		assert.Equal(t, 2, report.Ranked.RankByHybrid)
		require.NotNil(t, report.Gap)
		assert.Equal(t, "alice", report.Gap.AheadAgentID)
	})

	t.Run("zero activity is an all zero scorecard rather than an error", func(t *testing.T) {
		report, err := svc.AgentScorecard(context.Background(), "eve")
		require.NoError(t, err)
		assert.Nil(t, report.Ranked)
		for name, card := range report.Windows {
			assert.Zero(t, card.TotalCount, name)
			assert.Zero(t, card.WeightedPoints, name)
		}
	})
}

func TestScorecardService_WindowScoreboard(t *testing.T) {
	svc := fixtureService(t, fixtureRepo())

	t.Run("rejects a malformed window before touching storage", func(t *testing.T) {
		start := time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC)
		_, err := svc.WindowScoreboard(context.Background(), start, start)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidWindow)

		_, err = svc.WindowScoreboard(context.Background(), start, start.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("ranks a custom window with the any activity rule", func(t *testing.T) {
		start := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)
		report, err := svc.WindowScoreboard(context.Background(), start, start.AddDate(0, 0, 1))
		require.NoError(t, err)

		assert.Equal(t, "custom", report.Window.Name)
		assert.Equal(t, []string{"alice", "bob"}, rankedIDs(report.Ranked))
		assert.Contains(t, cardIDs(report.Exempt), "carol")
	})
}

func TestScorecardService_StorageFailures(t *testing.T) {
	weights := NewWeightTable(nil)
	builder := NewScorecardBuilder(weights, BuilderConfig{})
	boom := errors.New("connection refused")

	t.Run("roster fetch failure", func(t *testing.T) {
		repo := &mocks.MockWorkRepository{
			ListAgentsFunc: func(context.Context) ([]models.Agent, error) { return nil, boom },
		}
		svc := NewScorecardService(repo, builder, ServiceConfig{}, zap.NewNop(), nil)

		_, err := svc.TeamScoreboard(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStorageFailure)
	})

	t.Run("work item stream failure", func(t *testing.T) {
		repo := &mocks.MockWorkRepository{
			ListAgentsFunc: func(context.Context) ([]models.Agent, error) {
				return []models.Agent{{ID: "alice"}}, nil
			},
			ForEachWorkItemInWindowFunc: func(context.Context, time.Time, time.Time, func(models.WorkItem) error) error {
				return boom
			},
		}
		svc := NewScorecardService(repo, builder, ServiceConfig{}, zap.NewNop(), nil)

		_, err := svc.TeamScoreboard(context.Background())
		assert.ErrorIs(t, err, ErrStorageFailure)
	})

	t.Run("empty roster", func(t *testing.T) {
		svc := NewScorecardService(&mocks.StaticWorkRepository{}, builder, ServiceConfig{}, zap.NewNop(), nil)

		_, err := svc.TeamScoreboard(context.Background())
		assert.ErrorIs(t, err, ErrNoAgents)
	})

	t.Run("board completions failure", func(t *testing.T) {
		repo := &mocks.MockWorkRepository{
			ListAgentsFunc: func(context.Context) ([]models.Agent, error) {
				return []models.Agent{{ID: "alice"}}, nil
			},
			ForEachWorkItemInWindowFunc: func(context.Context, time.Time, time.Time, func(models.WorkItem) error) error {
				return nil
			},
			ListExternalCompletionsFunc: func(context.Context, time.Time, time.Time) ([]models.ExternalCompletion, error) {
				return nil, boom
			},
		}
		svc := NewScorecardService(repo, builder, ServiceConfig{}, zap.NewNop(), nil)

		_, err := svc.AgentScorecard(context.Background(), "alice")
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestCurrentPeriodStart(t *testing.T) {
	weights := NewWeightTable(nil)
	builder := NewScorecardBuilder(weights, BuilderConfig{})
	newSvc := func(anchor time.Time, lengthDays int) *ScorecardService {
		return NewScorecardService(&mocks.StaticWorkRepository{}, builder, ServiceConfig{
			PeriodAnchor:     anchor,
			PeriodLengthDays: lengthDays,
		}, zap.NewNop(), nil)
	}
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("day inside a period maps to its boundary", func(t *testing.T) {
		svc := newSvc(day(2025, time.June, 9), 14)
		assert.Equal(t, day(2025, time.June, 9), svc.currentPeriodStart(day(2025, time.June, 18)))
		assert.Equal(t, day(2025, time.June, 23), svc.currentPeriodStart(day(2025, time.June, 23)))
	})

	t.Run("day before the anchor steps backward", func(t *testing.T) {
		svc := newSvc(day(2025, time.June, 9), 14)
		assert.Equal(t, day(2025, time.May, 26), svc.currentPeriodStart(day(2025, time.June, 1)))
	})

	t.Run("zero anchor defaults to the platform epoch", func(t *testing.T) {
		svc := newSvc(time.Time{}, 14)
		// 2024-01-01 plus 38 full periods.
		assert.Equal(t, day(2025, time.June, 16), svc.currentPeriodStart(day(2025, time.June, 18)))
	})
}

func TestNewScorecardService_Validation(t *testing.T) {
	weights := NewWeightTable(nil)
	builder := NewScorecardBuilder(weights, BuilderConfig{})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewScorecardService(nil, builder, ServiceConfig{}, zap.NewNop(), nil)
		})
	})

	t.Run("nil builder panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewScorecardService(&mocks.StaticWorkRepository{}, nil, ServiceConfig{}, zap.NewNop(), nil)
		})
	})

	t.Run("zero config gets defaults", func(t *testing.T) {
		svc := NewScorecardService(&mocks.StaticWorkRepository{}, builder, ServiceConfig{}, zap.NewNop(), nil)
		assert.Equal(t, DefaultHybridWeights(), svc.cfg.Hybrid)
		assert.Equal(t, defaultPeriodLengthDays, svc.cfg.PeriodLengthDays)
		assert.NotNil(t, svc.cfg.Location)
	})
}
