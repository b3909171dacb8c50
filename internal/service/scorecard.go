package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BushMasterhtps/text-club-sub002/internal/repository/models"
	"github.com/BushMasterhtps/text-club-sub002/pkg/metrics"
)

const (
	// snapshotTimeout bounds the storage fetch; the all-time window walks the
	// full history.
	snapshotTimeout = 30 * time.Second

	defaultPeriodLengthDays = 14
)

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrNoAgents       = errors.New("no agents in roster")
	ErrInvalidWindow  = errors.New("invalid window")
	ErrStorageFailure = errors.New("storage failure")
)

// ServiceConfig parameterizes the one canonical scoring pipeline so every
// call site shares identical semantics: qualification minimums, the hybrid
// split and the tier thresholds are injected, never hand-copied.
type ServiceConfig struct {
	Hybrid HybridWeights
	Tiers  TierThresholds

	ExemptAgentIDs []string

	// AllTimeMinCompletions qualifies agents for the all-time leaderboard.
	AllTimeMinCompletions int
	// PeriodMinDaysWorked qualifies agents for the fixed-length period view.
	PeriodMinDaysWorked int

	// PeriodAnchor and PeriodLengthDays define the fixed-length reporting
	// periods; the current period is the one containing today.
	PeriodAnchor     time.Time
	PeriodLengthDays int

	// Location is the canonical reporting timezone used to translate
	// business-day concepts into window boundaries.
	Location *time.Location
}

// ScorecardService is the orchestrating entry point: it fetches one immutable
// snapshot, folds it into per-window scorecards, and runs the cohort, scoring
// and ranking passes per window.
type ScorecardService struct {
	storage WorkRepository
	builder *ScorecardBuilder
	cfg     ServiceConfig
	exempt  map[string]struct{}
	logger  *zap.Logger
	mets    *metrics.Manager

	// now is injectable for tests.
	now func() time.Time
}

// NewScorecardService creates a new ScorecardService instance.
func NewScorecardService(storage WorkRepository, builder *ScorecardBuilder, cfg ServiceConfig, logger *zap.Logger, mets *metrics.Manager) *ScorecardService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if builder == nil {
		panic("builder must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if cfg.Hybrid == (HybridWeights{}) {
		cfg.Hybrid = DefaultHybridWeights()
	}
	if cfg.Tiers == nil {
		cfg.Tiers = DefaultTierThresholds()
	}
	if cfg.PeriodLengthDays <= 0 {
		cfg.PeriodLengthDays = defaultPeriodLengthDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	exempt := make(map[string]struct{}, len(cfg.ExemptAgentIDs))
	for _, id := range cfg.ExemptAgentIDs {
		exempt[id] = struct{}{}
	}
	return &ScorecardService{
		storage: storage,
		builder: builder,
		cfg:     cfg,
		exempt:  exempt,
		logger:  logger,
		mets:    mets,
		now:     time.Now,
	}
}

// standardWindows translates "today", "this period" and the rolling weeks
// into half-open [start, end) boundaries in the reporting timezone. The
// downstream engine performs no further timezone conversion.
func (s *ScorecardService) standardWindows(now time.Time) []Window {
	loc := s.cfg.Location
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	weekStart := dayStart.AddDate(0, 0, -6)
	priorWeekStart := weekStart.AddDate(0, 0, -7)

	periodStart := s.currentPeriodStart(dayStart)

	return []Window{
		{Name: WindowAllTime, Start: time.Time{}, End: dayEnd},
		{Name: WindowCurrentPeriod, Start: periodStart, End: periodStart.AddDate(0, 0, s.cfg.PeriodLengthDays)},
		{Name: WindowToday, Start: dayStart, End: dayEnd},
		{Name: WindowTrailingWeek, Start: weekStart, End: dayEnd},
		{Name: WindowPriorWeek, Start: priorWeekStart, End: weekStart},
	}
}

// currentPeriodStart finds the period boundary at or before dayStart by
// stepping the anchor in whole period lengths.
func (s *ScorecardService) currentPeriodStart(dayStart time.Time) time.Time {
	loc := s.cfg.Location
	anchor := s.cfg.PeriodAnchor
	if anchor.IsZero() {
		anchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, loc)
	} else {
		anchor = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, loc)
	}

	days := int(dayStart.Sub(anchor).Hours() / 24)
	k := days / s.cfg.PeriodLengthDays
	if days < 0 && days%s.cfg.PeriodLengthDays != 0 {
		k--
	}
	return anchor.AddDate(0, 0, k*s.cfg.PeriodLengthDays)
}

// ruleFor picks the window-appropriate qualification rule: minimum total
// completions for the all-time view, minimum days worked for the fixed-length
// period, and any-activity for the daily and weekly trend views.
func (s *ScorecardService) ruleFor(windowName string) QualificationRule {
	switch windowName {
	case WindowAllTime:
		return QualificationRule{MinTotalCount: s.cfg.AllTimeMinCompletions}
	case WindowCurrentPeriod:
		return QualificationRule{MinDaysWorked: s.cfg.PeriodMinDaysWorked}
	default:
		return QualificationRule{}
	}
}

// snapshot holds one immutable fetch folded into per-window, per-agent
// accumulators plus the roster.
type snapshot struct {
	roster  map[string]models.Agent
	windows []Window
	// cards is window name -> agent ID -> scorecard.
	cards map[string]map[string]AgentScorecard
}

// takeSnapshot fetches the roster, streams every work item in the covering
// span through the per-window accumulators, and folds in board completions.
// Each invocation owns its own snapshot; nothing is written back.
func (s *ScorecardService) takeSnapshot(ctx context.Context, windows []Window) (*snapshot, error) {
	dbCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	agents, err := s.storage.ListAgents(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}

	roster := make(map[string]models.Agent, len(agents))
	accs := make(map[string]map[string]*Accumulator, len(windows))
	for _, w := range windows {
		accs[w.Name] = make(map[string]*Accumulator, len(agents))
	}
	for _, agent := range agents {
		roster[agent.ID] = agent
		for _, w := range windows {
			accs[w.Name][agent.ID] = s.builder.NewAccumulator(agent.ID, w)
		}
	}

	start, end := coveringSpan(windows)

	err = s.storage.ForEachWorkItemInWindow(dbCtx, start, end, func(item models.WorkItem) error {
		for _, m := range accs {
			if acc, ok := m[item.AgentID]; ok {
				acc.AddItem(item)
			}
			if item.CompletedBy != "" && item.CompletedBy != item.AgentID {
				if acc, ok := m[item.CompletedBy]; ok {
					acc.AddItem(item)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	externals, err := s.storage.ListExternalCompletions(dbCtx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	for _, ec := range externals {
		for _, m := range accs {
			if acc, ok := m[ec.AgentID]; ok {
				acc.AddExternal(ec)
			}
		}
	}

	cards := make(map[string]map[string]AgentScorecard, len(windows))
	for name, m := range accs {
		byAgent := make(map[string]AgentScorecard, len(m))
		for id, acc := range m {
			card := acc.Scorecard()
			card.AgentName = roster[id].Name
			byAgent[id] = card
		}
		cards[name] = byAgent
	}

	return &snapshot{roster: roster, windows: windows, cards: cards}, nil
}

// reportWindow runs the cohort, scoring and ranking passes for one window of
// an already-taken snapshot.
func (s *ScorecardService) reportWindow(snap *snapshot, w Window) WindowReport {
	byAgent := snap.cards[w.Name]
	cards := make([]AgentScorecard, 0, len(byAgent))
	for _, card := range byAgent {
		cards = append(cards, card)
	}

	restricted := make(map[string]struct{})
	for id, agent := range snap.roster {
		if agent.RestrictedOnly {
			restricted[id] = struct{}{}
		}
	}

	cohort := Partition(cards, s.ruleFor(w.Name), PartitionConfig{
		ExemptAgentIDs: s.exempt,
		RestrictedOnly: restricted,
	})
	ranked := Rank(ScoreCohort(cohort.Competitive, s.cfg.Hybrid), s.cfg.Tiers)

	s.mets.SetCohortSize(w.Name, "competitive", len(cohort.Competitive))
	s.mets.SetCohortSize(w.Name, "exempt", len(cohort.Exempt))
	s.mets.SetCohortSize(w.Name, "unqualified", len(cohort.Unqualified))

	return WindowReport{
		Window:      w,
		Ranked:      ranked,
		Exempt:      notRanked(cohort.Exempt),
		Unqualified: notRanked(cohort.Unqualified),
		Gaps:        nextRankGaps(ranked),
	}
}

// notRanked labels cohort members outside the competitive ranking with the
// not-ranked tier for reporting.
func notRanked(cards []AgentScorecard) []UnrankedAgent {
	out := make([]UnrankedAgent, len(cards))
	for i, card := range cards {
		out[i] = UnrankedAgent{AgentScorecard: card, Tier: TierNotRanked}
	}
	return out
}

// nextRankGaps maps each ranked agent to the adjacent higher-ranked
// competitor; the leader maps to nil.
func nextRankGaps(ranked []RankedAgent) map[string]*NextRankGap {
	gaps := make(map[string]*NextRankGap, len(ranked))
	for i, ra := range ranked {
		if i == 0 {
			gaps[ra.AgentID] = nil
			continue
		}
		ahead := ranked[i-1]
		gaps[ra.AgentID] = &NextRankGap{
			AheadAgentID:    ahead.AgentID,
			AheadRank:       ahead.RankByHybrid,
			HybridGap:       ahead.HybridScore - ra.HybridScore,
			PointsPerDayGap: ahead.WeightedPointsPerDay - ra.WeightedPointsPerDay,
		}
	}
	return gaps
}

// TeamScoreboard builds the aggregate report for every standard window.
func (s *ScorecardService) TeamScoreboard(ctx context.Context) (TeamReport, error) {
	began := time.Now()
	now := s.now()
	windows := s.standardWindows(now)

	snap, err := s.takeSnapshot(ctx, windows)
	if err != nil {
		return TeamReport{}, err
	}

	report := TeamReport{
		GeneratedAt: now,
		Windows:     make(map[string]WindowReport, len(windows)),
	}
	for _, w := range windows {
		report.Windows[w.Name] = s.reportWindow(snap, w)
	}

	s.mets.ObserveScoreboardBuild(time.Since(began))
	s.logger.Info("built team scoreboard",
		zap.Int("agents", len(snap.roster)),
		zap.Int("windows", len(windows)),
		zap.Duration("took", time.Since(began)))

	return report, nil
}

// AgentScorecard builds the per-agent view: every standard window's raw
// scorecard, the current-period ranked entry and next-rank gap, and
// week-over-week trend deltas. An agent with zero activity in every window is
// a legitimate all-zero result; an agent absent from the roster is not found.
func (s *ScorecardService) AgentScorecard(ctx context.Context, agentID string) (AgentReport, error) {
	now := s.now()
	windows := s.standardWindows(now)

	snap, err := s.takeSnapshot(ctx, windows)
	if err != nil {
		return AgentReport{}, err
	}

	agent, ok := snap.roster[agentID]
	if !ok {
		return AgentReport{}, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}

	report := AgentReport{
		AgentID:   agent.ID,
		AgentName: agent.Name,
		Windows:   make(map[string]AgentScorecard, len(windows)),
	}
	for _, w := range windows {
		report.Windows[w.Name] = snap.cards[w.Name][agentID]
	}

	report.Trends = TrendDeltas(report.Windows[WindowTrailingWeek], report.Windows[WindowPriorWeek])

	for _, w := range windows {
		if w.Name != WindowCurrentPeriod {
			continue
		}
		period := s.reportWindow(snap, w)
		for i := range period.Ranked {
			if period.Ranked[i].AgentID == agentID {
				ra := period.Ranked[i]
				report.Ranked = &ra
				report.Gap = period.Gaps[agentID]
				break
			}
		}
	}

	return report, nil
}

// WindowScoreboard ranks a single caller-supplied window with the
// any-activity qualification rule. A malformed window (start at or after end)
// is rejected before any aggregation begins.
func (s *ScorecardService) WindowScoreboard(ctx context.Context, start, end time.Time) (WindowReport, error) {
	if !end.After(start) {
		return WindowReport{}, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidWindow,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	w := Window{Name: "custom", Start: start, End: end}
	snap, err := s.takeSnapshot(ctx, []Window{w})
	if err != nil {
		return WindowReport{}, err
	}
	return s.reportWindow(snap, w), nil
}

// coveringSpan returns the smallest [start, end) span containing every
// window. A zero start means unbounded history.
func coveringSpan(windows []Window) (time.Time, time.Time) {
	var start, end time.Time
	unbounded := false
	for i, w := range windows {
		if w.Start.IsZero() {
			unbounded = true
		} else if i == 0 || w.Start.Before(start) {
			start = w.Start
		}
		if w.End.After(end) {
			end = w.End
		}
	}
	if unbounded {
		start = time.Time{}
	}
	return start, end
}
