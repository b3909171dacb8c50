package service

import (
	"time"

	"github.com/BushMasterhtps/text-club-sub002/internal/repository/models"
)

const (
	// defaultExternalDayMinimum rejects days where only a handful of stray or
	// misdated board records exist; a lower count would incorrectly mark a
	// non-work day as worked.
	defaultExternalDayMinimum = 15

	// defaultIdleCeilingHours discards idle estimates above this value; gaps
	// that large are assumed to be legitimate breaks, not measurable idle time.
	defaultIdleCeilingHours = 4.0

	dateKeyFormat = "2006-01-02"
)

// BuilderConfig tunes scorecard aggregation.
type BuilderConfig struct {
	// ExternalCategory is the weight-table category used for board completions.
	ExternalCategory string
	// ExternalDayMinimum is the per-day board count required before that day
	// counts as worked.
	ExternalDayMinimum int
	// IdleCeilingHours caps the single-day idle estimate.
	IdleCeilingHours float64
	// RestrictedCategory is the designated category counted separately so the
	// partitioner can tell restricted-only work apart from general work.
	RestrictedCategory string
	// Location is the reporting timezone used for calendar-date bucketing.
	Location *time.Location
}

// ScorecardBuilder aggregates completed work into per-window scorecards.
type ScorecardBuilder struct {
	weights *WeightTable
	cfg     BuilderConfig
}

// NewScorecardBuilder creates a builder over a weight table.
func NewScorecardBuilder(weights *WeightTable, cfg BuilderConfig) *ScorecardBuilder {
	if weights == nil {
		panic("weights must not be nil")
	}
	if cfg.ExternalDayMinimum <= 0 {
		cfg.ExternalDayMinimum = defaultExternalDayMinimum
	}
	if cfg.IdleCeilingHours <= 0 {
		cfg.IdleCeilingHours = defaultIdleCeilingHours
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ScorecardBuilder{weights: weights, cfg: cfg}
}

// Accumulator folds work items and board completions for one agent and one
// window. It supports streaming aggregation: rows are added one at a time and
// the scorecard is materialized only on Scorecard.
type Accumulator struct {
	b       *ScorecardBuilder
	agentID string
	window  Window

	itemCount       int
	restrictedCount int
	weightedPoints  float64
	itemDays        map[string]struct{}

	externalCount int
	externalDays  map[string]int

	timedCount    int
	handleSeconds float64
	firstStart    time.Time
	lastEnd       time.Time
}

// NewAccumulator creates an empty accumulator for agentID over w.
func (b *ScorecardBuilder) NewAccumulator(agentID string, w Window) *Accumulator {
	return &Accumulator{
		b:            b,
		agentID:      agentID,
		window:       w,
		itemDays:     make(map[string]struct{}),
		externalDays: make(map[string]int),
	}
}

// creditedTo reports whether the item counts toward the agent's completion
// credit. Some categories allow one agent to resolve another's previously
// assigned item, so both the assignee and the resolver identities match.
func (a *Accumulator) creditedTo(item models.WorkItem) bool {
	return item.AgentID == a.agentID || item.CompletedBy == a.agentID
}

// AddItem folds one work item. Items outside the window or credited to a
// different agent are ignored.
func (a *Accumulator) AddItem(item models.WorkItem) {
	if !a.window.Contains(item.CompletedAt) || !a.creditedTo(item) {
		return
	}

	a.itemCount++
	if a.b.cfg.RestrictedCategory != "" && item.Category == a.b.cfg.RestrictedCategory {
		a.restrictedCount++
	}
	a.weightedPoints += a.b.weights.WeightOf(item.Category, item.Disposition)
	a.itemDays[item.CompletedAt.In(a.b.cfg.Location).Format(dateKeyFormat)] = struct{}{}

	if item.StartedAt != nil && !item.StartedAt.After(item.CompletedAt) {
		a.timedCount++
		a.handleSeconds += item.CompletedAt.Sub(*item.StartedAt).Seconds()
		if a.firstStart.IsZero() || item.StartedAt.Before(a.firstStart) {
			a.firstStart = *item.StartedAt
		}
		if item.CompletedAt.After(a.lastEnd) {
			a.lastEnd = item.CompletedAt
		}
	}
}

// AddExternal folds one board completion. The date-only record is placed on
// its calendar day in the reporting timezone; it counts when that day
// overlaps the window.
func (a *Accumulator) AddExternal(ec models.ExternalCompletion) {
	if ec.AgentID != a.agentID || ec.Count <= 0 {
		return
	}
	day := time.Date(ec.Date.Year(), ec.Date.Month(), ec.Date.Day(), 0, 0, 0, 0, a.b.cfg.Location)
	if !day.Before(a.window.End) || !day.Add(24*time.Hour).After(a.window.Start) {
		return
	}
	a.externalCount += ec.Count
	a.externalDays[day.Format(dateKeyFormat)] += ec.Count
}

// Scorecard materializes the aggregate. An agent with zero matching activity
// yields an all-zero scorecard, never an error.
func (a *Accumulator) Scorecard() AgentScorecard {
	card := AgentScorecard{
		AgentID:             a.agentID,
		WindowStart:         a.window.Start,
		WindowEnd:           a.window.End,
		ItemCount:           a.itemCount,
		RestrictedItemCount: a.restrictedCount,
		ExternalCount:       a.externalCount,
		TotalCount:          a.itemCount + a.externalCount,
	}

	days := make(map[string]struct{}, len(a.itemDays))
	for d := range a.itemDays {
		days[d] = struct{}{}
	}
	for d, n := range a.externalDays {
		if n >= a.b.cfg.ExternalDayMinimum {
			days[d] = struct{}{}
		}
	}
	card.DaysWorked = len(days)

	card.WeightedPoints = a.weightedPoints +
		float64(a.externalCount)*a.b.weights.WeightOf(a.b.cfg.ExternalCategory, "")

	if card.DaysWorked > 0 {
		card.ItemsPerDay = float64(card.TotalCount) / float64(card.DaysWorked)
		card.WeightedPointsPerDay = card.WeightedPoints / float64(card.DaysWorked)
	}

	if a.timedCount > 0 {
		card.AvgHandleSeconds = a.handleSeconds / float64(a.timedCount)
		card.ActiveHours = a.handleSeconds / 3600.0
	}
	if card.ActiveHours > 0 {
		card.PointsPerActiveHour = card.WeightedPoints / card.ActiveHours
	}

	card.IdleHoursEstimate = a.idleEstimate(card.ActiveHours)

	return card
}

// idleEstimate is computed only when the window spans a single calendar day
// and the agent has at least two timed items: the span from the first start
// to the last end, minus active time. Negative results clamp to zero and
// implausibly large ones are discarded.
func (a *Accumulator) idleEstimate(activeHours float64) float64 {
	if a.timedCount < 2 || !a.singleDayWindow() {
		return 0
	}
	idle := a.lastEnd.Sub(a.firstStart).Hours() - activeHours
	if idle < 0 || idle > a.b.cfg.IdleCeilingHours {
		return 0
	}
	return idle
}

func (a *Accumulator) singleDayWindow() bool {
	loc := a.b.cfg.Location
	start := a.window.Start.In(loc).Format(dateKeyFormat)
	end := a.window.End.Add(-time.Nanosecond).In(loc).Format(dateKeyFormat)
	return start == end
}

// Build is the collect-then-fold convenience over the accumulator.
func (b *ScorecardBuilder) Build(agentID string, items []models.WorkItem, externals []models.ExternalCompletion, w Window) AgentScorecard {
	acc := b.NewAccumulator(agentID, w)
	for _, item := range items {
		acc.AddItem(item)
	}
	for _, ec := range externals {
		acc.AddExternal(ec)
	}
	return acc.Scorecard()
}
