package service

import "time"

// Standard window names used in the aggregate scoreboard report.
const (
	WindowAllTime       = "all_time"
	WindowCurrentPeriod = "current_period"
	WindowToday         = "today"
	WindowTrailingWeek  = "trailing_week"
	WindowPriorWeek     = "prior_week"
)

// Tier labels, most to least exclusive. TierNotRanked is carried by
// UnrankedAgent entries, which have no numeric rank.
const (
	TierElite         = "Elite"
	TierHighPerformer = "High Performer"
	TierOnTrack       = "On Track"
	TierNeedsSupport  = "Needs Support"
	TierNotRanked     = "Not Ranked"
)

// Window is a half-open [Start, End) interval in the reporting timezone.
type Window struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// AgentScorecard is the derived per-agent, per-window aggregate. It is built
// fresh on every computation and never persisted as ground truth.
type AgentScorecard struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name,omitempty"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	ItemCount           int `json:"item_count"`
	RestrictedItemCount int `json:"restricted_item_count"`
	ExternalCount       int `json:"external_count"`
	TotalCount          int `json:"total_count"`
	DaysWorked          int `json:"days_worked"`

	WeightedPoints       float64 `json:"weighted_points"`
	WeightedPointsPerDay float64 `json:"weighted_points_per_day"`
	ItemsPerDay          float64 `json:"items_per_day"`

	AvgHandleSeconds    float64 `json:"avg_handle_seconds"`
	ActiveHours         float64 `json:"active_hours"`
	PointsPerActiveHour float64 `json:"points_per_active_hour"`
	IdleHoursEstimate   float64 `json:"idle_hours_estimate"`

	IsExempt    bool `json:"is_exempt"`
	IsQualified bool `json:"is_qualified"`
}

// Cohort partitions one window's scorecards. The three sets are disjoint and
// together cover every non-excluded agent.
type Cohort struct {
	Competitive []AgentScorecard
	Exempt      []AgentScorecard
	Unqualified []AgentScorecard
}

// RankedAgent is a competitive scorecard augmented with normalized scores,
// ranks, percentile and tier.
type RankedAgent struct {
	AgentScorecard

	VolumeScore     float64 `json:"volume_score"`
	ComplexityScore float64 `json:"complexity_score"`
	HybridScore     float64 `json:"hybrid_score"`

	RankByHybrid       int `json:"rank_by_hybrid"`
	RankByItemsPerDay  int `json:"rank_by_items_per_day"`
	RankByPointsPerDay int `json:"rank_by_points_per_day"`

	Percentile int    `json:"percentile"`
	Tier       string `json:"tier"`
}

// TrendDelta compares one metric between two non-overlapping windows.
// PercentUndefined is set instead of an infinite value when the prior value
// is zero and the current value is not.
type TrendDelta struct {
	Metric           string  `json:"metric"`
	CurrentValue     float64 `json:"current_value"`
	PriorValue       float64 `json:"prior_value"`
	AbsoluteChange   float64 `json:"absolute_change"`
	PercentChange    float64 `json:"percent_change"`
	PercentUndefined bool    `json:"percent_undefined"`
}

// NextRankGap describes the adjacent higher-ranked competitor.
type NextRankGap struct {
	AheadAgentID    string  `json:"ahead_agent_id"`
	AheadRank       int     `json:"ahead_rank"`
	HybridGap       float64 `json:"hybrid_gap"`
	PointsPerDayGap float64 `json:"points_per_day_gap"`
}

// UnrankedAgent is a scorecard reported outside the competitive ranking.
// Tier is always TierNotRanked; exempt and unqualified agents carry no
// numeric rank.
type UnrankedAgent struct {
	AgentScorecard

	Tier string `json:"tier"`
}

// WindowReport is one window's full cohort and ranking result. Gaps is keyed
// by agent ID; the rank-1 agent maps to nil.
type WindowReport struct {
	Window      Window                  `json:"window"`
	Ranked      []RankedAgent           `json:"ranked"`
	Exempt      []UnrankedAgent         `json:"exempt"`
	Unqualified []UnrankedAgent         `json:"unqualified"`
	Gaps        map[string]*NextRankGap `json:"gaps"`
}

// TeamReport aggregates every standard window, keyed by window name.
type TeamReport struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Windows     map[string]WindowReport `json:"windows"`
}

// AgentReport is the per-agent view: the raw scorecard for every standard
// window, the agent's ranked entry for the current period when competitively
// ranked, week-over-week trend deltas, and the current-period next-rank gap.
type AgentReport struct {
	AgentID   string                    `json:"agent_id"`
	AgentName string                    `json:"agent_name"`
	Windows   map[string]AgentScorecard `json:"windows"`
	Ranked    *RankedAgent              `json:"ranked,omitempty"`
	Trends    []TrendDelta              `json:"trends"`
	Gap       *NextRankGap              `json:"gap,omitempty"`
}
