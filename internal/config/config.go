package config

import (
	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv    string `koanf:"app_env"`
	Addr      string `koanf:"addr"`
	DBDriver  string `koanf:"db_driver"`
	DBPath    string `koanf:"db_path"`
	RedisAddr string `koanf:"redis_addr"`

	// CacheTTLMinutes is the scoreboard report cache lifetime.
	CacheTTLMinutes int `koanf:"cache_ttl_minutes"`

	// Timezone is the canonical reporting timezone, e.g. "America/Chicago".
	Timezone string `koanf:"timezone"`

	Scoring ScoringConfig `koanf:"scoring"`
}

// WeightEntryConfig maps a (category, disposition) pair to points. An empty
// disposition is the category default.
type WeightEntryConfig struct {
	Category    string  `koanf:"category"`
	Disposition string  `koanf:"disposition"`
	Points      float64 `koanf:"points"`
}

// TierConfig is one tier band; bands apply most to least exclusive.
type TierConfig struct {
	Name          string  `koanf:"name"`
	MinPercentile int     `koanf:"min_percentile"`
	MinScore      float64 `koanf:"min_score"`
}

// ScoringConfig carries every tunable of the scoring pipeline. Values that
// used to live as literals at call sites (the hybrid split, the external-day
// minimum, tier thresholds) are configuration here.
type ScoringConfig struct {
	Weights []WeightEntryConfig `koanf:"weights"`

	// ExternalCategory is the weight-table category for board completions.
	ExternalCategory string `koanf:"external_category"`
	// ExternalDayMinimum is the board count required before a board-only day
	// counts as worked; it guards against misdated imports marking non-work
	// days.
	ExternalDayMinimum int     `koanf:"external_day_minimum"`
	IdleCeilingHours   float64 `koanf:"idle_ceiling_hours"`

	VolumeWeight     float64 `koanf:"volume_weight"`
	ComplexityWeight float64 `koanf:"complexity_weight"`

	ExemptAgents       []string `koanf:"exempt_agents"`
	RestrictedCategory string   `koanf:"restricted_category"`

	AllTimeMinCompletions int `koanf:"all_time_min_completions"`
	PeriodMinDaysWorked   int `koanf:"period_min_days_worked"`

	PeriodAnchor     string `koanf:"period_anchor"`
	PeriodLengthDays int    `koanf:"period_length_days"`

	Tiers []TierConfig `koanf:"tiers"`
}

// Defaults returns the baseline configuration layered below file and env.
func Defaults() *Config {
	return &Config{
		AppEnv:          "development",
		Addr:            ":8080",
		DBDriver:        "sqlite3",
		DBPath:          "./data/database.db",
		RedisAddr:       "localhost:6379",
		CacheTTLMinutes: 10,
		Timezone:        "America/Chicago",
		Scoring: ScoringConfig{
			ExternalCategory:   "board",
			ExternalDayMinimum: 15,
			IdleCeilingHours:   4,
			VolumeWeight:       0.30,
			ComplexityWeight:   0.70,
			RestrictedCategory: "spam_review",

			AllTimeMinCompletions: 50,
			PeriodMinDaysWorked:   3,
			PeriodAnchor:          "2024-01-01",
			PeriodLengthDays:      14,
		},
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
