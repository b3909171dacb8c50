package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering an optional YAML file and environment
// variables over the defaults. Precedence (low -> high):
//  1. Defaults()
//  2. file (YAML) if TCLUB_CONFIG is set
//  3. env (prefix TCLUB_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("TCLUB_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// TCLUB_REDIS_ADDR -> redis_addr; nested scoring keys are file-only.
	envProvider := env.Provider("TCLUB_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "tclub_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Scoring.VolumeWeight <= 0 || c.Scoring.ComplexityWeight <= 0 {
		return errors.New("hybrid weights must be positive")
	}
	if c.Scoring.PeriodLengthDays <= 0 {
		return errors.New("period_length_days must be positive")
	}
	return nil
}
