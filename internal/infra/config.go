package infra

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// VenueConfig describes one simulated liquidity venue. Venue order in
// the config file is significant: routing ties go to the earlier entry.
type VenueConfig struct {
	Name           string  `yaml:"name"`
	ReferencePrice float64 `yaml:"reference_price"`
	PriceBand      float64 `yaml:"price_band"` // symmetric fraction, 0.02 = ±2%
	Fee            float64 `yaml:"fee"`        // fixed fee fraction
	ExecMultiplier float64 `yaml:"exec_multiplier"`

	QuoteLatencyMinMS int `yaml:"quote_latency_min_ms"`
	QuoteLatencyMaxMS int `yaml:"quote_latency_max_ms"`
	ExecLatencyMinMS  int `yaml:"exec_latency_min_ms"`
	ExecLatencyMaxMS  int `yaml:"exec_latency_max_ms"`
}

// Config holds the full application configuration. Loaded from YAML,
// then overridden by environment variables, then validated.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string  `yaml:"addr"`
		StaticDir       string  `yaml:"static_dir"`
		SubmitBurst     int     `yaml:"submit_burst"`
		SubmitPerSecond float64 `yaml:"submit_per_second"`
	} `yaml:"server"`

	Pipeline struct {
		BuildDelayMS int `yaml:"build_delay_ms"`
	} `yaml:"pipeline"`

	Venues []VenueConfig `yaml:"venues"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// BuildDelay returns the fixed transaction-assembly delay.
func (c *Config) BuildDelay() time.Duration {
	return time.Duration(c.Pipeline.BuildDelayMS) * time.Millisecond
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Pipeline.BuildDelayMS < 0 {
		return fmt.Errorf("build delay must not be negative")
	}
	if len(c.Venues) < 2 {
		return fmt.Errorf("at least two venues are required")
	}

	seen := make(map[string]bool)
	for i, v := range c.Venues {
		if v.Name == "" {
			return fmt.Errorf("venue %d: name is required", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("venue %q: duplicate name", v.Name)
		}
		seen[v.Name] = true

		if v.ReferencePrice <= 0 {
			return fmt.Errorf("venue %q: reference price must be positive", v.Name)
		}
		if v.PriceBand < 0 || v.PriceBand >= 1 {
			return fmt.Errorf("venue %q: price band must be in [0,1)", v.Name)
		}
		if v.Fee < 0 || v.Fee >= 1 {
			return fmt.Errorf("venue %q: fee must be in [0,1)", v.Name)
		}
		if v.ExecMultiplier <= 0 {
			return fmt.Errorf("venue %q: exec multiplier must be positive", v.Name)
		}
		if v.QuoteLatencyMaxMS < v.QuoteLatencyMinMS || v.QuoteLatencyMinMS < 0 {
			return fmt.Errorf("venue %q: invalid quote latency range", v.Name)
		}
		if v.ExecLatencyMaxMS < v.ExecLatencyMinMS || v.ExecLatencyMinMS < 0 {
			return fmt.Errorf("venue %q: invalid exec latency range", v.Name)
		}
		// Confirmation models on-chain settlement and must dominate a
		// quote round trip.
		if v.ExecLatencyMinMS < v.QuoteLatencyMaxMS {
			return fmt.Errorf("venue %q: exec latency must exceed quote latency", v.Name)
		}
	}

	return nil
}

// overrideWithEnv lets environment variables win over file values.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("SWAPFLOW_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := os.Getenv("SWAPFLOW_STATIC_DIR"); dir != "" {
		cfg.Server.StaticDir = dir
	}
	if level := os.Getenv("SWAPFLOW_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
