package infra

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Pipeline.BuildDelayMS = 100
	cfg.Venues = []VenueConfig{
		{
			Name: "venueA", ReferencePrice: 100, PriceBand: 0.02, Fee: 0.003, ExecMultiplier: 1.0,
			QuoteLatencyMinMS: 50, QuoteLatencyMaxMS: 150, ExecLatencyMinMS: 300, ExecLatencyMaxMS: 800,
		},
		{
			Name: "venueB", ReferencePrice: 100, PriceBand: 0.03, Fee: 0.002, ExecMultiplier: 0.999,
			QuoteLatencyMinMS: 50, QuoteLatencyMaxMS: 150, ExecLatencyMinMS: 300, ExecLatencyMaxMS: 800,
		},
	}
	return &cfg
}

func TestConfig_ValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestConfig_ValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "addr"},
		{"single venue", func(c *Config) { c.Venues = c.Venues[:1] }, "two venues"},
		{"duplicate venue", func(c *Config) { c.Venues[1].Name = "venueA" }, "duplicate"},
		{"zero price", func(c *Config) { c.Venues[0].ReferencePrice = 0 }, "reference price"},
		{"fee out of range", func(c *Config) { c.Venues[0].Fee = 1 }, "fee"},
		{"exec faster than quote", func(c *Config) { c.Venues[0].ExecLatencyMinMS = 10 }, "exec latency"},
	}

	for _, c := range cases {
		cfg := validConfig()
		c.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.wantErr) {
			t.Errorf("%s: error %q does not mention %q", c.name, err, c.wantErr)
		}
	}
}
