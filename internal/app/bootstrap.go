package app

import (
	"log/slog"
	"time"

	"swapflow/internal/infra"
	"swapflow/internal/pipeline"
	"swapflow/internal/router"
	"swapflow/internal/server"
	"swapflow/internal/stream"
	"swapflow/internal/venue"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config   *infra.Config
	Registry *stream.Registry
	Runner   *pipeline.Runner
	Server   *server.Server
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, installs the logger, and wires the
// full component graph: venues → router → pipeline runner → HTTP
// surface, all sharing one injected subscriber registry.
func (b *Bootstrap) Initialize() error {
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))

	// The registry is the only shared mutable resource; both the
	// pipeline and the connection handler get this one instance.
	b.Registry = stream.NewRegistry()

	sources := make([]venue.QuoteSource, 0, len(cfg.Venues))
	executors := make(map[string]venue.Executor, len(cfg.Venues))
	for _, vc := range cfg.Venues {
		sim := venue.NewSimVenue(venue.SimConfig{
			Name:           vc.Name,
			ReferencePrice: vc.ReferencePrice,
			PriceBand:      vc.PriceBand,
			Fee:            vc.Fee,
			ExecMultiplier: vc.ExecMultiplier,

			QuoteLatencyMin: time.Duration(vc.QuoteLatencyMinMS) * time.Millisecond,
			QuoteLatencyMax: time.Duration(vc.QuoteLatencyMaxMS) * time.Millisecond,
			ExecLatencyMin:  time.Duration(vc.ExecLatencyMinMS) * time.Millisecond,
			ExecLatencyMax:  time.Duration(vc.ExecLatencyMaxMS) * time.Millisecond,
		})
		sources = append(sources, sim)
		executors[vc.Name] = sim
	}

	b.Runner = pipeline.NewRunner(router.New(sources, executors), b.Registry, cfg.BuildDelay())

	var limiter *infra.RateLimiter
	if cfg.Server.SubmitBurst > 0 && cfg.Server.SubmitPerSecond > 0 {
		limiter = infra.NewRateLimiter(cfg.Server.SubmitBurst, cfg.Server.SubmitPerSecond)
	}
	b.Server = server.New(cfg, b.Runner, b.Registry, limiter)

	slog.Info("components wired",
		slog.Int("venues", len(cfg.Venues)),
		slog.String("addr", cfg.Server.Addr))

	return nil
}
