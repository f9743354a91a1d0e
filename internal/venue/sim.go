package venue

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"swapflow/internal/domain"
)

// SimConfig describes one simulated liquidity venue.
// Confirmation latency should be strictly larger than quote latency to
// model on-chain settlement versus a network round trip.
type SimConfig struct {
	Name           string
	ReferencePrice float64
	PriceBand      float64 // symmetric band around the reference, e.g. 0.02 = ±2%
	Fee            float64 // fixed fee fraction in [0,1)
	ExecMultiplier float64 // venue-specific adjustment on the realized price

	QuoteLatencyMin time.Duration
	QuoteLatencyMax time.Duration
	ExecLatencyMin  time.Duration
	ExecLatencyMax  time.Duration
}

// slippageBand is the symmetric perturbation applied to the realized
// price at settlement time.
const slippageBand = 0.001

// SimVenue simulates a liquidity source: quotes within a price band
// after a network-like delay, and settles swaps after a longer
// confirmation delay. It never fails on its own; failure paths are
// exercised by injecting stub implementations in tests.
type SimVenue struct {
	cfg SimConfig
}

// NewSimVenue creates a simulated venue from its config.
func NewSimVenue(cfg SimConfig) *SimVenue {
	return &SimVenue{cfg: cfg}
}

func (v *SimVenue) Name() string { return v.cfg.Name }

// Quote sleeps for a bounded random latency, then prices the pair
// inside the venue's band around the shared reference price.
func (v *SimVenue) Quote(ctx context.Context, tokenIn, tokenOut string, amount float64) (domain.Quote, error) {
	if err := sleepBetween(ctx, v.cfg.QuoteLatencyMin, v.cfg.QuoteLatencyMax); err != nil {
		return domain.Quote{}, err
	}

	ref := decimal.NewFromFloat(v.cfg.ReferencePrice)
	// jitter in [-1, 1), scaled by the band width
	jitter := decimal.NewFromFloat((2*rand.Float64() - 1) * v.cfg.PriceBand)
	price := ref.Mul(decimal.NewFromInt(1).Add(jitter))

	return domain.Quote{
		Venue: v.cfg.Name,
		Price: price.InexactFloat64(),
		Fee:   v.cfg.Fee,
	}, nil
}

// ExecuteSwap sleeps for the confirmation latency, then settles at the
// reference price adjusted by the venue multiplier and a small
// symmetric slippage perturbation.
func (v *SimVenue) ExecuteSwap(ctx context.Context, order domain.Order) (domain.ExecutionResult, error) {
	if err := sleepBetween(ctx, v.cfg.ExecLatencyMin, v.cfg.ExecLatencyMax); err != nil {
		return domain.ExecutionResult{}, err
	}

	ref := decimal.NewFromFloat(v.cfg.ReferencePrice)
	mult := decimal.NewFromFloat(v.cfg.ExecMultiplier)
	slip := decimal.NewFromFloat((2*rand.Float64() - 1) * slippageBand)
	realized := ref.Mul(mult).Mul(decimal.NewFromInt(1).Add(slip))

	return domain.ExecutionResult{
		SettlementID:  newSettlementID(),
		RealizedPrice: realized.InexactFloat64(),
	}, nil
}

// newSettlementID mints a transaction-hash-looking opaque token.
func newSettlementID() string {
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// sleepBetween blocks for a random duration in [min, max].
func sleepBetween(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min + 1)))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
