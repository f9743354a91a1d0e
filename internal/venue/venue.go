package venue

import (
	"context"

	"swapflow/internal/domain"
)

// QuoteSource produces a price/fee quote for a token pair.
type QuoteSource interface {
	// Name identifies the venue in quotes and routing events.
	Name() string

	// Quote returns the venue's current offer for swapping amount of
	// tokenIn into tokenOut.
	Quote(ctx context.Context, tokenIn, tokenOut string, amount float64) (domain.Quote, error)
}

// Executor settles an order against a venue.
type Executor interface {
	// ExecuteSwap submits the order for settlement and blocks until
	// the venue confirms it.
	ExecuteSwap(ctx context.Context, order domain.Order) (domain.ExecutionResult, error)
}
