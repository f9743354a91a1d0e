package router

import (
	"context"
	"fmt"
	"log/slog"

	"swapflow/internal/domain"
	"swapflow/internal/venue"
)

// Router fans a quote request out to every configured venue and picks
// the winner. Venue order matters: ties are broken in favor of the
// earlier entry.
type Router struct {
	venues    []venue.QuoteSource
	executors map[string]venue.Executor
}

// New creates a router over an ordered venue list. Each venue that can
// settle swaps is looked up by name in executors.
func New(venues []venue.QuoteSource, executors map[string]venue.Executor) *Router {
	return &Router{venues: venues, executors: executors}
}

type quoteResult struct {
	idx   int
	quote domain.Quote
	err   error
}

// BestQuote requests quotes from all venues concurrently, waits for
// every request to settle, and returns the one with the lowest price.
// Lower price means more tokenOut per unit spent, so it is strictly
// better regardless of fee; fee is recorded on the quote but not
// compared. The first quote failure aborts the join immediately
// without waiting for the stragglers.
func (r *Router) BestQuote(ctx context.Context, order domain.Order) (domain.Quote, error) {
	if len(r.venues) == 0 {
		return domain.Quote{}, fmt.Errorf("no venues configured")
	}

	// Buffered so stragglers never block after a fail-fast return.
	results := make(chan quoteResult, len(r.venues))
	for i, src := range r.venues {
		go func(i int, src venue.QuoteSource) {
			q, err := src.Quote(ctx, order.TokenIn, order.TokenOut, order.AmountIn)
			results <- quoteResult{idx: i, quote: q, err: err}
		}(i, src)
	}

	quotes := make([]domain.Quote, len(r.venues))
	for range r.venues {
		res := <-results
		if res.err != nil {
			return domain.Quote{}, &domain.RoutingError{
				Venue: r.venues[res.idx].Name(),
				Cause: res.err,
			}
		}
		quotes[res.idx] = res.quote
	}

	best := 0
	for i := 1; i < len(quotes); i++ {
		// Strict < keeps the earlier venue on equal prices.
		if quotes[i].Price < quotes[best].Price {
			best = i
		}
	}

	slog.Debug("routing decision",
		slog.String("order_id", order.ID),
		slog.String("venue", quotes[best].Venue),
		slog.Float64("price", quotes[best].Price))

	return quotes[best], nil
}

// Execute settles the order on the named venue.
func (r *Router) Execute(ctx context.Context, venueName string, order domain.Order) (domain.ExecutionResult, error) {
	ex, ok := r.executors[venueName]
	if !ok {
		return domain.ExecutionResult{}, &domain.ExecutionError{
			Venue: venueName,
			Cause: fmt.Errorf("no executor registered"),
		}
	}

	res, err := ex.ExecuteSwap(ctx, order)
	if err != nil {
		return domain.ExecutionResult{}, &domain.ExecutionError{Venue: venueName, Cause: err}
	}
	return res, nil
}
