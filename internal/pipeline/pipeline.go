package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"swapflow/internal/domain"
	"swapflow/internal/router"
)

// Publisher is the slice of the subscriber registry the pipeline needs.
// Publish is fire-and-forget: no subscriber means the event is dropped.
type Publisher interface {
	Publish(orderID string, payload []byte)
}

// Runner drives one order at a time through the execution pipeline:
//
//	PENDING → ROUTING → BUILDING → SUBMITTED → CONFIRMED
//	   └─────────┴──────────┴──────────┴───────→ FAILED
//
// Each transition publishes exactly one status event, strictly in
// stage order for a given order. Runs for different orders interleave
// freely.
type Runner struct {
	router     *router.Router
	publisher  Publisher
	buildDelay time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewRunner creates a pipeline runner. buildDelay models transaction
// assembly between routing and submission.
func NewRunner(r *router.Router, pub Publisher, buildDelay time.Duration) *Runner {
	return &Runner{
		router:     r,
		publisher:  pub,
		buildDelay: buildDelay,
		inflight:   make(map[string]struct{}),
	}
}

// Start schedules a run for the order on its own goroutine. The
// caller's contract is "the run is scheduled", never "the run is
// finished". A second start for an order id already in flight is
// rejected so no two concurrent runs can exist for the same order.
func (r *Runner) Start(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	if _, ok := r.inflight[order.ID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("pipeline already running for order %s", order.ID)
	}
	r.inflight[order.ID] = struct{}{}
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.inflight, order.ID)
			r.mu.Unlock()
		}()

		if _, err := r.Run(ctx, order); err != nil {
			slog.Warn("order pipeline failed",
				slog.String("order_id", order.ID),
				slog.Any("error", err))
		}
	}()

	return nil
}

// Run executes the full pipeline synchronously. Any stage failure is
// wrapped as a PipelineError, published as a terminal failed event,
// and returned to the caller. Once started a run is not cancelable
// and has no overall deadline.
func (r *Runner) Run(ctx context.Context, order domain.Order) (domain.ExecutionResult, error) {
	// PENDING: the order is accepted; no I/O happens here.
	r.emit(order.ID, domain.PendingEvent())

	// ROUTING: both venues quoted concurrently, lowest price wins.
	quote, err := r.router.BestQuote(ctx, order)
	if err != nil {
		return domain.ExecutionResult{}, r.fail(order.ID, domain.StageRouting, err)
	}
	r.emit(order.ID, domain.RoutingEvent(quote.Venue, quote.Price))

	// BUILDING: fixed preparation delay, no external call.
	select {
	case <-ctx.Done():
		return domain.ExecutionResult{}, r.fail(order.ID, domain.StageBuilding, ctx.Err())
	case <-time.After(r.buildDelay):
	}
	r.emit(order.ID, domain.BuildingEvent())

	// SUBMITTED is published the moment the settlement call goes out,
	// before its result is known, so the subscriber gets early
	// feedback that broadcast has occurred.
	r.emit(order.ID, domain.SubmittedEvent())

	result, err := r.router.Execute(ctx, quote.Venue, order)
	if err != nil {
		return domain.ExecutionResult{}, r.fail(order.ID, domain.StageSubmitted, err)
	}

	r.emit(order.ID, domain.ConfirmedEvent(result))

	slog.Info("order confirmed",
		slog.String("order_id", order.ID),
		slog.String("venue", quote.Venue),
		slog.String("settlement_id", result.SettlementID))

	return result, nil
}

// fail publishes the terminal failed event and wraps the cause so the
// supervisor can tell which stage died.
func (r *Runner) fail(orderID string, stage domain.Stage, cause error) error {
	perr := &domain.PipelineError{Stage: stage, Cause: cause}
	r.emit(orderID, domain.FailedEvent(cause.Error()))
	return perr
}

// emit is best-effort: a marshal or publish problem never aborts the
// run, because pipeline correctness must not depend on a subscriber
// being present.
func (r *Runner) emit(orderID string, ev domain.StatusEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal status event", slog.Any("error", err))
		return
	}
	r.publisher.Publish(orderID, payload)
}
