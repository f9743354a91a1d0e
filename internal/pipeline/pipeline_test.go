package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"swapflow/internal/domain"
	"swapflow/internal/router"
	"swapflow/internal/venue"
)

// recordingPublisher captures every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]domain.StatusEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[string][]domain.StatusEvent)}
}

func (p *recordingPublisher) Publish(orderID string, payload []byte) {
	var ev domain.StatusEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		panic(err)
	}
	p.mu.Lock()
	p.events[orderID] = append(p.events[orderID], ev)
	p.mu.Unlock()
}

func (p *recordingPublisher) statuses(orderID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events[orderID] {
		out = append(out, ev.Status)
	}
	return out
}

type fixedSource struct {
	name  string
	price float64
	fee   float64
	err   error
}

func (s *fixedSource) Name() string { return s.name }

func (s *fixedSource) Quote(ctx context.Context, tokenIn, tokenOut string, amount float64) (domain.Quote, error) {
	if s.err != nil {
		return domain.Quote{}, s.err
	}
	return domain.Quote{Venue: s.name, Price: s.price, Fee: s.fee}, nil
}

type fixedExecutor struct {
	result domain.ExecutionResult
	err    error
}

func (e *fixedExecutor) ExecuteSwap(ctx context.Context, order domain.Order) (domain.ExecutionResult, error) {
	return e.result, e.err
}

func newTestRouter(a, b venue.QuoteSource, executors map[string]venue.Executor) *router.Router {
	return router.New([]venue.QuoteSource{a, b}, executors)
}

func testOrder() domain.Order {
	return domain.Order{ID: "ord-42", TokenIn: "A", TokenOut: "B", AmountIn: 100}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRun_SuccessPathEmitsStagesInOrder(t *testing.T) {
	pub := newRecordingPublisher()
	r := newTestRouter(
		&fixedSource{name: "venueA", price: 101, fee: 0.003},
		&fixedSource{name: "venueB", price: 99, fee: 0.002},
		map[string]venue.Executor{
			"venueB": &fixedExecutor{result: domain.ExecutionResult{SettlementID: "0xbeef", RealizedPrice: 99.1}},
		},
	)
	runner := NewRunner(r, pub, time.Millisecond)

	res, err := runner.Run(context.Background(), testOrder())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.SettlementID != "0xbeef" {
		t.Errorf("unexpected settlement id: %s", res.SettlementID)
	}

	want := []string{"pending", "routing", "building", "submitted", "confirmed"}
	if got := pub.statuses("ord-42"); !equalStrings(got, want) {
		t.Errorf("event sequence = %v, want %v", got, want)
	}

	// The routing event must report venue B selected at 99.
	routing := pub.events["ord-42"][1]
	if routing.Venue != "venueB" || routing.Price != 99 {
		t.Errorf("routing event = %+v, want venueB at 99", routing)
	}

	confirmed := pub.events["ord-42"][4]
	if confirmed.SettlementID == "" {
		t.Error("confirmed event missing settlement id")
	}
}

func TestRun_RoutingFailureEmitsSingleFailedEvent(t *testing.T) {
	pub := newRecordingPublisher()
	r := newTestRouter(
		&fixedSource{name: "venueA", err: errors.New("venue A unreachable")},
		&fixedSource{name: "venueB", price: 99, fee: 0.002},
		nil,
	)
	runner := NewRunner(r, pub, time.Millisecond)

	_, err := runner.Run(context.Background(), testOrder())
	if err == nil {
		t.Fatal("expected Run to fail")
	}

	var perr *domain.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PipelineError, got %T", err)
	}
	if perr.Stage != domain.StageRouting {
		t.Errorf("failure stage = %s, want routing", perr.Stage)
	}
	var rerr *domain.RoutingError
	if !errors.As(err, &rerr) {
		t.Error("expected RoutingError in the chain")
	}

	want := []string{"pending", "failed"}
	if got := pub.statuses("ord-42"); !equalStrings(got, want) {
		t.Errorf("event sequence = %v, want %v", got, want)
	}
	failed := pub.events["ord-42"][1]
	if failed.Error == "" {
		t.Error("failed event missing error description")
	}
}

func TestRun_ExecutionFailure(t *testing.T) {
	pub := newRecordingPublisher()
	r := newTestRouter(
		&fixedSource{name: "venueA", price: 101, fee: 0.003},
		&fixedSource{name: "venueB", price: 99, fee: 0.002},
		map[string]venue.Executor{
			"venueB": &fixedExecutor{err: errors.New("settlement reverted")},
		},
	)
	runner := NewRunner(r, pub, time.Millisecond)

	_, err := runner.Run(context.Background(), testOrder())
	var perr *domain.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if perr.Stage != domain.StageSubmitted {
		t.Errorf("failure stage = %s, want submitted", perr.Stage)
	}

	// submitted is emitted before the settlement result is known, so
	// it precedes the failure.
	want := []string{"pending", "routing", "building", "submitted", "failed"}
	if got := pub.statuses("ord-42"); !equalStrings(got, want) {
		t.Errorf("event sequence = %v, want %v", got, want)
	}
}

func TestStart_RejectsDuplicateRun(t *testing.T) {
	pub := newRecordingPublisher()

	// Gate the quote call so the first run stays in flight.
	gate := make(chan struct{})
	blocking := &gatedSource{name: "venueA", price: 100, gate: gate}
	r := newTestRouter(
		blocking,
		&fixedSource{name: "venueB", price: 101},
		map[string]venue.Executor{
			"venueA": &fixedExecutor{result: domain.ExecutionResult{SettlementID: "0x1", RealizedPrice: 100}},
		},
	)
	runner := NewRunner(r, pub, time.Millisecond)

	order := testOrder()
	if err := runner.Start(context.Background(), order); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := runner.Start(context.Background(), order); err == nil {
		t.Error("second start for the same order id should be rejected")
	}
	close(gate)
}

type gatedSource struct {
	name  string
	price float64
	gate  chan struct{}
}

func (s *gatedSource) Name() string { return s.name }

func (s *gatedSource) Quote(ctx context.Context, tokenIn, tokenOut string, amount float64) (domain.Quote, error) {
	<-s.gate
	return domain.Quote{Venue: s.name, Price: s.price}, nil
}
