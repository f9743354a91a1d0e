package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStage_String(t *testing.T) {
	cases := []struct {
		stage Stage
		want  string
	}{
		{StagePending, "pending"},
		{StageRouting, "routing"},
		{StageBuilding, "building"},
		{StageSubmitted, "submitted"},
		{StageConfirmed, "confirmed"},
		{StageFailed, "failed"},
		{Stage(99), "unknown"},
	}

	for _, c := range cases {
		if got := c.stage.String(); got != c.want {
			t.Errorf("Stage(%d).String() = %q, want %q", c.stage, got, c.want)
		}
	}
}

func TestStatusEvent_WireShape(t *testing.T) {
	// Stage-specific fields must be omitted when unset.
	b, err := json.Marshal(PendingEvent())
	if err != nil {
		t.Fatalf("marshal pending: %v", err)
	}
	if string(b) != `{"status":"pending"}` {
		t.Errorf("pending wire shape mismatch: %s", b)
	}

	b, err = json.Marshal(RoutingEvent("venueB", 99))
	if err != nil {
		t.Fatalf("marshal routing: %v", err)
	}
	if string(b) != `{"status":"routing","venue":"venueB","price":99}` {
		t.Errorf("routing wire shape mismatch: %s", b)
	}

	b, err = json.Marshal(ConfirmedEvent(ExecutionResult{SettlementID: "0xabc", RealizedPrice: 100.5}))
	if err != nil {
		t.Fatalf("marshal confirmed: %v", err)
	}
	if string(b) != `{"status":"confirmed","settlementId":"0xabc","realizedPrice":100.5}` {
		t.Errorf("confirmed wire shape mismatch: %s", b)
	}
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := &RoutingError{Venue: "venueA", Cause: errors.New("timeout")}
	err := &PipelineError{Stage: StageRouting, Cause: cause}

	var rerr *RoutingError
	if !errors.As(err, &rerr) {
		t.Fatal("expected errors.As to find RoutingError through PipelineError")
	}
	if rerr.Venue != "venueA" {
		t.Errorf("unexpected venue: %s", rerr.Venue)
	}
}
