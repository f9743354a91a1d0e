package domain

import "fmt"

// PipelineError wraps a stage failure so callers can tell where a run
// died. The same error is surfaced to the supervisor that started the
// run and summarized in the terminal failed StatusEvent.
type PipelineError struct {
	Stage Stage
	Cause error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Cause)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

// RoutingError means a quote request against a venue failed.
type RoutingError struct {
	Venue string
	Cause error
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("quote from %s failed: %v", e.Venue, e.Cause)
}

func (e *RoutingError) Unwrap() error { return e.Cause }

// ExecutionError means the settlement call against the chosen venue failed.
type ExecutionError struct {
	Venue string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution on %s failed: %v", e.Venue, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// ValidationError rejects a malformed submission before any pipeline
// run starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
