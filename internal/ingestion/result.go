package ingestion

import (
	"errors"
	"fmt"

	"github.com/your-org/docrepo/internal/document"
	"github.com/your-org/docrepo/internal/sink"
)

// FailureSentinel is the invocation response for every failed invocation.
const FailureSentinel = "oops"

// State tracks an invocation through the pipeline.
type State string

const (
	StateStart     State = "start"
	StateFetched   State = "fetched"
	StateExtracted State = "extracted"
	StateFannedOut State = "fanned_out"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// Kind classifies invocation failures.
type Kind string

const (
	KindFetch      Kind = "fetch"
	KindExtraction Kind = "extraction"
	KindSink       Kind = "sink"
)

// StageError is the typed failure of one invocation.
type StageError struct {
	Kind Kind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result is the full report of one invocation.
type Result struct {
	InvocationID string
	State        State
	Document     *document.ExtractedDocument
	Payload      []byte
	Outcomes     []sink.Outcome
	Err          error
}

// OK reports whether the invocation reached StateDone.
func (r *Result) OK() bool {
	return r.State == StateDone
}

// Kind returns the failure kind, or "" for successful invocations.
func (r *Result) Kind() Kind {
	var se *StageError
	if errors.As(r.Err, &se) {
		return se.Kind
	}
	return ""
}

// Response projects the result onto the external contract: the serialized
// document on success, FailureSentinel otherwise.
func (r *Result) Response() string {
	if !r.OK() {
		return FailureSentinel
	}
	return string(r.Payload)
}

// Outcome returns the outcome recorded for the named sink.
func (r *Result) Outcome(name string) (sink.Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Sink == name {
			return o, true
		}
	}
	return sink.Outcome{}, false
}

// Report is the JSON view of a Result served to verbose callers.
type Report struct {
	InvocationID string         `json:"invocation_id"`
	State        State          `json:"state"`
	ErrorKind    Kind           `json:"error_kind,omitempty"`
	Error        string         `json:"error,omitempty"`
	Outcomes     []sink.Outcome `json:"outcomes,omitempty"`
}

func (r *Result) Report() Report {
	rep := Report{
		InvocationID: r.InvocationID,
		State:        r.State,
		ErrorKind:    r.Kind(),
		Outcomes:     r.Outcomes,
	}
	if r.Err != nil {
		rep.Error = r.Err.Error()
	}
	return rep
}
