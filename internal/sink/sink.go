// Package sink distributes extracted documents to the archive bucket, the
// message stream and the search index.
package sink

import (
	"context"
	"fmt"
)

const (
	NameArchive = "archive"
	NameStream  = "stream"
	NameSearch  = "search"
)

// Status is the per-sink result of one fan-out.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome is not persisted; it only feeds the invocation report.
type Outcome struct {
	Sink   string `json:"sink"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func succeeded(sink, detail string) Outcome {
	return Outcome{Sink: sink, Status: StatusSucceeded, Detail: detail}
}

func skipped(sink, reason string) Outcome {
	return Outcome{Sink: sink, Status: StatusSkipped, Reason: reason}
}

// failed builds the outcome and the matching *Error for transport-level faults.
func failed(sink string, err error) (Outcome, error) {
	serr := &Error{Sink: sink, Err: err}
	return Outcome{Sink: sink, Status: StatusFailed, Reason: err.Error()}, serr
}

// Error reports a sink call that failed at the transport level.
type Error struct {
	Sink string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type invocationKey struct{}

// WithInvocationID tags ctx so published messages can carry the id.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationID returns the id set by WithInvocationID, or "".
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationKey{}).(string)
	return id
}
