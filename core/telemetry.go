package core

import (
	"context"
	"time"
)

// Observer receives notifications at defined pipeline events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// # Security Considerations
//
// Events never carry the payload text or the image bytes, only sizes and
// operational metadata. QR payloads routinely hold URLs with tokens, Wi-Fi
// credentials or contact details, so events stay safe to ship to external
// monitoring systems. Keep it that way when adding fields.
//
// Observers are called synchronously on the requesting goroutine and must
// not block.
type Observer interface {
	// OnCallStart is called when the façade accepts a request.
	OnCallStart(ctx context.Context, e CallStartEvent)

	// OnAttemptStart is called before a strategy issues its request.
	OnAttemptStart(ctx context.Context, e AttemptStartEvent)

	// OnRetry is called before a strategy repeats its request internally.
	OnRetry(ctx context.Context, e RetryEvent)

	// OnAttemptEnd is called when a strategy attempt settles.
	OnAttemptEnd(ctx context.Context, e AttemptEndEvent)

	// OnCallEnd is called with the final outcome of a request.
	OnCallEnd(ctx context.Context, e CallEndEvent)
}

// CallStartEvent contains metadata about an accepted request.
type CallStartEvent struct {
	CallID     string
	TextLength int // Length of the trimmed payload in bytes
	Start      time.Time
}

// AttemptStartEvent contains metadata about a starting attempt.
type AttemptStartEvent struct {
	CallID   string
	Strategy string
	Index    int // Position in the strategy order, starting at 0
	Start    time.Time
}

// RetryEvent describes a transport-level retry inside one attempt.
type RetryEvent struct {
	CallID   string
	Strategy string
	Retry    int // 1 for the first retry
	Delay    time.Duration
	Err      error
}

// AttemptEndEvent contains metadata about a settled attempt.
type AttemptEndEvent struct {
	CallID      string
	Index       int
	Attempt     Attempt
	Bytes       int    // Body size on success
	ContentType string // Content type on success
}

// CallEndEvent contains the final outcome of a request.
type CallEndEvent struct {
	CallID   string
	Start    time.Time
	End      time.Time
	Strategy string // Successful strategy, empty on failure
	Attempts []Attempt
	Err      error
}

// Duration returns the elapsed time for the request.
func (e CallEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// BaseObserver implements Observer with no-op methods.
// Embed it to implement only the callbacks you need.
type BaseObserver struct{}

func (BaseObserver) OnCallStart(context.Context, CallStartEvent)       {}
func (BaseObserver) OnAttemptStart(context.Context, AttemptStartEvent) {}
func (BaseObserver) OnRetry(context.Context, RetryEvent)               {}
func (BaseObserver) OnAttemptEnd(context.Context, AttemptEndEvent)     {}
func (BaseObserver) OnCallEnd(context.Context, CallEndEvent)           {}

// NoopObserver is the default observer.
type NoopObserver = BaseObserver

// MultiObserver fans out events to multiple observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnCallStart(ctx context.Context, e CallStartEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallStart(ctx, e)
		}
	}
}

func (m MultiObserver) OnAttemptStart(ctx context.Context, e AttemptStartEvent) {
	for _, o := range m {
		if o != nil {
			o.OnAttemptStart(ctx, e)
		}
	}
}

func (m MultiObserver) OnRetry(ctx context.Context, e RetryEvent) {
	for _, o := range m {
		if o != nil {
			o.OnRetry(ctx, e)
		}
	}
}

func (m MultiObserver) OnAttemptEnd(ctx context.Context, e AttemptEndEvent) {
	for _, o := range m {
		if o != nil {
			o.OnAttemptEnd(ctx, e)
		}
	}
}

func (m MultiObserver) OnCallEnd(ctx context.Context, e CallEndEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallEnd(ctx, e)
		}
	}
}

type callIDKey struct{}

// ContextWithCallID returns a copy of ctx carrying the call ID.
func ContextWithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey{}, id)
}

// CallIDFromContext returns the call ID stored by the façade, or "".
func CallIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// Compile-time checks.
var (
	_ Observer = BaseObserver{}
	_ Observer = MultiObserver(nil)
)
