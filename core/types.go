package core

import (
	"context"
	"strings"
	"time"
)

// Payload is the logical input of one QR code request.
// Text is always trimmed; the empty string is a legal payload.
type Payload struct {
	Text string
}

// NewPayload builds a Payload from raw caller input.
func NewPayload(text string) Payload {
	return Payload{Text: strings.TrimSpace(text)}
}

// Image is the opaque artifact returned by the remote service.
type Image struct {
	Data        []byte
	ContentType string
}

// Size returns the number of bytes in the image.
func (i *Image) Size() int {
	if i == nil {
		return 0
	}
	return len(i.Data)
}

// ErrorKind classifies why a single attempt failed.
type ErrorKind int

const (
	// KindNone marks a successful attempt.
	KindNone ErrorKind = iota
	// KindClientSideNetwork means the request could not be built or sent.
	KindClientSideNetwork
	// KindCorsOrUnreachable means no response arrived (status 0, refused, blocked).
	KindCorsOrUnreachable
	// KindServerError means the service answered with a status >= 400.
	KindServerError
	// KindInvalidResponse means the response was not a usable image.
	KindInvalidResponse
	// KindUnknown covers everything else.
	KindUnknown
)

// String returns the kind identifier used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindClientSideNetwork:
		return "client_side_network"
	case KindCorsOrUnreachable:
		return "cors_or_unreachable"
	case KindServerError:
		return "server_error"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Attempt is one entry of the attempt log.
type Attempt struct {
	Strategy string    // Strategy identifier
	Kind     ErrorKind // KindNone on success
	Status   int       // HTTP status, 0 when no response arrived
	Message  string    // Human-readable failure reason, empty on success
	Start    time.Time
	End      time.Time
	Err      error // *AttemptError on failure
}

// Failed reports whether the attempt failed.
func (a Attempt) Failed() bool {
	return a.Kind != KindNone
}

// Duration returns how long the attempt took, including transport retries.
func (a Attempt) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Result is the successful outcome of a pipeline run.
type Result struct {
	Image    *Image
	Strategy string    // Identifier of the strategy that succeeded
	Attempts []Attempt // Failed attempts in order, followed by the successful one
}

// Fetcher runs one logical QR code request to completion.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, p Payload) (*Result, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, p Payload) (*Result, error)

// Fetch calls f(ctx, p).
func (f FetcherFunc) Fetch(ctx context.Context, p Payload) (*Result, error) {
	return f(ctx, p)
}
