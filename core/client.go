package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Client is the single entry point for requesting QR code images.
// It wraps a Fetcher (normally a fallback chain) and adds call IDs and
// telemetry. Client is safe for concurrent use.
type Client struct {
	fetcher  Fetcher
	observer Observer
	newID    func() string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given fetcher and options.
func NewClient(f Fetcher, opts ...ClientOption) *Client {
	c := &Client{
		fetcher:  f,
		observer: NoopObserver{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithObserver sets the observer notified of call start and end.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithCallIDGenerator replaces the uuid-based call ID generator.
func WithCallIDGenerator(gen func() string) ClientOption {
	return func(c *Client) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// Request trims text and runs the fetcher. Empty text is never rejected
// here; the remote service and the response validation decide.
//
// On exhaustion the error is an *ExhaustedError carrying every attempt.
// If ctx is cancelled the error wraps ctx.Err() and any late result is
// discarded.
func (c *Client) Request(ctx context.Context, text string) (*Result, error) {
	p := NewPayload(text)
	id := c.newID()
	ctx = ContextWithCallID(ctx, id)

	start := time.Now()
	c.observer.OnCallStart(ctx, CallStartEvent{
		CallID:     id,
		TextLength: len(p.Text),
		Start:      start,
	})

	res, err := c.fetcher.Fetch(ctx, p)
	if err == nil && ctx.Err() != nil {
		res, err = nil, ctx.Err()
	}

	end := CallEndEvent{
		CallID: id,
		Start:  start,
		End:    time.Now(),
		Err:    err,
	}
	if res != nil {
		end.Strategy = res.Strategy
		end.Attempts = res.Attempts
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		end.Attempts = exhausted.Attempts
	}
	c.observer.OnCallEnd(ctx, end)

	return res, err
}

// Generate is Request for callers that only need the image or a single
// human-readable error. Exhaustion is reported as a *GenerateError whose
// message is chosen by Summarize.
func (c *Client) Generate(ctx context.Context, text string) (*Image, error) {
	res, err := c.Request(ctx, text)
	if err != nil {
		if ge := NewGenerateError(err); ge != nil {
			return nil, ge
		}
		return nil, err
	}
	return res.Image, nil
}
