// Package fallback runs a QR code request through an ordered list of
// encoding strategies until one of them yields a valid image.
//
// A Chain is a state machine over the strategy list:
//
//	Idle -> Attempting(0) -> ... -> Attempting(N-1) -> Exhausted
//	                 \______________________________-> Succeeded
//
// Every attempt goes through the same runner: build the request with the
// strategy, execute it (with transport retries when the strategy asks for
// them), classify transport failures and validate the response. The first
// success ends the run; later strategies are never invoked. Failures are
// recorded in the attempt log and the next strategy runs. The order is the
// declared order and never changes between calls.
package fallback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/strategy"
)

// Chain is the fallback pipeline. Chain is safe for concurrent use; it
// holds only configuration.
type Chain struct {
	config    Config
	transport *transport
}

// New creates a new Chain with the given options.
func New(opts ...Option) *Chain {
	cfg := Config{
		Path:         strategy.DefaultPath,
		HTTPClient:   http.DefaultClient,
		RetryPolicy:  core.DefaultRetryPolicy(),
		Observer:     core.NoopObserver{},
		MaxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if len(cfg.Strategies) == 0 {
		cfg.Strategies = strategy.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Timeout > 0 {
		hc := *cfg.HTTPClient
		hc.Timeout = cfg.Timeout
		cfg.HTTPClient = &hc
	}
	if cfg.RetryPolicy == nil {
		cfg.RetryPolicy = core.DefaultRetryPolicy()
	}
	if cfg.Observer == nil {
		cfg.Observer = core.NoopObserver{}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Chain{
		config: cfg,
		transport: &transport{
			client:  cfg.HTTPClient,
			baseURL: cfg.BaseURL,
			headers: cfg.Headers.Clone(),
			maxBody: cfg.MaxBodyBytes,
		},
	}
}

// Strategies returns a copy of the attempt order.
func (c *Chain) Strategies() []strategy.Strategy {
	out := make([]strategy.Strategy, len(c.config.Strategies))
	copy(out, c.config.Strategies)
	return out
}

// Fetch runs the payload through the strategies in order.
//
// On success the Result's attempt log holds every failed attempt followed by
// the successful one. When all strategies fail, or the chain stops at a
// server error, the error is a *core.ExhaustedError. A cancelled ctx stops
// the chain and returns an error wrapping ctx.Err(); the attempt in flight
// is discarded.
func (c *Chain) Fetch(ctx context.Context, p core.Payload) (*core.Result, error) {
	attempts := make([]core.Attempt, 0, len(c.config.Strategies))

	for i, s := range c.config.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("qr request abandoned before %s: %w", s.ID(), err)
		}

		img, attempt := c.attempt(ctx, i, s, p)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("qr request abandoned during %s: %w", s.ID(), err)
		}
		attempts = append(attempts, attempt)

		if !attempt.Failed() {
			return &core.Result{
				Image:    img,
				Strategy: s.ID(),
				Attempts: attempts,
			}, nil
		}

		if c.config.ShortCircuitOnServerError && attempt.Kind == core.KindServerError && attempt.Status >= 500 {
			break
		}
	}

	return nil, &core.ExhaustedError{Attempts: attempts}
}

// attempt runs one strategy to completion, including its transport retries.
func (c *Chain) attempt(ctx context.Context, index int, s strategy.Strategy, p core.Payload) (*core.Image, core.Attempt) {
	callID := core.CallIDFromContext(ctx)
	req := s.Build(c.config.Path, p)

	start := time.Now()
	c.config.Observer.OnAttemptStart(ctx, core.AttemptStartEvent{
		CallID:   callID,
		Strategy: s.ID(),
		Index:    index,
		Start:    start,
	})

	var (
		img     *core.Image
		failure *core.AttemptError
	)
	for retry := 0; ; retry++ {
		img, failure = c.exchange(ctx, req)
		if failure == nil || retry >= req.Retries {
			break
		}

		delay, ok := c.config.RetryPolicy.NextDelay(retry, failure)
		if !ok {
			break
		}
		c.config.Observer.OnRetry(ctx, core.RetryEvent{
			CallID:   callID,
			Strategy: s.ID(),
			Retry:    retry + 1,
			Delay:    delay,
			Err:      failure,
		})

		select {
		case <-ctx.Done():
			failure = Classify(&TransportError{Origin: OriginClient, Err: ctx.Err()})
		case <-time.After(delay):
			continue
		}
		break
	}

	attempt := core.Attempt{
		Strategy: s.ID(),
		Start:    start,
		End:      time.Now(),
	}
	end := core.AttemptEndEvent{CallID: callID, Index: index}
	if failure != nil {
		failure.Strategy = s.ID()
		attempt.Kind = failure.Kind
		attempt.Status = failure.Status
		attempt.Message = failure.Message
		attempt.Err = failure
	} else {
		end.Bytes = img.Size()
		end.ContentType = img.ContentType
	}
	end.Attempt = attempt
	c.config.Observer.OnAttemptEnd(ctx, end)

	return img, attempt
}

// exchange performs one HTTP round trip and turns it into an image or a
// classified failure. An empty body is an invalid response whatever the
// status; a non-empty error body is a server error.
func (c *Chain) exchange(ctx context.Context, req strategy.Request) (*core.Image, *core.AttemptError) {
	resp, err := c.transport.do(ctx, req)
	if err != nil {
		return nil, Classify(FromError(err))
	}

	if len(resp.Body) > 0 && resp.Status >= 400 {
		return nil, Classify(&TransportError{
			Origin:    OriginServer,
			Status:    resp.Status,
			HasStatus: true,
		})
	}
	return Validate(resp)
}

// Compile-time check that Chain implements core.Fetcher.
var _ core.Fetcher = (*Chain)(nil)
