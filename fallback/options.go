package fallback

import (
	"net/http"
	"time"

	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/strategy"
)

// DefaultMaxBodyBytes caps the image size read from the service.
const DefaultMaxBodyBytes = 10 << 20

// Config holds configuration for a Chain.
type Config struct {
	// BaseURL is the service origin, e.g. https://qr.example.com (required).
	BaseURL string

	// Path is the endpoint path. Defaults to strategy.DefaultPath.
	Path string

	// HTTPClient is the HTTP client to use. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Headers contains optional extra headers sent with every strategy.
	Headers http.Header

	// Timeout is the optional per-request timeout of the HTTP client.
	Timeout time.Duration

	// Strategies is the attempt order. Defaults to strategy.Default().
	Strategies []strategy.Strategy

	// RetryPolicy paces transport retries of strategies that retry.
	RetryPolicy core.RetryPolicy

	// ShortCircuitOnServerError stops the chain at the first 5xx response.
	ShortCircuitOnServerError bool

	// Observer receives attempt events.
	Observer core.Observer

	// MaxBodyBytes caps the response body. Defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Option configures a Chain.
type Option func(*Config)

// WithBaseURL sets the service origin.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithPath sets the endpoint path.
func WithPath(path string) Option {
	return func(c *Config) {
		c.Path = path
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeader adds an extra header to every request.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Set(key, value)
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithStrategies overrides the attempt order.
func WithStrategies(s ...strategy.Strategy) Option {
	return func(c *Config) {
		c.Strategies = append([]strategy.Strategy(nil), s...)
	}
}

// WithRetryPolicy sets the transport retry pacing.
func WithRetryPolicy(r core.RetryPolicy) Option {
	return func(c *Config) {
		c.RetryPolicy = r
	}
}

// WithShortCircuitOnServerError stops the chain at the first 5xx.
// A 4xx never short-circuits: it is how a server reports a parameter it
// failed to decode, which the next strategy may fix.
func WithShortCircuitOnServerError(enabled bool) Option {
	return func(c *Config) {
		c.ShortCircuitOnServerError = enabled
	}
}

// WithObserver sets the attempt observer.
func WithObserver(o core.Observer) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

// WithMaxBodyBytes caps the response body size.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Config) {
		c.MaxBodyBytes = n
	}
}
