package commands

import (
	"time"

	"github.com/petal-labs/qrfetch/cli/config"
	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/fallback"
	"github.com/petal-labs/qrfetch/strategy"
)

// ChainFactory creates the fetcher for a command run. extra options are
// applied after the ones derived from cfg.
type ChainFactory func(cfg *config.Config, extra ...fallback.Option) (core.Fetcher, error)

func defaultChainFactory(cfg *config.Config, extra ...fallback.Option) (core.Fetcher, error) {
	opts, err := chainOptions(cfg)
	if err != nil {
		return nil, err
	}
	return fallback.New(append(opts, extra...)...), nil
}

func chainOptions(cfg *config.Config) ([]fallback.Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategies, err := strategy.ParseList(cfg.Strategies)
	if err != nil {
		return nil, err
	}

	opts := []fallback.Option{
		fallback.WithBaseURL(cfg.BaseURL),
		fallback.WithStrategies(strategies...),
		fallback.WithShortCircuitOnServerError(cfg.ShortCircuitServerErrors),
	}
	if cfg.Path != "" {
		opts = append(opts, fallback.WithPath(cfg.Path))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, fallback.WithTimeout(cfg.Timeout))
	}
	if !cfg.Retry.IsZero() {
		opts = append(opts, fallback.WithRetryPolicy(retryPolicy(cfg.Retry)))
	}
	return opts, nil
}

// retryPolicy fills unset fields with the library defaults.
func retryPolicy(r config.RetryConfig) core.RetryPolicy {
	rc := core.RetryConfig{
		MaxRetries: 2,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Jitter:     0.2,
	}
	if r.MaxRetries > 0 {
		rc.MaxRetries = r.MaxRetries
	}
	if r.BaseDelay > 0 {
		rc.BaseDelay = r.BaseDelay
	}
	if r.MaxDelay > 0 {
		rc.MaxDelay = r.MaxDelay
	}
	return core.NewRetryPolicy(rc)
}
