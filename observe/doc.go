// Package observe provides core.Observer implementations that render
// pipeline events as structured logs, Prometheus metrics and OpenTelemetry
// spans.
//
// Observers never see the payload text. Events carry only its length, the
// strategy identifiers, statuses and failure messages, so they are safe to
// ship to shared log and metrics backends.
//
// Observers are combined with core.MultiObserver:
//
//	obs := core.MultiObserver{
//		observe.NewLogObserver(logger),
//		observe.NewMetricsObserver(prometheus.DefaultRegisterer),
//	}
//	chain := fallback.New(fallback.WithBaseURL(url), fallback.WithObserver(obs))
//	client := core.NewClient(chain, core.WithObserver(obs))
package observe
