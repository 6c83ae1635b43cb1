package observe

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/petal-labs/qrfetch/core"
)

// Call outcomes used as the "outcome" label.
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeAbandoned = "abandoned"
)

// MetricsObserver records Prometheus metrics for calls and attempts.
type MetricsObserver struct {
	core.BaseObserver

	calls           *prometheus.CounterVec
	callDuration    prometheus.Histogram
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	imageBytes      prometheus.Histogram
}

// NewMetricsObserver creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	factory := promauto.With(reg)
	return &MetricsObserver{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrfetch_requests_total",
				Help: "Total number of QR code requests by outcome",
			},
			[]string{"outcome"},
		),
		callDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qrfetch_request_duration_seconds",
				Help:    "End-to-end QR code request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrfetch_attempts_total",
				Help: "Total number of strategy attempts by strategy and result kind",
			},
			[]string{"strategy", "kind"},
		),
		attemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qrfetch_attempt_duration_seconds",
				Help:    "Strategy attempt latency in seconds, including transport retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrfetch_retries_total",
				Help: "Total number of transport retries by strategy",
			},
			[]string{"strategy"},
		),
		imageBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qrfetch_image_bytes",
				Help:    "Size of returned QR code images in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 2, 10),
			},
		),
	}
}

func (m *MetricsObserver) OnRetry(_ context.Context, e core.RetryEvent) {
	m.retries.WithLabelValues(e.Strategy).Inc()
}

func (m *MetricsObserver) OnAttemptEnd(_ context.Context, e core.AttemptEndEvent) {
	a := e.Attempt
	m.attempts.WithLabelValues(a.Strategy, a.Kind.String()).Inc()
	m.attemptDuration.WithLabelValues(a.Strategy).Observe(a.Duration().Seconds())
	if !a.Failed() {
		m.imageBytes.Observe(float64(e.Bytes))
	}
}

func (m *MetricsObserver) OnCallEnd(_ context.Context, e core.CallEndEvent) {
	m.calls.WithLabelValues(outcome(e.Err)).Inc()
	m.callDuration.Observe(e.Duration().Seconds())
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, core.ErrExhausted) {
		return OutcomeExhausted
	}
	return OutcomeAbandoned
}

var _ core.Observer = (*MetricsObserver)(nil)
