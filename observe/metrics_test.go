package observe

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/fallback"
	"github.com/petal-labs/qrfetch/internal/qrtest"
)

func newInstrumentedClient(srv *qrtest.Server, obs core.Observer) *core.Client {
	chain := fallback.New(
		fallback.WithBaseURL(srv.URL),
		fallback.WithRetryPolicy(core.NoDelayRetryPolicy{MaxRetries: 2}),
		fallback.WithObserver(obs),
	)
	return core.NewClient(chain, core.WithObserver(obs))
}

func TestMetricsObserverExhaustion(t *testing.T) {
	srv := qrtest.NewServer(qrtest.Always(qrtest.Status(http.StatusInternalServerError, "boom")))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg)
	client := newInstrumentedClient(srv, m)

	if _, err := client.Request(context.Background(), "Hello World"); err == nil {
		t.Fatal("expected exhaustion")
	}

	for _, id := range []string{"query-object", "manual-percent-encoded", "params-builder", "headers-with-retry"} {
		if got := testutil.ToFloat64(m.attempts.WithLabelValues(id, "server_error")); got != 1 {
			t.Errorf("attempts{%s,server_error} = %v, want 1", id, got)
		}
	}
	if got := testutil.ToFloat64(m.retries.WithLabelValues("headers-with-retry")); got != 2 {
		t.Errorf("retries{headers-with-retry} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues(OutcomeExhausted)); got != 1 {
		t.Errorf("calls{exhausted} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues(OutcomeSuccess)); got != 0 {
		t.Errorf("calls{success} = %v, want 0", got)
	}
}

func TestMetricsObserverSuccess(t *testing.T) {
	srv := qrtest.NewServer(qrtest.Sequence(
		qrtest.Status(http.StatusBadRequest, "bad"),
		qrtest.Image(),
	))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg)
	client := newInstrumentedClient(srv, m)

	res, err := client.Request(context.Background(), "Hello World")
	if err != nil {
		t.Fatal(err)
	}
	if res.Strategy != "manual-percent-encoded" {
		t.Fatalf("strategy = %s, want manual-percent-encoded", res.Strategy)
	}

	if got := testutil.ToFloat64(m.attempts.WithLabelValues("query-object", "server_error")); got != 1 {
		t.Errorf("attempts{query-object,server_error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("manual-percent-encoded", "none")); got != 1 {
		t.Errorf("attempts{manual-percent-encoded,none} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("calls{success} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.imageBytes); got != 1 {
		t.Errorf("image bytes series = %d, want 1", got)
	}
}

func TestMetricsObserverRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg)
	m.OnCallEnd(context.Background(), core.CallEndEvent{})

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"qrfetch_requests_total", "qrfetch_request_duration_seconds"} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{&core.ExhaustedError{}, OutcomeExhausted},
		{context.Canceled, OutcomeAbandoned},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("outcome(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
