package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/observe"
)

// session holds the observers of one command run and tears them down.
type session struct {
	observer core.Observer
	closers  []func(context.Context) error
}

func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// startSession builds the observers selected by flags and config: logging
// always, metrics when a metrics address is set, spans with --trace.
func (a *App) startSession() (*session, error) {
	s := &session{}
	obs := core.MultiObserver{observe.NewLogObserver(a.logger)}

	if a.cfg.MetricsAddr != "" {
		if a.metrics == nil {
			a.metrics = observe.NewMetricsObserver(a.registry)
		}
		obs = append(obs, a.metrics)

		ln, err := net.Listen("tcp", a.cfg.MetricsAddr)
		if err != nil {
			return nil, err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go srv.Serve(ln)
		a.logger.Info("serving metrics", "addr", ln.Addr().String())

		s.closers = append(s.closers, srv.Shutdown)
	}

	if a.trace {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(a.stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			s.close()
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		obs = append(obs, observe.NewTraceObserver(tp))

		s.closers = append(s.closers, tp.Shutdown)
	}

	s.observer = obs
	return s, nil
}
