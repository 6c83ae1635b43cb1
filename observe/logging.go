package observe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/petal-labs/qrfetch/core"
)

// LogObserver writes pipeline events to a slog.Logger.
//
// Levels: call and attempt starts and retries at Debug, a successful
// attempt at Info, a failed attempt at Warn and exhaustion at Error.
type LogObserver struct {
	core.BaseObserver
	logger *slog.Logger
}

// NewLogObserver returns an observer logging to logger, or to slog.Default()
// when logger is nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallStart(ctx context.Context, e core.CallStartEvent) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, "qr request started",
		slog.String("call_id", e.CallID),
		slog.Int("text_length", e.TextLength),
	)
}

func (o *LogObserver) OnAttemptStart(ctx context.Context, e core.AttemptStartEvent) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, "qr attempt started",
		slog.String("call_id", e.CallID),
		slog.String("strategy", e.Strategy),
		slog.Int("index", e.Index),
	)
}

func (o *LogObserver) OnRetry(ctx context.Context, e core.RetryEvent) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, "qr attempt retrying",
		slog.String("call_id", e.CallID),
		slog.String("strategy", e.Strategy),
		slog.Int("retry", e.Retry),
		slog.Duration("delay", e.Delay),
		slog.Any("error", e.Err),
	)
}

func (o *LogObserver) OnAttemptEnd(ctx context.Context, e core.AttemptEndEvent) {
	a := e.Attempt
	if !a.Failed() {
		o.logger.LogAttrs(ctx, slog.LevelInfo, "qr attempt succeeded",
			slog.String("call_id", e.CallID),
			slog.String("strategy", a.Strategy),
			slog.Int("bytes", e.Bytes),
			slog.String("content_type", e.ContentType),
			slog.Duration("duration", a.Duration()),
		)
		return
	}

	attrs := []slog.Attr{
		slog.String("call_id", e.CallID),
		slog.String("strategy", a.Strategy),
		slog.String("kind", a.Kind.String()),
		slog.String("message", a.Message),
		slog.Duration("duration", a.Duration()),
	}
	if a.Status != 0 {
		attrs = append(attrs, slog.Int("status", a.Status))
	}
	o.logger.LogAttrs(ctx, slog.LevelWarn, "qr attempt failed", attrs...)
}

func (o *LogObserver) OnCallEnd(ctx context.Context, e core.CallEndEvent) {
	var exhausted *core.ExhaustedError
	switch {
	case e.Err == nil:
		o.logger.LogAttrs(ctx, slog.LevelDebug, "qr request finished",
			slog.String("call_id", e.CallID),
			slog.String("strategy", e.Strategy),
			slog.Int("attempts", len(e.Attempts)),
			slog.Duration("duration", e.Duration()),
		)
	case errors.As(e.Err, &exhausted):
		msg, kind := core.Summarize(exhausted.Attempts)
		o.logger.LogAttrs(ctx, slog.LevelError, "qr request exhausted all strategies",
			slog.String("call_id", e.CallID),
			slog.Int("attempts", len(exhausted.Attempts)),
			slog.String("kind", kind.String()),
			slog.String("summary", msg),
			slog.Duration("duration", e.Duration()),
		)
	default:
		o.logger.LogAttrs(ctx, slog.LevelWarn, "qr request abandoned",
			slog.String("call_id", e.CallID),
			slog.Int("attempts", len(e.Attempts)),
			slog.Any("error", e.Err),
		)
	}
}

var _ core.Observer = (*LogObserver)(nil)
