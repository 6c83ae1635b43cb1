package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/petal-labs/qrfetch/core"
)

// logRecords parses JSON log lines written by slog.JSONHandler.
func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		rec := map[string]any{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
}

func TestLogObserverLevels(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogObserver(newTestLogger(&buf, slog.LevelDebug))
	ctx := context.Background()
	start := time.Now()

	failed := core.Attempt{
		Strategy: "query-object",
		Kind:     core.KindServerError,
		Status:   500,
		Message:  "server responded 500 Internal Server Error",
		Start:    start,
		End:      start.Add(10 * time.Millisecond),
	}
	ok := core.Attempt{Strategy: "manual-percent-encoded", Start: start, End: start.Add(5 * time.Millisecond)}

	o.OnCallStart(ctx, core.CallStartEvent{CallID: "c1", TextLength: 11, Start: start})
	o.OnAttemptStart(ctx, core.AttemptStartEvent{CallID: "c1", Strategy: "query-object", Index: 0})
	o.OnAttemptEnd(ctx, core.AttemptEndEvent{CallID: "c1", Index: 0, Attempt: failed})
	o.OnAttemptEnd(ctx, core.AttemptEndEvent{CallID: "c1", Index: 1, Attempt: ok, Bytes: 42, ContentType: "image/png"})
	o.OnCallEnd(ctx, core.CallEndEvent{CallID: "c1", Strategy: ok.Strategy, Attempts: []core.Attempt{failed, ok}})

	recs := logRecords(t, &buf)
	wantLevels := []string{"DEBUG", "DEBUG", "WARN", "INFO", "DEBUG"}
	if len(recs) != len(wantLevels) {
		t.Fatalf("got %d records, want %d:\n%s", len(recs), len(wantLevels), buf.String())
	}
	for i, want := range wantLevels {
		if recs[i]["level"] != want {
			t.Errorf("record %d level = %v, want %s", i, recs[i]["level"], want)
		}
		if recs[i]["call_id"] != "c1" {
			t.Errorf("record %d call_id = %v, want c1", i, recs[i]["call_id"])
		}
	}

	if recs[2]["status"] != float64(500) || recs[2]["kind"] != "server_error" {
		t.Errorf("failure record = %v", recs[2])
	}
	if recs[3]["bytes"] != float64(42) || recs[3]["content_type"] != "image/png" {
		t.Errorf("success record = %v", recs[3])
	}
}

func TestLogObserverExhaustion(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogObserver(newTestLogger(&buf, slog.LevelInfo))

	attempts := []core.Attempt{
		{Strategy: "query-object", Kind: core.KindServerError, Status: 500, Message: "server responded 500"},
		{Strategy: "params-builder", Kind: core.KindCorsOrUnreachable, Message: "connection refused"},
	}
	o.OnCallEnd(context.Background(), core.CallEndEvent{
		CallID:   "c2",
		Attempts: attempts,
		Err:      &core.ExhaustedError{Attempts: attempts},
	})

	recs := logRecords(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", rec["level"])
	}
	if rec["kind"] != "cors_or_unreachable" {
		t.Errorf("kind = %v, want cors_or_unreachable", rec["kind"])
	}
	if s, _ := rec["summary"].(string); !strings.Contains(s, "params-builder") {
		t.Errorf("summary = %v", rec["summary"])
	}
}

func TestLogObserverAbandoned(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogObserver(newTestLogger(&buf, slog.LevelInfo))

	o.OnCallEnd(context.Background(), core.CallEndEvent{
		CallID: "c3",
		Err:    errors.Join(errors.New("qr request abandoned"), context.Canceled),
	})

	recs := logRecords(t, &buf)
	if len(recs) != 1 || recs[0]["level"] != "WARN" {
		t.Fatalf("records = %v, want one WARN", recs)
	}
}

func TestLogObserverNeverLogsPayload(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogObserver(newTestLogger(&buf, slog.LevelDebug))

	o.OnCallStart(context.Background(), core.CallStartEvent{CallID: "c4", TextLength: len("top secret")})

	if strings.Contains(buf.String(), "top secret") {
		t.Errorf("payload text leaked into logs: %s", buf.String())
	}
	if recs := logRecords(t, &buf); recs[0]["text_length"] != float64(10) {
		t.Errorf("text_length = %v, want 10", recs[0]["text_length"])
	}
}

func TestNewLogObserverNilLogger(t *testing.T) {
	if o := NewLogObserver(nil); o.logger == nil {
		t.Error("nil logger should fall back to slog.Default()")
	}
}
