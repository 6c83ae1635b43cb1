package commands

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/petal-labs/qrfetch/cli/config"
	"github.com/petal-labs/qrfetch/internal/qrtest"
)

func TestProbeTable(t *testing.T) {
	// A proxy that rejects percent-encoded colons lets only the params
	// builder through.
	srv := qrtest.NewServer(qrtest.RejectRawQuery(qrtest.Always(qrtest.Image()), "%3A"))
	defer srv.Close()

	app := newTestApp(t, &config.Config{BaseURL: srv.URL})
	if err := app.run("probe", "--text", "https://example.com"); err != nil {
		t.Fatalf("probe error = %v\nstderr: %s", err, app.stderr)
	}

	lines := strings.Split(strings.TrimSpace(app.stdout.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("table has %d lines, want header + 4:\n%s", len(lines), app.stdout)
	}
	if !strings.HasPrefix(lines[0], "STRATEGY") {
		t.Errorf("header = %q", lines[0])
	}

	want := map[string]string{
		"query-object":           "server_error",
		"manual-percent-encoded": "server_error",
		"params-builder":         "none",
		"headers-with-retry":     "server_error",
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if kind, ok := want[fields[0]]; !ok || fields[3] != kind {
			t.Errorf("row %q, want kind %q", line, kind)
		}
	}
}

func TestProbeJSONRepeat(t *testing.T) {
	srv := qrtest.NewServer(qrtest.Always(qrtest.Image()))
	defer srv.Close()

	app := newTestApp(t, &config.Config{
		BaseURL:    srv.URL,
		Strategies: []string{"query-object", "params-builder"},
	})
	if err := app.run("probe", "--json", "--text", "x", "--repeat", "3"); err != nil {
		t.Fatal(err)
	}

	var results []probeResult
	if err := json.Unmarshal(app.stdout.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON %q: %v", app.stdout, err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Successes != 3 || r.Failures != 0 {
			t.Errorf("%s: successes=%d failures=%d, want 3/0", r.Strategy, r.Successes, r.Failures)
		}
	}
	if srv.Count() != 6 {
		t.Errorf("hits = %d, want 6", srv.Count())
	}
}

func TestProbeAllFail(t *testing.T) {
	srv := qrtest.NewServer(qrtest.Always(qrtest.Status(http.StatusBadGateway, "upstream down")))
	defer srv.Close()

	app := newTestApp(t, &config.Config{BaseURL: srv.URL})
	err := app.run("probe", "--text", "x")

	if code := exitCode(t, err); code != ExitServer {
		t.Errorf("exit code = %d, want %d", code, ExitServer)
	}
	if !strings.Contains(app.stdout.String(), "headers-with-retry") {
		t.Errorf("table should still be printed:\n%s", app.stdout)
	}
}

func TestProbeRejectsBadRepeat(t *testing.T) {
	app := newTestApp(t, &config.Config{BaseURL: "http://localhost"})
	err := app.run("probe", "--text", "x", "--repeat", "0")

	if code := exitCode(t, err); code != ExitValidation {
		t.Errorf("exit code = %d, want %d", code, ExitValidation)
	}
}
