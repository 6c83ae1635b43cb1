package commands

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/petal-labs/qrfetch/cli/config"
	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/fallback"
)

// testApp wires an App to in-memory streams, a fixed config and a chain
// that retries without waiting.
type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...AppOption) *testApp {
	t.Helper()
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvMetricsAddr, "")

	if cfg == nil {
		cfg = &config.Config{}
	}
	ta := &testApp{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	base := []AppOption{
		WithIO(strings.NewReader(""), ta.stdout, ta.stderr),
		WithConfigLoader(func(string) (*config.Config, error) { return cfg, nil }),
		WithTerminalCheck(func(io.Writer) bool { return false }),
		WithChainFactory(func(c *config.Config, extra ...fallback.Option) (core.Fetcher, error) {
			extra = append(extra, fallback.WithRetryPolicy(core.NoDelayRetryPolicy{MaxRetries: 2}))
			return defaultChainFactory(c, extra...)
		}),
	}
	ta.App = NewApp(append(base, opts...)...)
	return ta
}

func (ta *testApp) run(args ...string) error {
	ta.SetArgs(args)
	return ta.Execute()
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if !errors.As(err, &ee) {
		t.Fatalf("error %v (%T) carries no exit code", err, err)
	}
	return ee.ExitCode()
}
