package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/fallback"
	"github.com/petal-labs/qrfetch/strategy"
)

func (a *App) newProbeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Test each encoding strategy against the service",
		Long: `Run every configured strategy on its own against the QR service and
report which ones succeed.

Use probe to find out which query encodings a deployment mishandles, for
example behind a proxy that rejects percent-encoded URLs.

Examples:
  qrfetch probe --text "https://example.com/?a=1&b=2"
  qrfetch probe --text "Hello" --repeat 20 --metrics-addr :9090`,
		RunE: a.runProbe,
	}

	cmd.Flags().StringVar(&a.probeText, "text", "", "text to encode (required)")
	cmd.Flags().IntVar(&a.probeRepeat, "repeat", 1, "requests per strategy")

	_ = cmd.MarkFlagRequired("text")
	return cmd
}

// probeResult aggregates the runs of one strategy.
type probeResult struct {
	Strategy   string `json:"strategy"`
	Successes  int    `json:"successes"`
	Failures   int    `json:"failures"`
	LastKind   string `json:"last_kind"`
	LastStatus int    `json:"last_status,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	AvgMS      int64  `json:"avg_ms"`

	attempts []core.Attempt
	total    time.Duration
}

func (a *App) runProbe(cmd *cobra.Command, args []string) error {
	if a.probeRepeat < 1 {
		return exitWithCode(ExitValidation, fmt.Errorf("--repeat must be at least 1, got %d", a.probeRepeat))
	}
	if err := a.cfg.Validate(); err != nil {
		return exitWithCode(ExitValidation, err)
	}
	strategies, err := strategy.ParseList(a.cfg.Strategies)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	s, err := a.startSession()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	defer s.close()

	ctx := cmd.Context()
	results := make([]*probeResult, 0, len(strategies))
	for _, st := range strategies {
		fetcher, err := a.newChain(a.cfg, fallback.WithStrategies(st), fallback.WithObserver(s.observer))
		if err != nil {
			return exitWithCode(ExitValidation, err)
		}
		client := core.NewClient(fetcher, core.WithObserver(s.observer))

		r := &probeResult{Strategy: st.ID(), LastKind: core.KindNone.String()}
		for i := 0; i < a.probeRepeat; i++ {
			res, err := client.Request(ctx, a.probeText)
			if ctx.Err() != nil {
				return handleFetchError(err)
			}
			r.record(res, err)
		}
		results = append(results, r)
	}

	if err := a.printProbe(results); err != nil {
		return err
	}

	// Probe fails only when no strategy worked at all.
	var all []core.Attempt
	for _, r := range results {
		if r.Successes > 0 {
			return nil
		}
		all = append(all, r.attempts...)
	}
	return handleFetchError(&core.ExhaustedError{Attempts: all})
}

func (r *probeResult) record(res *core.Result, err error) {
	var attempts []core.Attempt
	var exhausted *core.ExhaustedError
	switch {
	case err == nil:
		r.Successes++
		attempts = res.Attempts
	case errors.As(err, &exhausted):
		r.Failures++
		attempts = exhausted.Attempts
	default:
		r.Failures++
		r.LastKind = core.KindUnknown.String()
		r.LastError = err.Error()
		return
	}

	for _, at := range attempts {
		r.total += at.Duration()
		r.LastKind = at.Kind.String()
		r.LastStatus = at.Status
		r.LastError = at.Message
	}
	r.attempts = append(r.attempts, attempts...)
	if n := r.Successes + r.Failures; n > 0 {
		r.AvgMS = (r.total / time.Duration(n)).Milliseconds()
	}
}

func (a *App) printProbe(results []*probeResult) error {
	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tOK\tFAILED\tLAST\tSTATUS\tAVG\tERROR")
	for _, r := range results {
		status := "-"
		if r.LastStatus != 0 {
			status = fmt.Sprint(r.LastStatus)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%dms\t%s\n",
			r.Strategy, r.Successes, r.Failures, r.LastKind, status, r.AvgMS, r.LastError)
	}
	return w.Flush()
}
