// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petal-labs/qrfetch/cli/config"
	"github.com/petal-labs/qrfetch/observe"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// TerminalCheck reports whether w is an interactive terminal.
type TerminalCheck func(w io.Writer) bool

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig  ConfigLoader
	newChain    ChainFactory
	isTerminal  TerminalCheck
	registry    *prometheus.Registry
	metrics     *observe.MetricsObserver
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	cfgFile     string
	baseURL     string
	metricsAddr string
	jsonOutput  bool
	verbose     bool
	trace       bool
	cfg         *config.Config
	logger      *slog.Logger

	genText  string
	genStdin bool
	genOut   string
	genForce bool

	probeText   string
	probeRepeat int

	initForce bool
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithChainFactory injects the fetcher constructor.
func WithChainFactory(factory ChainFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newChain = factory
		}
	}
}

// WithTerminalCheck replaces terminal detection.
func WithTerminalCheck(check TerminalCheck) AppOption {
	return func(a *App) {
		if check != nil {
			a.isTerminal = check
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:  config.LoadConfig,
		newChain:    defaultChainFactory,
		isTerminal:  isTerminal,
		registry:    prometheus.NewRegistry(),
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		probeRepeat: 1,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "qrfetch",
		Short: "qrfetch - resilient QR code client",
		Long: `qrfetch requests QR code images from a remote QR service.

Each request walks an ordered list of query encoding strategies until one
of them yields a valid image, so deployments that mangle one encoding still
work through another.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.qrfetch/config.yaml)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "QR service base URL (e.g. https://qr.example.com)")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "print OpenTelemetry spans to stderr")

	root.AddCommand(a.newGenerateCommand())
	root.AddCommand(a.newProbeCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which commands pass down to
// every request.
func (a *App) ExecuteContext(ctx context.Context) error {
	err := a.root.ExecuteContext(ctx)
	if err != nil {
		a.reportError(err)
	}
	return err
}

// SetArgs overrides the command line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) initConfig() error {
	if err := config.LoadDotEnv(); err != nil {
		return exitWithCode(ExitValidation, err)
	}

	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	cfg.ApplyEnv()

	// Flags win over file and environment.
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.metricsAddr != "" {
		cfg.MetricsAddr = a.metricsAddr
	}
	a.cfg = cfg

	a.logger = a.newLogger()
	return nil
}

func (a *App) newLogger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(a.stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !a.isTerminal(a.stderr),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute(ctx context.Context) error {
	return defaultApp.ExecuteContext(ctx)
}
