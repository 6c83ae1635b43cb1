package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/petal-labs/qrfetch/cli/config"
	"github.com/petal-labs/qrfetch/strategy"
)

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a commented starter config file.

The file goes to --config, or ~/.qrfetch/config.yaml by default. The base
URL is taken from --base-url or QRFETCH_BASE_URL when set.

Example:
  qrfetch init --base-url https://qr.example.com`,
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}

	cmd.Flags().BoolVar(&a.initForce, "force", false, "overwrite an existing config file")
	return cmd
}

func (a *App) runInit(cmd *cobra.Command, args []string) error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !a.initForce {
		return exitWithCode(ExitValidation, fmt.Errorf("config file %q already exists: pass --force to overwrite", path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err))
	}

	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if err := generateFile(path, configTemplate, templateData{
		BaseURL:    baseURL,
		Path:       strategy.DefaultPath,
		Strategies: strategy.IDs(),
	}); err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("failed to create %s: %w", path, err))
	}

	fmt.Fprintf(a.stdout, "Created config: %s\n\n", path)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  qrfetch probe --text \"Hello World\"\n")
	fmt.Fprintf(a.stdout, "  qrfetch generate --text \"Hello World\"\n")
	return nil
}

type templateData struct {
	BaseURL    string
	Path       string
	Strategies []string
}

func generateFile(path string, tmplContent string, data templateData) error {
	tmpl, err := template.New("file").Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

var configTemplate = `# qrfetch configuration
base_url: {{.BaseURL}}
path: {{.Path}}

# HTTP client timeout per request, e.g. 10s. Unset means no timeout.
# timeout: 10s

# Stop at the first 5xx instead of trying the remaining strategies.
short_circuit_server_errors: false

# Strategies in the order they are tried. Remove entries to skip them.
strategies:
{{- range .Strategies}}
  - {{.}}
{{- end}}

# Transport retries for strategies that retry (headers-with-retry).
retry:
  max_retries: 2
  base_delay: 250ms
  max_delay: 2s

# Serve Prometheus metrics while commands run.
# metrics_addr: ":9090"
`
