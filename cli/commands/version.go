package commands

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petal-labs/qrfetch/strategy"
)

// Build metadata, set with ldflags:
//
//	go build -ldflags "-X github.com/petal-labs/qrfetch/cli/commands.Version=v1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// buildInfo is what `qrfetch version` reports.
type buildInfo struct {
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	BuildDate  string   `json:"build_date"`
	GoVersion  string   `json:"go_version"`
	Platform   string   `json:"platform"`
	APIPath    string   `json:"api_path"`
	Strategies []string `json:"strategies"`
}

func currentBuildInfo() buildInfo {
	return buildInfo{
		Version:    Version,
		Commit:     Commit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		APIPath:    strategy.DefaultPath,
		Strategies: strategy.IDs(),
	}
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the build version and the built-in request defaults: the QR endpoint path and the order strategies are tried in.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuildInfo()
			if a.jsonOutput {
				return json.NewEncoder(a.stdout).Encode(info)
			}

			w := a.stdout
			fmt.Fprintf(w, "qrfetch %s (%s, built %s)\n", info.Version, info.Commit, info.BuildDate)
			fmt.Fprintf(w, "  %s %s\n", info.GoVersion, info.Platform)
			fmt.Fprintf(w, "  endpoint:   GET %s?text=...\n", info.APIPath)
			fmt.Fprintf(w, "  strategies: %s\n", strings.Join(info.Strategies, " -> "))
			return nil
		},
	}
}
