package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/qrfetch/core"
	"github.com/petal-labs/qrfetch/fallback"
)

// defaultFileNameChars is how much of the text goes into a default file name.
const defaultFileNameChars = 20

// DefaultFileName derives an output file name from the payload text:
// "qr-" plus its first 20 characters with anything other than ASCII
// letters and digits replaced by "_", plus ".png".
func DefaultFileName(text string) string {
	runes := []rune(text)
	if len(runes) > defaultFileNameChars {
		runes = runes[:defaultFileNameChars]
	}
	var b strings.Builder
	b.WriteString("qr-")
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString(".png")
	return b.String()
}

func (a *App) newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Request a QR code image",
		Long: `Request a QR code image for the given text and write it to a file.

Strategies are tried in order until one yields a valid image. The output
file defaults to qr-<text>.png; use --out - to write the image to stdout.

Examples:
  qrfetch generate --text "Hello World"
  qrfetch generate --text "https://example.com" --out example.png
  qrfetch generate --text "Hello" --out - > hello.png`,
		RunE: a.runGenerate,
	}

	cmd.Flags().StringVar(&a.genText, "text", "", "text to encode (surrounding whitespace is trimmed)")
	cmd.Flags().BoolVar(&a.genStdin, "stdin", false, "read the text to encode from stdin")
	cmd.Flags().StringVarP(&a.genOut, "out", "o", "", "output file, or - for stdout")
	cmd.Flags().BoolVar(&a.genForce, "force", false, "write binary output to a terminal")

	cmd.MarkFlagsMutuallyExclusive("text", "stdin")
	cmd.MarkFlagsOneRequired("text", "stdin")
	return cmd
}

// generateOutput is the --json rendering of a generate run.
type generateOutput struct {
	File        string          `json:"file"`
	Bytes       int             `json:"bytes"`
	ContentType string          `json:"content_type"`
	Strategy    string          `json:"strategy"`
	Attempts    []attemptOutput `json:"attempts"`
}

type attemptOutput struct {
	Strategy   string `json:"strategy"`
	Kind       string `json:"kind"`
	Status     int    `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func attemptsOutput(attempts []core.Attempt) []attemptOutput {
	out := make([]attemptOutput, 0, len(attempts))
	for _, at := range attempts {
		out = append(out, attemptOutput{
			Strategy:   at.Strategy,
			Kind:       at.Kind.String(),
			Status:     at.Status,
			Message:    at.Message,
			DurationMS: at.Duration().Milliseconds(),
		})
	}
	return out
}

func (a *App) runGenerate(cmd *cobra.Command, args []string) error {
	toStdout := a.genOut == "-"
	if toStdout && !a.genForce && a.isTerminal(a.stdout) {
		return exitWithCode(ExitValidation, fmt.Errorf("refusing to write image data to a terminal: redirect stdout or pass --force"))
	}

	if err := a.cfg.Validate(); err != nil {
		return exitWithCode(ExitValidation, err)
	}

	s, err := a.startSession()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	defer s.close()

	fetcher, err := a.newChain(a.cfg, fallback.WithObserver(s.observer))
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	client := core.NewClient(fetcher, core.WithObserver(s.observer))

	text := a.genText
	if a.genStdin {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return exitWithCode(ExitValidation, fmt.Errorf("read stdin: %w", err))
		}
		text = string(data)
	}

	res, err := client.Request(cmd.Context(), text)
	if err != nil {
		return handleFetchError(err)
	}

	file := a.genOut
	if file == "" {
		file = DefaultFileName(strings.TrimSpace(text))
	}
	if toStdout {
		if _, err := a.stdout.Write(res.Image.Data); err != nil {
			return exitWithCode(ExitValidation, err)
		}
	} else if err := os.WriteFile(file, res.Image.Data, 0644); err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("write %s: %w", file, err))
	}

	// Keep stdout clean for the image when streaming it.
	report := a.stdout
	if toStdout {
		report = a.stderr
	}

	if a.jsonOutput {
		enc := json.NewEncoder(report)
		enc.SetIndent("", "  ")
		return enc.Encode(generateOutput{
			File:        file,
			Bytes:       res.Image.Size(),
			ContentType: res.Image.ContentType,
			Strategy:    res.Strategy,
			Attempts:    attemptsOutput(res.Attempts),
		})
	}

	dest := file
	if toStdout {
		dest = "stdout"
	}
	fmt.Fprintf(report, "wrote %s (%d bytes, %s) via %s after %d attempt(s) in %s\n",
		dest, res.Image.Size(), res.Image.ContentType, res.Strategy, len(res.Attempts), totalDuration(res.Attempts))
	return nil
}

func totalDuration(attempts []core.Attempt) time.Duration {
	if len(attempts) == 0 {
		return 0
	}
	return attempts[len(attempts)-1].End.Sub(attempts[0].Start).Round(time.Millisecond)
}
