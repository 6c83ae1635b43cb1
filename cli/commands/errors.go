package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petal-labs/qrfetch/core"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitServer     = 2
	ExitNetwork    = 3
)

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCodeForKind maps the kind of the most actionable failure to an exit code.
func exitCodeForKind(k core.ErrorKind) int {
	switch k {
	case core.KindCorsOrUnreachable, core.KindClientSideNetwork:
		return ExitNetwork
	default:
		return ExitServer
	}
}

// handleFetchError turns a pipeline failure into an exit error carrying a
// single summarized message.
func handleFetchError(err error) error {
	if ge := core.NewGenerateError(err); ge != nil {
		return exitWithCode(exitCodeForKind(ge.Kind), ge)
	}
	return exitWithCode(ExitNetwork, err)
}

// reportError prints a command failure to stderr, as JSON with --json.
func (a *App) reportError(err error) {
	if !a.jsonOutput {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return
	}

	errType := "error"
	var (
		ge *core.GenerateError
		ee *exitError
	)
	switch {
	case errors.As(err, &ge):
		errType = ge.Kind.String()
	case errors.As(err, &ee) && ee.code == ExitValidation:
		errType = "validation_error"
	}
	output := map[string]interface{}{
		"error": map[string]interface{}{
			"type":    errType,
			"message": err.Error(),
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(output); encErr != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
}
