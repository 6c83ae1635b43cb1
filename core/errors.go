package core

import (
	"errors"
	"fmt"
	"strings"
)

// AttemptError describes why one strategy attempt failed.
type AttemptError struct {
	Strategy string
	Kind     ErrorKind
	Status   int
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *AttemptError) Error() string {
	var b strings.Builder
	if e.Strategy != "" {
		b.WriteString(e.Strategy)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status=%d, kind=%s)", e.Status, e.Kind)
	} else {
		fmt.Fprintf(&b, " (kind=%s)", e.Kind)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *AttemptError) Unwrap() []error {
	errs := []error{SentinelForKind(e.Kind)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ExhaustedError is returned when every strategy failed.
type ExhaustedError struct {
	Attempts []Attempt
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Strategy, a.Kind))
	}
	return fmt.Sprintf("all %d strategies failed [%s]", len(e.Attempts), strings.Join(parts, ", "))
}

// Unwrap returns ErrExhausted followed by every attempt error.
func (e *ExhaustedError) Unwrap() []error {
	errs := []error{ErrExhausted}
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Last returns the final attempt, or false when the log is empty.
func (e *ExhaustedError) Last() (Attempt, bool) {
	if len(e.Attempts) == 0 {
		return Attempt{}, false
	}
	return e.Attempts[len(e.Attempts)-1], true
}

// GenerateError is the single-message failure handed to simple callers.
type GenerateError struct {
	Message string
	Kind    ErrorKind
	Err     error
}

func (e *GenerateError) Error() string {
	return e.Message
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// Sentinel errors for classification.
var (
	ErrClientSideNetwork = errors.New("client-side network error")
	ErrCorsOrUnreachable = errors.New("service unreachable or blocked")
	ErrServer            = errors.New("server error")
	ErrInvalidResponse   = errors.New("invalid response")
	ErrUnknown           = errors.New("unknown error")
	ErrExhausted         = errors.New("all strategies exhausted")
)

// SentinelForKind maps an ErrorKind to its sentinel error.
func SentinelForKind(k ErrorKind) error {
	switch k {
	case KindClientSideNetwork:
		return ErrClientSideNetwork
	case KindCorsOrUnreachable:
		return ErrCorsOrUnreachable
	case KindServerError:
		return ErrServer
	case KindInvalidResponse:
		return ErrInvalidResponse
	default:
		return ErrUnknown
	}
}
