package core

import (
	"errors"
	"fmt"
)

// summaryPrefix matches the wording users already see in the web client.
const summaryPrefix = "failed to generate QR code"

// kindPriority ranks failures by how actionable they are. Lower wins.
// An unreachable service points at deployment misconfiguration, so it
// outranks anything the service itself said.
func kindPriority(a Attempt) int {
	switch a.Kind {
	case KindCorsOrUnreachable:
		return 0
	case KindClientSideNetwork:
		return 1
	case KindServerError:
		if a.Status >= 500 {
			return 2
		}
		return 3
	case KindInvalidResponse:
		return 4
	default:
		return 5
	}
}

// Summarize picks the most actionable failed attempt and renders it as one
// line. Ties go to the earliest attempt, so the result never depends on
// anything but the log contents.
func Summarize(attempts []Attempt) (string, ErrorKind) {
	best := -1
	for i, a := range attempts {
		if !a.Failed() {
			continue
		}
		if best < 0 || kindPriority(a) < kindPriority(attempts[best]) {
			best = i
		}
	}
	if best < 0 {
		return summaryPrefix + ": no attempts were made", KindUnknown
	}

	a := attempts[best]
	return fmt.Sprintf("%s: %s: %s (%d attempts)", summaryPrefix, a.Strategy, a.Message, len(attempts)), a.Kind
}

// NewGenerateError folds the attempt log of an exhausted run into a single
// summarized GenerateError. It returns nil when err does not wrap an
// *ExhaustedError.
func NewGenerateError(err error) *GenerateError {
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		return nil
	}
	msg, kind := Summarize(exhausted.Attempts)
	return &GenerateError{Message: msg, Kind: kind, Err: err}
}
