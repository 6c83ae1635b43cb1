package fallback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/petal-labs/qrfetch/core"
)

// Origin tells whether a transport failure happened before the request left
// the client or after.
type Origin int

const (
	OriginServer Origin = iota
	OriginClient
)

// Network is the network-level subtype of a transport failure.
type Network int

const (
	NetworkNone Network = iota
	NetworkUnreachable
)

// TransportError is the uniform failure shape produced by the transport.
// Implementations should use HasStatus=false when no response arrived.
type TransportError struct {
	Origin    Origin
	Status    int
	HasStatus bool
	Network   Network
	Err       error
}

func (e *TransportError) Error() string {
	switch {
	case e.HasStatus:
		return fmt.Sprintf("transport: status %d", e.Status)
	case e.Err != nil:
		return "transport: " + e.Err.Error()
	default:
		return "transport: unknown failure"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Classify maps a transport failure to an AttemptError. The strategy field
// is left empty for the chain to fill in; classification never depends on
// which strategy ran.
func Classify(te *TransportError) *core.AttemptError {
	if te == nil {
		return &core.AttemptError{Kind: core.KindUnknown, Message: "unknown failure"}
	}

	switch {
	case te.Origin == OriginClient:
		return &core.AttemptError{
			Kind:    core.KindClientSideNetwork,
			Message: "could not build request: " + errString(te.Err),
			Err:     te,
		}
	case (te.HasStatus && te.Status == 0) || te.Network == NetworkUnreachable:
		return &core.AttemptError{
			Kind:    core.KindCorsOrUnreachable,
			Message: "service unreachable or blocked: " + errString(te.Err),
			Err:     te,
		}
	case te.HasStatus && te.Status >= 400:
		return &core.AttemptError{
			Kind:    core.KindServerError,
			Status:  te.Status,
			Message: fmt.Sprintf("server responded %d %s", te.Status, http.StatusText(te.Status)),
			Err:     te,
		}
	default:
		return &core.AttemptError{
			Kind:    core.KindUnknown,
			Status:  te.Status,
			Message: "unexpected transport failure: " + errString(te.Err),
			Err:     te,
		}
	}
}

// FromError converts an error returned by http.Client.Do into a
// TransportError. Errors that already are TransportErrors pass through.
func FromError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	te = &TransportError{Origin: OriginServer, Err: err}
	if isUnreachable(err) {
		te.Network = NetworkUnreachable
	}
	return te
}

func isUnreachable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func errString(err error) string {
	if err == nil {
		return "no response"
	}
	return err.Error()
}
