package strategy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request is the fully specified outgoing request a strategy produces.
// Exactly one of Query and RawQuery is set, unless the query was spliced
// into Path already.
type Request struct {
	Method string
	Path   string

	// Query is encoded by the transport.
	Query url.Values

	// RawQuery is sent verbatim.
	RawQuery string

	Header http.Header

	// ObserveResponse asks the transport for the full response envelope
	// (status and headers), not only the body.
	ObserveResponse bool

	// Retries is the number of extra transport attempts before failing.
	Retries int

	// ResponseType is always "blob": the body is treated as opaque bytes.
	ResponseType string
}

// URL resolves the request against baseURL.
func (r Request) URL(baseURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + r.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}
	switch {
	case r.Query != nil:
		u.RawQuery = r.Query.Encode()
	case r.RawQuery != "":
		u.RawQuery = r.RawQuery
	}
	return u, nil
}
