// Package strategy defines the closed set of ways a QR code request can be
// encoded and transmitted.
//
// All strategies issue the same logical call, GET <path>?text=<payload>.
// They differ only in how the text parameter is serialized, because the
// remote service decodes some character classes (reserved URL characters,
// protocol schemes) differently depending on the encoding it receives.
// Trying them in order routes around whichever encoding a deployment
// mishandles.
//
// Strategies are immutable values. [Default] returns them in their fixed
// priority order.
package strategy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/petal-labs/qrfetch/core"
)

const (
	// DefaultPath is the relative path of the QR code endpoint.
	DefaultPath = "/api/qrcode"

	// Param is the query parameter carrying the payload text.
	Param = "text"

	// DefaultRetries is the number of transport retries of HeadersWithRetry.
	DefaultRetries = 2
)

// Kind identifies a strategy variant.
type Kind int

const (
	// QueryObject passes the text as a structured parameter and lets the
	// transport encode it.
	QueryObject Kind = iota
	// ManualPercentEncoded pre-encodes the text and splices it into the path.
	ManualPercentEncoded
	// ParamsBuilder serializes the text with QueryBuilder.
	ParamsBuilder
	// HeadersWithRetry asks for the full response with image Accept headers
	// and retries at the transport level before giving up.
	HeadersWithRetry
)

var kindIDs = map[Kind]string{
	QueryObject:          "query-object",
	ManualPercentEncoded: "manual-percent-encoded",
	ParamsBuilder:        "params-builder",
	HeadersWithRetry:     "headers-with-retry",
}

// String returns the strategy identifier.
func (k Kind) String() string {
	if id, ok := kindIDs[k]; ok {
		return id
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Strategy is one fixed way of encoding and transmitting the request.
type Strategy struct {
	kind    Kind
	header  http.Header
	observe bool
	retries int
}

// New returns the strategy for kind with its standard configuration.
func New(kind Kind) Strategy {
	s := Strategy{kind: kind}
	if kind == HeadersWithRetry {
		s.header = http.Header{"Accept": {"image/*"}}
		s.observe = true
		s.retries = DefaultRetries
	}
	return s
}

// Default returns the four strategies in priority order. Each call returns
// a fresh slice.
func Default() []Strategy {
	return []Strategy{
		New(QueryObject),
		New(ManualPercentEncoded),
		New(ParamsBuilder),
		New(HeadersWithRetry),
	}
}

// Parse resolves a strategy identifier such as "params-builder".
func Parse(id string) (Strategy, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for k, name := range kindIDs {
		if name == id {
			return New(k), nil
		}
	}
	return Strategy{}, fmt.Errorf("unknown strategy: %q (available: %v)", id, IDs())
}

// ParseList resolves identifiers in order. An empty list yields Default().
func ParseList(ids []string) ([]Strategy, error) {
	if len(ids) == 0 {
		return Default(), nil
	}
	out := make([]Strategy, 0, len(ids))
	seen := make(map[Kind]bool, len(ids))
	for _, id := range ids {
		s, err := Parse(id)
		if err != nil {
			return nil, err
		}
		if seen[s.kind] {
			return nil, fmt.Errorf("duplicate strategy: %q", s.ID())
		}
		seen[s.kind] = true
		out = append(out, s)
	}
	return out, nil
}

// IDs lists every strategy identifier in priority order.
func IDs() []string {
	return []string{
		QueryObject.String(),
		ManualPercentEncoded.String(),
		ParamsBuilder.String(),
		HeadersWithRetry.String(),
	}
}

// Kind returns the variant.
func (s Strategy) Kind() Kind { return s.kind }

// ID returns the stable identifier used in attempt logs.
func (s Strategy) ID() string { return s.kind.String() }

// Retries returns the number of transport retries.
func (s Strategy) Retries() int { return s.retries }

// Build produces the outgoing request for p. An empty path means
// DefaultPath. Build never modifies p and never shares header maps between
// requests.
func (s Strategy) Build(path string, p core.Payload) Request {
	if path == "" {
		path = DefaultPath
	}

	req := Request{
		Method:          http.MethodGet,
		Path:            path,
		Header:          s.header.Clone(),
		ObserveResponse: s.observe,
		Retries:         s.retries,
		ResponseType:    "blob",
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}

	switch s.kind {
	case QueryObject, HeadersWithRetry:
		req.Query = url.Values{Param: {p.Text}}
	case ManualPercentEncoded:
		req.Path = path + "?" + Param + "=" + EncodeURIComponent(p.Text)
	case ParamsBuilder:
		req.RawQuery = NewQueryBuilder().Set(Param, p.Text).String()
	}

	return req
}
