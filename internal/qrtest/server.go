// Package qrtest provides a scriptable stand-in for the remote QR code
// service, for use in tests.
package qrtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Path is the endpoint the fake service routes.
const Path = "/api/qrcode"

// pngSignature starts every PNG file.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// PNG returns a small non-empty body that looks like a PNG image.
func PNG() []byte {
	out := make([]byte, 0, len(pngSignature)+8)
	out = append(out, pngSignature...)
	return append(out, 0, 0, 0, 13, 'I', 'H', 'D', 'R')
}

// Hit is one request received by the fake service.
type Hit struct {
	RawQuery string
	Text     string // text parameter as decoded by net/url
	Accept   string
}

// Reply is what the fake service answers.
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

// Behavior decides the reply to the n-th hit (starting at 0).
type Behavior func(n int, h Hit) Reply

// Server is a fake QR code service. It records every hit.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	hits     []Hit
	behavior Behavior
}

// NewServer starts a fake service answering GET Path with b.
// Other paths get 404 and other methods 405.
func NewServer(b Behavior) *Server {
	s := &Server{behavior: b}

	r := mux.NewRouter()
	r.HandleFunc(Path, s.handleQRCode).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	h := Hit{
		RawQuery: r.URL.RawQuery,
		Text:     r.URL.Query().Get("text"),
		Accept:   r.Header.Get("Accept"),
	}

	s.mu.Lock()
	n := len(s.hits)
	s.hits = append(s.hits, h)
	s.mu.Unlock()

	reply := s.behavior(n, h)
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}
	w.WriteHeader(reply.Status)
	_, _ = w.Write(reply.Body)
}

// Hits returns a copy of the recorded hits in arrival order.
func (s *Server) Hits() []Hit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Hit, len(s.hits))
	copy(out, s.hits)
	return out
}

// Count returns the number of recorded hits.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

// Image is a 200 reply with a PNG body.
func Image() Reply {
	return Reply{Status: http.StatusOK, ContentType: "image/png", Body: PNG()}
}

// Status is a reply with the given status and a plain-text body.
func Status(code int, body string) Reply {
	return Reply{Status: code, ContentType: "text/plain; charset=utf-8", Body: []byte(body)}
}

// Always answers every hit with r.
func Always(r Reply) Behavior {
	return func(int, Hit) Reply { return r }
}

// Sequence answers the n-th hit with replies[n], repeating the last reply
// once the list runs out.
func Sequence(replies ...Reply) Behavior {
	return func(n int, _ Hit) Reply {
		if len(replies) == 0 {
			return Image()
		}
		if n >= len(replies) {
			n = len(replies) - 1
		}
		return replies[n]
	}
}

// RejectRawQuery answers 400 when the raw query contains any of the given
// fragments, and defers to next otherwise. It models deployments behind
// filters that refuse percent-encoded schemes or separators.
func RejectRawQuery(next Behavior, fragments ...string) Behavior {
	return func(n int, h Hit) Reply {
		for _, f := range fragments {
			if strings.Contains(h.RawQuery, f) {
				return Status(http.StatusBadRequest, "malformed text parameter")
			}
		}
		return next(n, h)
	}
}

// ExpectText serves an image when the decoded text equals want and a 400
// otherwise, like a service that checks what it is about to encode.
func ExpectText(want string) Behavior {
	return func(_ int, h Hit) Reply {
		if h.Text == want {
			return Image()
		}
		return Status(http.StatusBadRequest, "text mismatch")
	}
}
