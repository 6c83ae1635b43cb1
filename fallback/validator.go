package fallback

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/petal-labs/qrfetch/core"
)

// Response is a completed HTTP exchange as delivered by the transport.
type Response struct {
	Status int
	Header http.Header
	Body   []byte

	// Truncated is set when the body exceeded the transport's size limit.
	Truncated bool
}

// ContentType returns the media type without parameters, lower-cased, or ""
// when the header is absent.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	raw := r.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(raw); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// Validate decides whether a response carries a usable image. It runs the
// same checks for every strategy, in this order: body present, status 2xx,
// content type image/* when a content type is available.
func Validate(resp *Response) (*core.Image, *core.AttemptError) {
	if resp == nil || len(resp.Body) == 0 {
		status := 0
		if resp != nil {
			status = resp.Status
		}
		return nil, invalid(status, "empty response body")
	}
	if resp.Truncated {
		return nil, invalid(resp.Status, "response body exceeds size limit")
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, invalid(resp.Status, fmt.Sprintf("unexpected status %d, want 2xx", resp.Status))
	}

	ct := resp.ContentType()
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, invalid(resp.Status, fmt.Sprintf("content type %q is not an image", ct))
	}

	return &core.Image{Data: resp.Body, ContentType: ct}, nil
}

func invalid(status int, msg string) *core.AttemptError {
	return &core.AttemptError{
		Kind:    core.KindInvalidResponse,
		Status:  status,
		Message: msg,
	}
}
