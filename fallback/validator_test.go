package fallback

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/petal-labs/qrfetch/core"
)

func TestValidateAcceptsImage(t *testing.T) {
	body := []byte("\x89PNG fake")
	img, failure := Validate(&Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"image/png"}},
		Body:   body,
	})
	if failure != nil {
		t.Fatalf("Validate() failure = %v", failure)
	}
	if !bytes.Equal(img.Data, body) {
		t.Errorf("Data = %q, want %q", img.Data, body)
	}
	if img.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", img.ContentType)
	}
}

func TestValidateWithoutContentType(t *testing.T) {
	img, failure := Validate(&Response{Status: http.StatusOK, Body: []byte("blob")})
	if failure != nil {
		t.Fatalf("Validate() failure = %v", failure)
	}
	if img.ContentType != "" {
		t.Errorf("ContentType = %q, want empty", img.ContentType)
	}
}

func TestValidateContentTypeParameters(t *testing.T) {
	_, failure := Validate(&Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"IMAGE/SVG+XML; charset=utf-8"}},
		Body:   []byte("<svg/>"),
	})
	if failure != nil {
		t.Errorf("Validate() failure = %v, want success", failure)
	}
}

func TestValidateEmptyBodyAnyStatus(t *testing.T) {
	for _, status := range []int{200, 204, 400, 404, 500, 503} {
		_, failure := Validate(&Response{
			Status: status,
			Header: http.Header{"Content-Type": {"image/png"}},
		})
		if failure == nil {
			t.Fatalf("status %d: Validate() succeeded on empty body", status)
		}
		if failure.Kind != core.KindInvalidResponse {
			t.Errorf("status %d: Kind = %v, want invalid_response", status, failure.Kind)
		}
		if !strings.Contains(failure.Message, "empty") {
			t.Errorf("status %d: Message = %q, should name the empty body check", status, failure.Message)
		}
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name     string
		resp     *Response
		wantText string
	}{
		{
			name:     "nil response",
			resp:     nil,
			wantText: "empty",
		},
		{
			name: "html body",
			resp: &Response{
				Status: http.StatusOK,
				Header: http.Header{"Content-Type": {"text/html"}},
				Body:   []byte("<html>oops</html>"),
			},
			wantText: "not an image",
		},
		{
			name: "json body",
			resp: &Response{
				Status: http.StatusOK,
				Header: http.Header{"Content-Type": {"application/json"}},
				Body:   []byte(`{"error":"nope"}`),
			},
			wantText: "not an image",
		},
		{
			name: "redirect status",
			resp: &Response{
				Status: http.StatusNotModified,
				Header: http.Header{"Content-Type": {"image/png"}},
				Body:   []byte("png"),
			},
			wantText: "status 304",
		},
		{
			name: "truncated",
			resp: &Response{
				Status:    http.StatusOK,
				Header:    http.Header{"Content-Type": {"image/png"}},
				Body:      []byte("png"),
				Truncated: true,
			},
			wantText: "size limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, failure := Validate(tt.resp)
			if failure == nil {
				t.Fatal("Validate() succeeded, want failure")
			}
			if failure.Kind != core.KindInvalidResponse {
				t.Errorf("Kind = %v, want invalid_response", failure.Kind)
			}
			if !strings.Contains(failure.Message, tt.wantText) {
				t.Errorf("Message = %q, want it to contain %q", failure.Message, tt.wantText)
			}
			if !errors.Is(failure, core.ErrInvalidResponse) {
				t.Error("failure should match core.ErrInvalidResponse")
			}
		})
	}
}
