package strategy

import (
	"net/http"
	"testing"

	"github.com/petal-labs/qrfetch/core"
)

func TestDefaultOrder(t *testing.T) {
	got := Default()
	want := []string{"query-object", "manual-percent-encoded", "params-builder", "headers-with-retry"}

	if len(got) != len(want) {
		t.Fatalf("len(Default()) = %d, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s.ID() != want[i] {
			t.Errorf("Default()[%d].ID() = %q, want %q", i, s.ID(), want[i])
		}
	}
}

func TestDefaultReturnsFreshSlice(t *testing.T) {
	a := Default()
	a[0] = New(HeadersWithRetry)

	if Default()[0].Kind() != QueryObject {
		t.Error("mutating a Default() slice changed later results")
	}
}

func TestBuildURLs(t *testing.T) {
	const base = "http://qr.test"

	tests := []struct {
		name string
		kind Kind
		text string
		want string
	}{
		{"query object space", QueryObject, "Hello World", base + "/api/qrcode?text=Hello+World"},
		{"manual space", ManualPercentEncoded, "Hello World", base + "/api/qrcode?text=Hello%20World"},
		{"builder space", ParamsBuilder, "Hello World", base + "/api/qrcode?text=Hello%20World"},
		{"retry space", HeadersWithRetry, "Hello World", base + "/api/qrcode?text=Hello+World"},

		{"query object url", QueryObject, "https://www.google.com", base + "/api/qrcode?text=https%3A%2F%2Fwww.google.com"},
		{"manual url", ManualPercentEncoded, "https://www.google.com", base + "/api/qrcode?text=https%3A%2F%2Fwww.google.com"},
		{"builder url", ParamsBuilder, "https://www.google.com", base + "/api/qrcode?text=https://www.google.com"},

		{"query object reserved", QueryObject, "a+b&c=d", base + "/api/qrcode?text=a%2Bb%26c%3Dd"},
		{"manual reserved", ManualPercentEncoded, "a+b&c=d", base + "/api/qrcode?text=a%2Bb%26c%3Dd"},
		{"builder reserved", ParamsBuilder, "a+b&c=d", base + "/api/qrcode?text=a%2Bb%26c=d"},

		{"query object empty", QueryObject, "", base + "/api/qrcode?text="},
		{"manual empty", ManualPercentEncoded, "", base + "/api/qrcode?text="},
		{"builder empty", ParamsBuilder, "", base + "/api/qrcode?text="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := New(tt.kind).Build("", core.Payload{Text: tt.text})
			u, err := req.URL(base)
			if err != nil {
				t.Fatalf("URL() error = %v", err)
			}
			if u.String() != tt.want {
				t.Errorf("URL() = %q, want %q", u.String(), tt.want)
			}
		})
	}
}

func TestBuildDescriptorShape(t *testing.T) {
	p := core.Payload{Text: "Hello"}

	for _, s := range Default() {
		t.Run(s.ID(), func(t *testing.T) {
			req := s.Build("", p)

			if req.Method != http.MethodGet {
				t.Errorf("Method = %q, want GET", req.Method)
			}
			if req.ResponseType != "blob" {
				t.Errorf("ResponseType = %q, want blob", req.ResponseType)
			}

			wantRetry := s.Kind() == HeadersWithRetry
			if req.ObserveResponse != wantRetry {
				t.Errorf("ObserveResponse = %v, want %v", req.ObserveResponse, wantRetry)
			}
			if wantRetry {
				if req.Retries != 2 {
					t.Errorf("Retries = %d, want 2", req.Retries)
				}
				if got := req.Header.Get("Accept"); got != "image/*" {
					t.Errorf("Accept = %q, want image/*", got)
				}
			} else if req.Retries != 0 {
				t.Errorf("Retries = %d, want 0", req.Retries)
			}
		})
	}
}

func TestBuildCustomPath(t *testing.T) {
	req := New(ManualPercentEncoded).Build("/v2/qr", core.Payload{Text: "x y"})
	u, err := req.URL("https://qr.test/")
	if err != nil {
		t.Fatal(err)
	}
	if got := u.String(); got != "https://qr.test/v2/qr?text=x%20y" {
		t.Errorf("URL() = %q", got)
	}
}

func TestBuildDoesNotShareHeaders(t *testing.T) {
	s := New(HeadersWithRetry)
	p := core.Payload{Text: "Hello"}

	first := s.Build("", p)
	first.Header.Set("Accept", "text/html")

	second := s.Build("", p)
	if got := second.Header.Get("Accept"); got != "image/*" {
		t.Errorf("Accept after mutation = %q, want image/*", got)
	}
	if p.Text != "Hello" {
		t.Errorf("payload mutated to %q", p.Text)
	}
}

func TestParse(t *testing.T) {
	for _, id := range IDs() {
		s, err := Parse(id)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", id, err)
		}
		if s.ID() != id {
			t.Errorf("Parse(%q).ID() = %q", id, s.ID())
		}
	}

	if s, err := Parse("  Params-Builder "); err != nil || s.Kind() != ParamsBuilder {
		t.Errorf("Parse should trim and ignore case, got %v, %v", s.ID(), err)
	}

	if _, err := Parse("carrier-pigeon"); err == nil {
		t.Error("Parse() should reject unknown identifiers")
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Errorf("ParseList(nil) len = %d, want 4", len(got))
	}

	got, err = ParseList([]string{"params-builder", "query-object"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Kind() != ParamsBuilder || got[1].Kind() != QueryObject {
		t.Errorf("ParseList kept wrong order: %s, %s", got[0].ID(), got[1].ID())
	}

	if _, err := ParseList([]string{"query-object", "query-object"}); err == nil {
		t.Error("ParseList() should reject duplicates")
	}
}
