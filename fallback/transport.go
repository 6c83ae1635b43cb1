package fallback

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/petal-labs/qrfetch/strategy"
)

// transport executes strategy requests against the service.
type transport struct {
	client  *http.Client
	baseURL string
	headers http.Header
	maxBody int64
}

// do performs one HTTP exchange. Any response that arrived is returned as a
// Response whatever its status; only failures to get one are errors, and
// those are always *TransportError.
func (t *transport) do(ctx context.Context, req strategy.Request) (*Response, error) {
	u, err := req.URL(t.baseURL)
	if err != nil {
		return nil, &TransportError{Origin: OriginClient, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &TransportError{Origin: OriginClient, Err: errors.New("base url must be absolute http(s): " + t.baseURL)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Origin: OriginClient, Err: err}
	}
	// Keep the exact query the strategy produced.
	httpReq.URL.RawQuery = u.RawQuery

	for key, values := range t.headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, FromError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, FromError(err)
	}

	out := &Response{Status: resp.StatusCode, Body: body}
	if int64(len(body)) > t.maxBody {
		out.Body = body[:t.maxBody]
		out.Truncated = true
	}
	if req.ObserveResponse {
		out.Header = resp.Header.Clone()
	} else if ct := resp.Header.Get("Content-Type"); ct != "" {
		// Body-only responses still expose the blob's media type.
		out.Header = http.Header{"Content-Type": {ct}}
	}
	return out, nil
}
