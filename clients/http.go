package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront-service/common/logger"
)

// maxErrorBody bounds how much of an upstream error body is kept in errors.
const maxErrorBody = 512

// maxResponseBody bounds how much of an upstream response is read.
const maxResponseBody = 1 << 20

// UpstreamError is a transport failure or an unexpected upstream status.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrNotFound is returned when the upstream reports 404 for a resource.
var ErrNotFound = errors.New("not found")

// baseClient issues requests against one upstream base URL.
type baseClient struct {
	service string
	baseURL string
	client  *http.Client
}

func newBaseClient(service, baseURL string, timeout time.Duration) baseClient {
	return baseClient{
		service: service,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (b baseClient) do(ctx context.Context, method, path string, query url.Values, headers http.Header, body io.Reader) (*http.Response, error) {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &UpstreamError{Service: b.service, Err: err}
	}
	for k, v := range headers {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	if rid := logger.RequestID(ctx); rid != "unknown" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Service: b.service, Err: err}
	}
	return resp, nil
}

// getJSON performs a GET and decodes a 2xx JSON body into out.
func (b baseClient) getJSON(ctx context.Context, path string, query url.Values, headers http.Header, out any) error {
	resp, err := b.do(ctx, http.MethodGet, path, query, headers, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return b.statusError(resp)
	}
	// An empty body decodes as null and leaves out untouched.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &UpstreamError{Service: b.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (b baseClient) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		Service:    b.service,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("body=%s", bytes.TrimSpace(body)),
	}
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
