// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the polite HTTP client shared by every source
// adapter: a client timeout, a User-Agent on every request, and a token-bucket
// limiter that spaces consecutive requests. It never retries.
package httputil

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/doi-metadata/pkg/types"
)

// Defaults applied by NewClient when the configuration leaves a field zero.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "doi-metadata/0.1"
	DefaultRateLimit = 5.0
)

// maxBodyBytes caps how much of a response body is decoded.
const maxBodyBytes = 16 << 20

// StatusError reports a response whose status code was not 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// NewClient returns an *http.Client configured from cfg. A negative
// RateLimit disables request spacing.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	rps := cfg.RateLimit
	if rps == 0 {
		rps = DefaultRateLimit
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &politeTransport{
			base:      http.DefaultTransport,
			limiter:   limiter,
			userAgent: ua,
		},
	}
}

// politeTransport waits on the limiter and sets a default User-Agent before
// delegating to base.
type politeTransport struct {
	base      http.RoundTripper
	limiter   *rate.Limiter
	userAgent string
}

func (t *politeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// Get issues a GET request with the given extra headers and returns the
// response body. A non-200 status yields a *StatusError and a nil body.
func Get(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func GetJSON(ctx context.Context, client *http.Client, url string, header http.Header, v any) error {
	body, err := Get(ctx, client, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding JSON from %s: %w", url, err)
	}
	return nil
}

// GetXML fetches url and decodes the XML body into v.
func GetXML(ctx context.Context, client *http.Client, url string, header http.Header, v any) error {
	body, err := Get(ctx, client, url, header)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding XML from %s: %w", url, err)
	}
	return nil
}
