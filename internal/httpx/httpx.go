package httpx

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// BrowserUserAgent is sent to vendor pages that reject non-browser clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client is a small wrapper around http.Client with sane defaults.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

// Option tweaks the transport built by New.
type Option func(*http.Transport)

// WithInsecureTLS disables certificate verification. Some vendor sites serve
// incomplete chains that CI runners cannot verify.
func WithInsecureTLS(skip bool) Option {
	return func(t *http.Transport) {
		if !skip {
			return
		}
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
}

func New(timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(transport)
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: BrowserUserAgent}
}

// Do fills in the default User-Agent and headers unless the request already
// carries them, then sends the request bound to ctx.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.HTTP.Do(req.WithContext(ctx))
}

// Doer adapts c to the single-method Do(*http.Request) shape that API clients
// accept, keeping the default headers.
func (c *Client) Doer() DoerFunc {
	return func(req *http.Request) (*http.Response, error) {
		return c.Do(req.Context(), req)
	}
}

// DoerFunc is a function that satisfies Do(*http.Request).
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }
