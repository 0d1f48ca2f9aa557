// Package gateway owns the lifecycle of single outbound HTTP exchanges against
// the exchange-rate provider: URL composition, opening the connection, reading
// the body and releasing the connection.
//
// A Gateway keeps no per-call state. Every Open returns its own Handle which the
// caller threads through ReadBody and Release, so one Gateway can be shared by
// any number of goroutines.
package gateway

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type Gateway struct {
	client *http.Client
}

type Option func(g *Gateway)

// WithHTTPClient replaces the underlying client. A nil client is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithTimeout bounds every exchange made through the gateway.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		c := *g.client
		c.Timeout = timeout
		g.client = &c
	}
}

func New(opts ...Option) *Gateway {
	g := &Gateway{client: &http.Client{}}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

var (
	sharedOnce sync.Once
	shared     *Gateway
)

// Shared returns the process-wide gateway, creating it on first use.
func Shared() *Gateway {
	sharedOnce.Do(func() {
		shared = New()
	})

	return shared
}

// BuildRequestURL joins baseEndpoint, accessKey and pathSuffix with "/".
func (g *Gateway) BuildRequestURL(baseEndpoint, accessKey, pathSuffix string) (*url.URL, error) {
	raw := fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(baseEndpoint, "/"),
		strings.Trim(accessKey, "/"),
		strings.TrimLeft(pathSuffix, "/"),
	)

	// The key stays out of error text.
	mask := func(s string) string { return s }
	if key := strings.Trim(accessKey, "/"); key != "" {
		mask = func(s string) string { return strings.ReplaceAll(s, key, "***") }
	}
	masked := mask(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &URLError{Raw: masked, Err: errors.New(mask(err.Error()))}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &URLError{Raw: masked, Err: ErrUnsupportedScheme}
	}

	if u.Host == "" {
		return nil, &URLError{Raw: masked, Err: ErrMissingHost}
	}

	return u, nil
}

// Open performs the request and returns a handle to the response. The handle
// must be released by the caller once Open succeeds.
func (g *Gateway) Open(ctx context.Context, u *url.URL, method string) (*Handle, error) {
	if method == "" {
		method = http.MethodGet
	}

	if u == nil {
		return nil, &NetworkError{Op: "open", Method: method, Err: ErrNilURL}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, &NetworkError{Op: "open", Method: method, Host: u.Host, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// *url.Error repeats the full URL, access key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &NetworkError{Op: "open", Method: method, Host: u.Host, Err: err}
	}

	return NewHandle(resp), nil
}

// ReadBody returns the complete response body. Every byte is kept.
func (g *Gateway) ReadBody(h *Handle) (string, error) {
	if h == nil || h.resp == nil {
		return "", &NetworkError{Op: "read", Err: ErrNilHandle}
	}

	if h.Released() {
		return "", &NetworkError{Op: "read", Method: h.method(), Host: h.host(), Err: ErrHandleReleased}
	}

	body, err := io.ReadAll(h.resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "read", Method: h.method(), Host: h.host(), Err: err}
	}

	return string(body), nil
}

// Release closes the connection behind h. Calling it more than once, or with a
// nil handle, is a no-op.
func (g *Gateway) Release(h *Handle) {
	if h == nil {
		return
	}

	h.close()
}
