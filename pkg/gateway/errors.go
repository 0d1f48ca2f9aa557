package gateway

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"net"
)

var (
	ErrUnsupportedScheme = errors.New("url scheme must be http or https")
	ErrMissingHost       = errors.New("url has no host")
	ErrNilURL            = errors.New("nil url")
	ErrNilHandle         = errors.New("nil connection handle")
	ErrHandleReleased    = errors.New("connection handle already released")
)

// URLError reports an endpoint, key and path that do not compose into a valid
// request URL. It points at misconfiguration and is never worth retrying.
type URLError struct {
	Raw string
	Err error
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid request url %q: %v", e.Raw, e.Err)
}

func (e *URLError) Unwrap() error {
	return e.Err
}

// NetworkError is a transport failure: DNS, refused connection, timeout,
// cancellation or a broken body stream.
type NetworkError struct {
	Op     string
	Method string
	Host   string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("network %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("network %s %s %s: %v", e.Op, e.Method, e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline being exceeded.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
