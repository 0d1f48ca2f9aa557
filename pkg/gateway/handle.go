package gateway

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Handle is one HTTP exchange obtained from Open. It belongs to the caller
// until Release.
type Handle struct {
	resp     *http.Response
	once     sync.Once
	released atomic.Bool
}

// NewHandle wraps an already received response, for gateways that obtain
// responses some other way.
func NewHandle(resp *http.Response) *Handle {
	return &Handle{resp: resp}
}

func (h *Handle) StatusCode() int {
	if h == nil || h.resp == nil {
		return 0
	}

	return h.resp.StatusCode
}

func (h *Handle) Status() string {
	if h == nil || h.resp == nil {
		return ""
	}

	return h.resp.Status
}

func (h *Handle) Released() bool {
	return h.released.Load()
}

func (h *Handle) close() {
	h.once.Do(func() {
		h.released.Store(true)
		if h.resp != nil && h.resp.Body != nil {
			_ = h.resp.Body.Close()
		}
	})
}

func (h *Handle) method() string {
	if h.resp.Request == nil {
		return ""
	}

	return h.resp.Request.Method
}

func (h *Handle) host() string {
	if h.resp.Request == nil || h.resp.Request.URL == nil {
		return ""
	}

	return h.resp.Request.URL.Host
}
