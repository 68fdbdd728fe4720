package httpclient

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/paramprobe/paramprobe/pkg/iohelper"
)

// middlewareTransport wraps a base RoundTripper to add request-level
// middleware: User-Agent, request pacing, and retry.
//
// Pacing happens before the first attempt and before every retry, so a
// configured rate limit bounds the true wire rate, not just the
// logical request rate.
type middlewareTransport struct {
	base       http.RoundTripper
	userAgent  string
	limiter    *rate.Limiter
	retryCount int
	retryDelay time.Duration
}

// retryableStatusCodes are HTTP status codes that trigger automatic retry.
// 429 = Too Many Requests, 503 = Service Unavailable.
var retryableStatusCodes = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusServiceUnavailable: true,
}

// RoundTrip implements http.RoundTripper with middleware.
func (m *middlewareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid mutating the caller's request.
	r := req.Clone(req.Context())

	if r.Header.Get("User-Agent") == "" && m.userAgent != "" {
		r.Header.Set("User-Agent", m.userAgent)
	}

	attempts := m.retryCount + 1
	if attempts < 1 {
		attempts = 1
	}

	var resp *http.Response
	var err error

	for i := 0; i < attempts; i++ {
		if m.limiter != nil {
			if werr := m.limiter.Wait(r.Context()); werr != nil {
				return nil, werr
			}
		}

		if i > 0 {
			if m.retryDelay > 0 {
				time.Sleep(m.retryDelay)
			}
			// Reset body for retry if possible.
			if r.GetBody != nil {
				r.Body, _ = r.GetBody()
			}
		}

		resp, err = m.base.RoundTrip(r)
		if err != nil {
			continue // transport error, retry
		}

		if retryableStatusCodes[resp.StatusCode] && i < attempts-1 {
			// Drain and close the body before retry.
			iohelper.DrainAndClose(resp.Body)
			continue
		}

		return resp, nil
	}

	return resp, err
}
