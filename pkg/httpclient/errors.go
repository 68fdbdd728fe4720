package httpclient

import "errors"

// Sentinel errors for HTTP client failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrProxyConnect indicates the client failed to connect through
	// the configured proxy (SOCKS5, HTTP).
	ErrProxyConnect = errors.New("httpclient: proxy connection failed")
)
