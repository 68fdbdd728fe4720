// Package httpclient provides the shared probing transport: a pooled
// HTTP client factory with proxy support, request pacing, and bounded
// retry. Probe batches reuse connections aggressively, so the pool is
// tuned for many sequential requests against a single host.
//
// Retry and timeout policy live here, not in the discovery engine: a
// probe send either yields a response or a transport error, and the
// engine treats any transport error as fatal for the run.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "paramprobe/1.2"

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: 15s)
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification
	// (default: true; probing targets often carry staging certs)
	InsecureSkipVerify bool

	// Proxy is the proxy URL: http://, https://, socks5:// or socks5h:// (optional)
	Proxy string

	// UserAgent overrides the default User-Agent header
	UserAgent string

	// RateLimit caps outgoing requests per second (0 = unlimited)
	RateLimit int

	// RetryCount is the number of retries on transport errors and
	// 429/503 responses (default: 0, no retry)
	RetryCount int

	// RetryDelay is the pause between retries (default: 500ms when retrying)
	RetryDelay time.Duration

	// FollowRedirects follows redirects when true. Probing compares
	// raw responses, so the default is to return the redirect itself.
	FollowRedirects bool

	// Connection pool tuning
	MaxIdleConns        int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
}

// DefaultConfig returns defaults tuned for sequential probing of one host.
func DefaultConfig() Config {
	return Config{
		Timeout:             15 * time.Second,
		InsecureSkipVerify:  true,
		MaxIdleConns:        50,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns a shared, pre-configured HTTP client.
// Safe for concurrent use; all runners without special transport
// needs should prefer it for connection reuse.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates an HTTP client with the given configuration.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 50
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = 10 * time.Second
	}
	if cfg.RetryCount > 0 && cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,

		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,

		DialContext: dialer.DialContext,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.Proxy != "" {
		if pc, err := ParseProxyURL(cfg.Proxy); err == nil && pc != nil {
			if pc.IsSOCKS {
				if d, derr := createSOCKSDialer(pc, cfg.DialTimeout); derr == nil {
					transport.DialContext = d.DialContext
				}
			} else {
				transport.Proxy = http.ProxyURL(pc.URL)
			}
		}
		// Malformed proxy URLs are ignored; Validate() in the config
		// layer rejects them before a client is ever built.
	}

	var rt http.RoundTripper = transport
	if needsMiddleware(cfg) {
		ua := cfg.UserAgent
		if ua == "" {
			ua = defaultUserAgent
		}
		var limiter *rate.Limiter
		if cfg.RateLimit > 0 {
			limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
		}
		rt = &middlewareTransport{
			base:       transport,
			userAgent:  ua,
			limiter:    limiter,
			retryCount: cfg.RetryCount,
			retryDelay: cfg.RetryDelay,
		}
	}

	checkRedirect := func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if cfg.FollowRedirects {
		checkRedirect = nil
	}

	return &http.Client{
		Transport:     rt,
		Timeout:       cfg.Timeout,
		CheckRedirect: checkRedirect,
	}
}

// WithTimeout returns DefaultConfig with the specified timeout.
func WithTimeout(timeout time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Timeout = timeout
	return cfg
}

// WithProxy returns DefaultConfig with the specified proxy.
func WithProxy(proxyURL string) Config {
	cfg := DefaultConfig()
	cfg.Proxy = proxyURL
	return cfg
}

// needsMiddleware reports whether the config requires the middleware transport.
func needsMiddleware(cfg Config) bool {
	return cfg.UserAgent != "" || cfg.RetryCount > 0 || cfg.RateLimit > 0
}
