// Proxy URL parsing and SOCKS dialer creation. The replay stage builds
// a second client through a distinct proxy so confirmed findings can be
// re-sent for independent logging (e.g. through Burp).
//
// Supported proxy schemes:
//   - http://    HTTP CONNECT proxy
//   - https://   HTTPS CONNECT proxy
//   - socks5://  SOCKS5 proxy (local DNS resolution)
//   - socks5h:// SOCKS5 proxy with remote DNS resolution
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

var supportedProxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true, // remote DNS resolution (no DNS leaks)
}

// ProxyConfig holds parsed proxy configuration.
type ProxyConfig struct {
	URL         *url.URL
	Scheme      string
	Host        string
	Port        string
	Username    string
	Password    string
	IsSOCKS     bool
	IsDNSRemote bool // socks5h: resolve DNS on the proxy side
}

// ParseProxyURL validates and parses a proxy URL string.
// Returns nil, nil if proxyURL is empty (no proxy configured).
func ParseProxyURL(proxyURL string) (*ProxyConfig, error) {
	if proxyURL == "" {
		return nil, nil
	}

	// Scheme-less shorthand defaults to an HTTP proxy.
	if !strings.Contains(proxyURL, "://") {
		proxyURL = "http://" + proxyURL
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyConnect, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !supportedProxySchemes[scheme] {
		return nil, fmt.Errorf("%w: unsupported scheme %q (supported: http, https, socks5, socks5h)", ErrProxyConnect, scheme)
	}

	host := parsed.Hostname()
	port := parsed.Port()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrProxyConnect)
	}
	if port == "" {
		switch scheme {
		case "http":
			port = "8080"
		case "https":
			port = "8443"
		default:
			port = "1080"
		}
	}

	pc := &ProxyConfig{
		URL:         parsed,
		Scheme:      scheme,
		Host:        host,
		Port:        port,
		IsSOCKS:     strings.HasPrefix(scheme, "socks"),
		IsDNSRemote: scheme == "socks5h",
	}

	if parsed.User != nil {
		pc.Username = parsed.User.Username()
		pc.Password, _ = parsed.User.Password()
	}

	return pc, nil
}

// Address returns the proxy address in host:port format.
func (p *ProxyConfig) Address() string {
	if p == nil {
		return ""
	}
	return net.JoinHostPort(p.Host, p.Port)
}

// contextDialer is the subset of proxy dialers that support context.
type contextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// timeoutDialer wraps a proxy.Dialer with timeout support, because
// SOCKS dialers don't natively honor timeouts.
type timeoutDialer struct {
	dialer  proxy.Dialer
	timeout time.Duration
}

// DialContext implements contextDialer with timeout support.
func (t *timeoutDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	connCh := make(chan net.Conn, 1)
	errCh := make(chan error, 1)

	go func() {
		var conn net.Conn
		var err error

		if ctxDialer, ok := t.dialer.(proxy.ContextDialer); ok {
			conn, err = ctxDialer.DialContext(ctx, network, address)
		} else {
			conn, err = t.dialer.Dial(network, address)
		}
		if err != nil {
			errCh <- err
			return
		}

		// If the context already expired, close to prevent a leak.
		select {
		case connCh <- conn:
		case <-ctx.Done():
			conn.Close()
		}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: dial timeout: %v", ErrProxyConnect, ctx.Err())
	case conn := <-connCh:
		return conn, nil
	case err := <-errCh:
		return nil, fmt.Errorf("%w: %v", ErrProxyConnect, err)
	}
}

// createSOCKSDialer creates a SOCKS5 dialer from a ProxyConfig.
func createSOCKSDialer(pc *ProxyConfig, timeout time.Duration) (contextDialer, error) {
	if pc == nil || !pc.IsSOCKS {
		return nil, fmt.Errorf("%w: not a SOCKS proxy", ErrProxyConnect)
	}

	var auth *proxy.Auth
	if pc.Username != "" {
		auth = &proxy.Auth{User: pc.Username, Password: pc.Password}
	}

	d, err := proxy.SOCKS5("tcp", pc.Address(), auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyConnect, err)
	}

	return &timeoutDialer{dialer: d, timeout: timeout}, nil
}
