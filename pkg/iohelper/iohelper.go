// Package iohelper provides helpers for safely reading HTTP response
// bodies with size limits. Probe comparisons operate on full body text,
// so the limits here bound memory per in-flight probe.
package iohelper

import "io"

// Body size limits for different probe kinds.
const (
	// SmallMaxBodySize is for replay confirmations where only the
	// status matters (8KB).
	SmallMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize is for baseline and discovery probes whose
	// bodies feed the diff engine (4MB).
	DefaultMaxBodySize int64 = 4 * 1024 * 1024
)

// ReadBody reads from an io.Reader with a size limit.
// If r is nil, returns an empty slice and no error.
// This prevents memory exhaustion from maliciously large responses.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault reads from an io.Reader with the default 4MB limit.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, DefaultMaxBodySize)
}

// DrainAndClose reads any remaining data from r and closes it if it's a
// ReadCloser. This keeps the connection reusable for HTTP keep-alive.
// Always returns nil error to allow use in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}

	// Drain remaining data (limited to 64KB to prevent DoS)
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))

	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
