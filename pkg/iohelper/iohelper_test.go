package iohelper

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestReadBodyLimits(t *testing.T) {
	big := strings.Repeat("x", 1024)

	body, err := ReadBody(strings.NewReader(big), 100)
	if err != nil {
		t.Fatalf("ReadBody: %v", err)
	}
	if len(body) != 100 {
		t.Errorf("expected 100 bytes, got %d", len(body))
	}

	body, err = ReadBody(strings.NewReader("short"), 100)
	if err != nil {
		t.Fatalf("ReadBody: %v", err)
	}
	if string(body) != "short" {
		t.Errorf("expected %q, got %q", "short", body)
	}
}

func TestReadBodyNilReader(t *testing.T) {
	body, err := ReadBody(nil, 100)
	if err != nil {
		t.Fatalf("ReadBody(nil): %v", err)
	}
	if len(body) != 0 {
		t.Errorf("expected empty body, got %d bytes", len(body))
	}
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestDrainAndClose(t *testing.T) {
	rc := &closeRecorder{Reader: bytes.NewBufferString("leftover data")}
	if err := DrainAndClose(rc); err != nil {
		t.Fatalf("DrainAndClose: %v", err)
	}
	if !rc.closed {
		t.Error("reader was not closed")
	}

	// Plain readers and nil must not panic.
	if err := DrainAndClose(strings.NewReader("x")); err != nil {
		t.Errorf("DrainAndClose(reader): %v", err)
	}
	if err := DrainAndClose(nil); err != nil {
		t.Errorf("DrainAndClose(nil): %v", err)
	}
}
