// Package ui renders probe progress and findings to the terminal. The
// discovery engine calls into it fire-and-forget; nothing in the core
// depends on a return value from this package.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Version can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/paramprobe/paramprobe/pkg/ui.Version=1.0.0"
var Version = "1.2.0"

// UserAgent returns the standard User-Agent string for probe requests.
func UserAgent() string {
	return fmt.Sprintf("paramprobe/%s", Version)
}

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses most output).
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

const miniBanner = `
________________________________________________

 paramprobe v%s
________________________________________________`

// PrintBanner prints the application banner to stderr.
func PrintBanner() {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n\n", BannerStyle.Render(fmt.Sprintf(miniBanner, Version)))
}

// Info prints a status line when the verbosity level allows it.
// Prefix conventions follow the engine: "#" for stage transitions,
// "~" for degraded-but-continuing conditions, "+" for findings.
func Info(verbose int, prefix, message string) {
	if IsSilent() || verbose < 1 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", PrefixStyle.Render(prefix), message)
}

// Warn prints a warning regardless of verbosity (unless silent).
func Warn(prefix, message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", WarnStyle.Render(prefix), message)
}

// Found prints a confirmed finding line.
func Found(name string, reasons []string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n",
		FoundStyle.Render("+"), name, MutedStyle.Render(strings.Join(reasons, "; ")))
}

// WriteBannerResponse prints the baseline calibration summary: status
// code, body size, learned reflection count and candidate pool size.
func WriteBannerResponse(code, bodyLen, reflections, candidates int) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, " :: %-18s : %d\n", "Baseline status", code)
	fmt.Fprintf(os.Stderr, " :: %-18s : %d bytes\n", "Baseline size", bodyLen)
	fmt.Fprintf(os.Stderr, " :: %-18s : %d\n", "Reflections", reflections)
	fmt.Fprintf(os.Stderr, " :: %-18s : %d\n", "Candidates", candidates)
}

// IsTerminal reports whether stderr is attached to a terminal. Piped
// output disables styling.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
