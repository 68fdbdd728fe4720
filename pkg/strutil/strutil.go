// Package strutil provides shared string utilities for the paramprobe codebase.
package strutil

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Truncate returns s cut to maxLen runes. If truncated, a "..." suffix
// is appended (included in maxLen). Returns s unchanged if
// utf8.RuneCountInString(s) <= maxLen.
// Safe for maxLen <= 0 (returns empty string).
// This function is rune-aware and never produces invalid UTF-8.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runeCount := utf8.RuneCountInString(s)
	if runeCount <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

const markerCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomLine returns a random lowercase alphanumeric string of the given
// length. Probe markers must be unlikely to collide with real page
// content, so the first character is forced to a letter to survive
// numeric coercion on the server side.
func RandomLine(length int) string {
	if length <= 0 {
		return ""
	}
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(markerCharset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			// crypto/rand should never fail; fall back to a fixed char
			result[i] = markerCharset[0]
			continue
		}
		result[i] = markerCharset[n.Int64()]
	}
	if result[0] >= '0' && result[0] <= '9' {
		result[0] = markerCharset[int(result[0]-'0')%26]
	}
	return string(result)
}

// Canary returns a globally unique marker suitable for reflection
// testing across concurrent runs.
func Canary() string {
	return "pprb" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
