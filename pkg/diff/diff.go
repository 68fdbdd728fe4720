// Package diff compares response bodies and reduces their differences
// to ordered, opaque string markers. Markers from repeated identical
// requests describe the page's natural noise floor; discovery probes
// subtract that floor so only parameter-induced changes remain.
package diff

import (
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/paramprobe/paramprobe/pkg/strutil"
)

const excerptLen = 48

// BodyHash returns a fast fingerprint of the normalized body. Two
// bodies with the same hash are treated as identical pages.
func BodyHash(body string) string {
	return fmt.Sprintf("%016x", murmur3.Sum64([]byte(normalizeBody(body))))
}

// Markers returns the ordered set of difference markers between a
// baseline body and a probe body. A marker is emitted once per
// normalized line whose occurrence count changed, prefixed with "+"
// (new or more frequent in the probe) or "-" (missing or less
// frequent). Order follows first appearance in the probe, then in the
// baseline for removed lines.
func Markers(baseline, probe string) []string {
	baseCounts := lineCounts(baseline)
	probeCounts := lineCounts(probe)

	var markers []string
	seen := make(map[string]struct{})

	for _, line := range normalizedLines(probe) {
		if probeCounts[line] > baseCounts[line] {
			m := marker("+", line)
			if _, dup := seen[m]; !dup {
				seen[m] = struct{}{}
				markers = append(markers, m)
			}
		}
	}
	for _, line := range normalizedLines(baseline) {
		if baseCounts[line] > probeCounts[line] {
			m := marker("-", line)
			if _, dup := seen[m]; !dup {
				seen[m] = struct{}{}
				markers = append(markers, m)
			}
		}
	}
	return markers
}

// Subtract returns the markers not present in the known set, preserving
// order. Used to strip the learned noise floor from a comparison.
func Subtract(markers, known []string) []string {
	if len(markers) == 0 {
		return nil
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}
	var out []string
	for _, m := range markers {
		if _, ok := knownSet[m]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// Merge appends the markers missing from the known set and returns the
// grown set. Order of already-known markers is preserved.
func Merge(known, markers []string) []string {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}
	for _, m := range markers {
		if _, ok := knownSet[m]; !ok {
			knownSet[m] = struct{}{}
			known = append(known, m)
		}
	}
	return known
}

func marker(sign, line string) string {
	return fmt.Sprintf("%s%016x %s", sign, murmur3.Sum64([]byte(line)), strutil.Truncate(line, excerptLen))
}

func lineCounts(body string) map[string]int {
	counts := make(map[string]int)
	for _, line := range normalizedLines(body) {
		counts[line]++
	}
	return counts
}

func normalizedLines(body string) []string {
	raw := strings.Split(body, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		n := normalizeLine(l)
		if n == "" {
			continue
		}
		lines = append(lines, n)
	}
	return lines
}

func normalizeBody(body string) string {
	return strings.Join(normalizedLines(body), "\n")
}

// normalizeLine collapses digit runs to a single 0 so counters,
// timestamps and request IDs inside otherwise-identical lines map to
// the same marker. Without this, every repeated request would produce
// a fresh marker for the same noisy line and the noise floor would
// never converge.
func normalizeLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(line))
	inDigits := false
	for _, r := range line {
		if r >= '0' && r <= '9' {
			if !inDigits {
				b.WriteByte('0')
				inDigits = true
			}
			continue
		}
		inDigits = false
		b.WriteRune(r)
	}
	return b.String()
}
