package strutil

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "long URL truncated",
			input:  "https://example.com/" + strings.Repeat("a", 480),
			maxLen: 80,
			want:   "https://example.com/" + strings.Repeat("a", 57) + "...",
		},
		{
			name:   "short parameter unchanged",
			input:  "debug=true",
			maxLen: 80,
			want:   "debug=true",
		},
		{
			name:   "exact boundary unchanged",
			input:  "exactly10!",
			maxLen: 10,
			want:   "exactly10!",
		},
		{
			name:   "one over boundary",
			input:  "exactly11!x",
			maxLen: 10,
			want:   "exactly...",
		},
		{
			name:   "zero max",
			input:  "anything",
			maxLen: 0,
			want:   "",
		},
		{
			name:   "tiny max keeps prefix",
			input:  "abcdef",
			maxLen: 2,
			want:   "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestRandomLine(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		line := RandomLine(10)
		if len(line) != 10 {
			t.Fatalf("RandomLine(10) returned %d chars: %q", len(line), line)
		}
		if line[0] >= '0' && line[0] <= '9' {
			t.Errorf("RandomLine starts with a digit: %q", line)
		}
		for _, c := range line {
			if !strings.ContainsRune(markerCharset, c) {
				t.Errorf("unexpected character %q in %q", c, line)
			}
		}
		if seen[line] {
			t.Errorf("duplicate random line %q after %d draws", line, i)
		}
		seen[line] = true
	}

	if RandomLine(0) != "" {
		t.Error("RandomLine(0) should be empty")
	}
	if RandomLine(-3) != "" {
		t.Error("RandomLine(-3) should be empty")
	}
}

func TestCanary(t *testing.T) {
	a, b := Canary(), Canary()
	if a == b {
		t.Fatalf("canaries collided: %q", a)
	}
	if !strings.HasPrefix(a, "pprb") {
		t.Errorf("canary missing prefix: %q", a)
	}
	if len(a) != 4+12 {
		t.Errorf("canary length = %d, want 16", len(a))
	}
}
