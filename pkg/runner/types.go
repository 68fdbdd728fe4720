package runner

import "strings"

// Stable summarizes what the stability learner found out about the
// target's baseline noise.
type Stable struct {
	// Body is true when repeated baseline-shaped requests stop
	// producing unseen diff markers.
	Body bool

	// Reflections is true when every injected parameter reflects
	// exactly the calibrated number of times on every learning round.
	Reflections bool
}

// FoundParameter is a parameter confirmed to alter server behavior.
// Name may be of the "key=value" form when sourced from the
// non-random sweep. Equality and containment checks go by Name.
type FoundParameter struct {
	Name string `json:"name"`

	// Evidence
	Diffs        []string `json:"diffs,omitempty"`   // unexplained diff markers the probe produced
	ReflectCount int      `json:"reflections"`       // observed reflections of the name
	Status       int      `json:"status"`            // status code of the deviating probe
	Reasons      []string `json:"reasons,omitempty"` // human-readable evidence summary
}

// Key returns the part of Name before the first '=', or Name itself.
func (f FoundParameter) Key() string {
	k, _, _ := strings.Cut(f.Name, "=")
	return k
}

// Parameters is a set of findings with name-based containment.
type Parameters []FoundParameter

// ContainsName reports whether any finding has exactly this name.
func (ps Parameters) ContainsName(name string) bool {
	for _, p := range ps {
		if p.Name == name {
			return true
		}
	}
	return false
}

// BatchSpec says how many parameters may be injected per request and
// whether the engine is allowed to grow that number empirically. It
// replaces a sign-encoded integer: Fixed(n) pins the batch size, while
// AutoFrom(n) starts at n and lets the adaptive sizer escalate.
type BatchSpec struct {
	n    int
	auto bool
}

// DefaultAutoStart is the usual starting magnitude for automatic
// batch-size detection.
const DefaultAutoStart = 128

// Fixed returns a spec pinning the batch size to n.
func Fixed(n int) BatchSpec {
	return BatchSpec{n: n}
}

// AutoFrom returns a spec starting at n with automatic growth enabled.
func AutoFrom(n int) BatchSpec {
	return BatchSpec{n: n, auto: true}
}

// Size returns the current batch size.
func (b BatchSpec) Size() int { return b.n }

// Auto reports whether automatic growth is still enabled. Shrinking a
// spec to a candidate count disables growth (the candidate pool is the
// hard ceiling anyway).
func (b BatchSpec) Auto() bool { return b.auto }
