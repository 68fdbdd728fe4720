package probe

import (
	"net/http"
	"strings"
	"time"

	"github.com/paramprobe/paramprobe/pkg/diff"
)

// Response is the captured result of one probe. It keeps a non-owning
// link to the request that produced it, valid only while that request
// is in scope; the long-lived baseline copy is produced by Detach and
// carries no such link.
type Response struct {
	Time    time.Duration
	Code    int
	Headers http.Header
	Text    string

	// ReflectedParameters maps each injected parameter name to its
	// occurrence count in the body.
	ReflectedParameters map[string]int

	// AdditionalParameter is a candidate name the response itself
	// revealed (error pages naming an expected parameter), or empty.
	AdditionalParameter string

	request *Request
}

// Count returns the number of occurrences of marker in the body.
func (r *Response) Count(marker string) int {
	if marker == "" {
		return 0
	}
	return strings.Count(r.Text, marker)
}

// Detach returns a durable copy with the transient request link nulled
// out. All other fields are preserved verbatim. The detached value is
// safe to keep for the lifetime of a run.
func (r *Response) Detach() *Response {
	return &Response{
		Time:                r.Time,
		Code:                r.Code,
		Headers:             r.Headers,
		Text:                r.Text,
		ReflectedParameters: r.ReflectedParameters,
		AdditionalParameter: r.AdditionalParameter,
		request:             nil,
	}
}

// Compare measures this response against a baseline. It reports whether
// the status code differs and which body diff markers are not explained
// by the known noise set. The response's own injected parameters are
// masked out of both bodies first: a reflected random marker never
// counts as a page change, and a name the page already contained
// (a dictionary word like "debug") does not manufacture one either.
func (r *Response) Compare(baseline *Response, knownDiffs []string) (codeDiffers bool, newDiffs []string) {
	codeDiffers = r.Code != baseline.Code

	text, baseText := r.Text, baseline.Text
	if r.request != nil {
		params := r.request.Params()
		text = maskParams(text, params)
		baseText = maskParams(baseText, params)
	}

	// Identical normalized bodies cannot produce markers.
	if diff.BodyHash(text) == diff.BodyHash(baseText) {
		return codeDiffers, nil
	}

	markers := diff.Markers(baseText, text)
	newDiffs = diff.Subtract(markers, knownDiffs)
	return codeDiffers, newDiffs
}

// maskParams strips every injected name and value from the body so the
// probe's own reflections don't register as differences.
func maskParams(text string, params []Param) string {
	if len(params) == 0 {
		return text
	}
	pairs := make([]string, 0, len(params)*4)
	for _, p := range params {
		if len(p.Name) >= 3 {
			pairs = append(pairs, p.Name, "")
		}
		if len(p.Value) >= 3 {
			pairs = append(pairs, p.Value, "")
		}
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
