// Package probe builds and sends individual probe requests and captures
// their responses for comparison. A RequestDefaults value is the
// immutable-per-round template; each probing stage clones it and
// overrides only the parameter set.
package probe

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paramprobe/paramprobe/pkg/iohelper"
	"github.com/paramprobe/paramprobe/pkg/strutil"
)

// Place says where injected parameters are carried in a request.
type Place int

const (
	PlaceQuery Place = iota
	PlaceBody
	PlaceHeaders
)

// ParsePlace maps a config string to a Place. Unknown values default
// to the query string.
func ParsePlace(s string) Place {
	switch strings.ToLower(s) {
	case "body":
		return PlaceBody
	case "headers":
		return PlaceHeaders
	default:
		return PlaceQuery
	}
}

func (p Place) String() string {
	switch p {
	case PlaceBody:
		return "body"
	case PlaceHeaders:
		return "headers"
	default:
		return "query"
	}
}

// Param is a single name/value pair to inject.
type Param struct {
	Name  string
	Value string
}

// RequestDefaults describes how to build a probe request against one
// target: method, URL, injection place, standing headers, the template
// parameter set, and the learned reflection calibration.
type RequestDefaults struct {
	Method  string
	URL     string
	Place   Place
	Headers http.Header

	// Parameters is the template set injected into every request built
	// from these defaults, before any per-request parameters.
	Parameters []Param

	// AmountOfReflections is how many times a single injected
	// parameter name is expected to appear in the response body,
	// calibrated once from the baseline probe.
	AmountOfReflections int

	// MaxBodySize bounds how much of the response body is read
	// (0 = iohelper.DefaultMaxBodySize). Replay confirmations only
	// need the status and use a small bound.
	MaxBodySize int64

	// Client performs the actual sends. Shared clients must be safe
	// for concurrent use.
	Client *http.Client
}

// Clone returns a deep copy. Stages mutate only their own clone.
func (d *RequestDefaults) Clone() *RequestDefaults {
	c := *d
	c.Headers = d.Headers.Clone()
	c.Parameters = make([]Param, len(d.Parameters))
	copy(c.Parameters, d.Parameters)
	return &c
}

// Request is an ephemeral probe: a defaults template plus an explicit
// parameter list. Built fresh per network call and discarded after
// comparison.
type Request struct {
	defaults *RequestDefaults
	params   []Param
}

// New builds a request from a template and an explicit parameter list.
func New(defaults *RequestDefaults, params []Param) *Request {
	return &Request{defaults: defaults, params: params}
}

// NewRandom builds a request carrying count freshly generated random
// name/value pairs. Used to measure how the page reacts to parameters
// that cannot possibly exist.
func NewRandom(defaults *RequestDefaults, count int) *Request {
	params := make([]Param, count)
	for i := range params {
		params[i] = Param{Name: strutil.RandomLine(8), Value: strutil.RandomLine(6)}
	}
	return New(defaults, params)
}

// Params returns every parameter the request will inject: the template
// set followed by the explicit list.
func (r *Request) Params() []Param {
	all := make([]Param, 0, len(r.defaults.Parameters)+len(r.params))
	all = append(all, r.defaults.Parameters...)
	all = append(all, r.params...)
	return all
}

// NamedParams builds parameters from "name" or "name=value" strings.
// Bare names get a random marker value so their reflections are
// countable.
func NamedParams(names []string) []Param {
	params := make([]Param, 0, len(names))
	for _, n := range names {
		if k, v, ok := strings.Cut(n, "="); ok {
			params = append(params, Param{Name: k, Value: v})
			continue
		}
		params = append(params, Param{Name: n, Value: strutil.RandomLine(6)})
	}
	return params
}

// Send performs the network call and captures the response. Any
// transport error is returned as-is; retry policy belongs to the
// underlying client.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	httpReq, err := r.build(ctx)
	if err != nil {
		return nil, err
	}

	client := r.defaults.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	maxBody := r.defaults.MaxBodySize
	if maxBody <= 0 {
		maxBody = iohelper.DefaultMaxBodySize
	}
	body, err := iohelper.ReadBody(resp.Body, maxBody)
	iohelper.DrainAndClose(resp.Body)
	if err != nil {
		return nil, err
	}
	text := string(body)

	response := &Response{
		Time:                elapsed,
		Code:                resp.StatusCode,
		Headers:             resp.Header,
		Text:                text,
		ReflectedParameters: countReflections(text, r.Params()),
		request:             r,
	}
	response.AdditionalParameter = detectAdditionalParameter(text, r.Params())
	return response, nil
}

// build assembles the http.Request with parameters injected at the
// configured place.
func (r *Request) build(ctx context.Context) (*http.Request, error) {
	d := r.defaults
	all := r.Params()

	var (
		httpReq *http.Request
		err     error
	)

	switch d.Place {
	case PlaceBody:
		form := url.Values{}
		for _, p := range all {
			form.Add(p.Name, p.Value)
		}
		httpReq, err = http.NewRequestWithContext(ctx, d.Method, d.URL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	case PlaceHeaders:
		httpReq, err = http.NewRequestWithContext(ctx, d.Method, d.URL, nil)
		if err != nil {
			return nil, err
		}
		for _, p := range all {
			httpReq.Header.Set(p.Name, p.Value)
		}

	default: // PlaceQuery
		u, uerr := url.Parse(d.URL)
		if uerr != nil {
			return nil, uerr
		}
		q := u.Query()
		for _, p := range all {
			q.Add(p.Name, p.Value)
		}
		u.RawQuery = q.Encode()
		httpReq, err = http.NewRequestWithContext(ctx, d.Method, u.String(), nil)
		if err != nil {
			return nil, err
		}
	}

	for key, vals := range d.Headers {
		for _, v := range vals {
			httpReq.Header.Add(key, v)
		}
	}
	return httpReq, nil
}

// countReflections counts how many times each injected parameter name
// appears in the body.
func countReflections(text string, params []Param) map[string]int {
	counts := make(map[string]int, len(params))
	for _, p := range params {
		counts[p.Name] = strings.Count(text, p.Name)
	}
	return counts
}
