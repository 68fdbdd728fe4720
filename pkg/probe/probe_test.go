package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testDefaults(t *testing.T, target string, place Place) *RequestDefaults {
	t.Helper()
	return &RequestDefaults{
		Method:  "GET",
		URL:     target,
		Place:   place,
		Headers: http.Header{},
		Client:  http.DefaultClient,
	}
}

func TestSendQueryPlace(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	d := testDefaults(t, srv.URL+"/search?fixed=1", PlaceQuery)
	resp, err := New(d, []Param{{Name: "alpha", Value: "one"}}).Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if resp.Code != http.StatusOK {
		t.Errorf("code = %d", resp.Code)
	}
	if gotQuery != "alpha=one&fixed=1" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestSendBodyPlace(t *testing.T) {
	var gotBody, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotCT = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	d := testDefaults(t, srv.URL, PlaceBody)
	d.Method = "POST"
	_, err := New(d, []Param{{Name: "debug", Value: "true"}}).Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotBody != "debug=true" {
		t.Errorf("body = %q", gotBody)
	}
	if gotCT != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %q", gotCT)
	}
}

func TestSendHeadersPlace(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Probe")
	}))
	defer srv.Close()

	d := testDefaults(t, srv.URL, PlaceHeaders)
	_, err := New(d, []Param{{Name: "X-Probe", Value: "yes"}}).Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotHeader != "yes" {
		t.Errorf("header = %q", gotHeader)
	}
}

func TestSendIncludesTemplateParameters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
	}))
	defer srv.Close()

	d := testDefaults(t, srv.URL, PlaceQuery)
	d.Parameters = []Param{{Name: "tmpl", Value: "v"}}
	_, err := New(d, []Param{{Name: "extra", Value: "w"}}).Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotQuery != "extra=w&tmpl=v" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestSendCountsReflections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("echoed")
		_ = name
		fmt.Fprintf(w, "you sent echoed and echoed again; silent stays out")
	}))
	defer srv.Close()

	d := testDefaults(t, srv.URL, PlaceQuery)
	resp, err := New(d, []Param{
		{Name: "echoed", Value: "x"},
		{Name: "silentzz", Value: "y"},
	}).Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if resp.ReflectedParameters["echoed"] != 2 {
		t.Errorf("echoed reflections = %d, want 2", resp.ReflectedParameters["echoed"])
	}
	if resp.ReflectedParameters["silentzz"] != 0 {
		t.Errorf("silentzz reflections = %d, want 0", resp.ReflectedParameters["silentzz"])
	}
}

func TestNewRandom(t *testing.T) {
	d := testDefaults(t, "http://unused.test", PlaceQuery)
	r := NewRandom(d, 5)
	params := r.Params()
	if len(params) != 5 {
		t.Fatalf("expected 5 params, got %d", len(params))
	}
	seen := make(map[string]bool)
	for _, p := range params {
		if len(p.Name) != 8 || len(p.Value) != 6 {
			t.Errorf("unexpected sizes for %v", p)
		}
		if seen[p.Name] {
			t.Errorf("duplicate random name %q", p.Name)
		}
		seen[p.Name] = true
	}
}

func TestNamedParams(t *testing.T) {
	params := NamedParams([]string{"plain", "debug=true", "pair=a=b"})
	if params[0].Name != "plain" || params[0].Value == "" {
		t.Errorf("bare name should get a random value: %v", params[0])
	}
	if params[1].Name != "debug" || params[1].Value != "true" {
		t.Errorf("key=value split wrong: %v", params[1])
	}
	if params[2].Name != "pair" || params[2].Value != "a=b" {
		t.Errorf("only the first = should split: %v", params[2])
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := testDefaults(t, "http://x.test", PlaceQuery)
	d.Headers.Set("X-Token", "abc")
	d.Parameters = []Param{{Name: "a", Value: "1"}}

	c := d.Clone()
	c.Headers.Set("X-Token", "changed")
	c.Parameters[0].Value = "2"

	if d.Headers.Get("X-Token") != "abc" {
		t.Error("clone shares headers with the original")
	}
	if d.Parameters[0].Value != "1" {
		t.Error("clone shares parameters with the original")
	}
}

func TestCompareMasksOwnReflections(t *testing.T) {
	baseline := &Response{Code: 200, Text: "static line\nsearch results for:"}

	d := testDefaults(t, "http://x.test", PlaceQuery)
	req := New(d, []Param{{Name: "markerzz", Value: "valuezz"}})
	resp := &Response{
		Code:    200,
		Text:    "static line\nsearch results for: markerzz valuezz",
		request: req,
	}

	codeDiffers, newDiffs := resp.Compare(baseline, nil)
	if codeDiffers {
		t.Error("codes are equal")
	}
	// After masking, the only change is trailing whitespace on an
	// existing line, which normalizes away.
	for _, m := range newDiffs {
		if len(m) > 0 && (m[0] == '+' || m[0] == '-') {
			if containsAny(m, "markerzz", "valuezz") {
				t.Errorf("own reflection leaked into diff: %q", m)
			}
		}
	}
}

func TestCompareMasksNameAlreadyInBaseline(t *testing.T) {
	// A static page that happens to contain the injected name. Masking
	// must apply to both bodies, so the identical pages compare equal
	// instead of producing one-sided diff markers.
	page := "<p>enable debug logging in settings</p>\nfooter"
	baseline := &Response{Code: 200, Text: page}

	d := testDefaults(t, "http://x.test", PlaceQuery)
	req := New(d, []Param{{Name: "debug", Value: "valzzz"}})
	resp := &Response{Code: 200, Text: page, request: req}

	codeDiffers, newDiffs := resp.Compare(baseline, nil)
	if codeDiffers {
		t.Error("codes are equal")
	}
	if len(newDiffs) != 0 {
		t.Errorf("identical pages produced diffs: %v", newDiffs)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(sub) > 0 && len(s) >= len(sub) && stringsContains(s, sub) {
			return true
		}
	}
	return false
}

func stringsContains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestCompareDetectsCodeAndBodyChange(t *testing.T) {
	baseline := &Response{Code: 200, Text: "alpha\nbeta"}
	probe := &Response{Code: 500, Text: "alpha\ngamma"}

	codeDiffers, newDiffs := probe.Compare(baseline, nil)
	if !codeDiffers {
		t.Error("expected code difference")
	}
	if len(newDiffs) == 0 {
		t.Error("expected body diff markers")
	}

	// Known diffs subtract away.
	_, again := probe.Compare(baseline, newDiffs)
	if len(again) != 0 {
		t.Errorf("known diffs not subtracted: %v", again)
	}
}

func TestDetach(t *testing.T) {
	d := testDefaults(t, "http://x.test", PlaceQuery)
	req := New(d, nil)
	resp := &Response{
		Time:                1234,
		Code:                204,
		Headers:             http.Header{"X-A": []string{"1"}},
		Text:                "body",
		ReflectedParameters: map[string]int{"a": 2},
		AdditionalParameter: "hint",
		request:             req,
	}

	detached := resp.Detach()
	if detached.request != nil {
		t.Error("detached response still links to its request")
	}
	if detached.Time != resp.Time || detached.Code != resp.Code ||
		detached.Text != resp.Text || detached.AdditionalParameter != resp.AdditionalParameter {
		t.Error("detached copy altered a field")
	}
	if detached.ReflectedParameters["a"] != 2 {
		t.Error("reflected parameters not preserved")
	}
}

func TestCount(t *testing.T) {
	resp := &Response{Text: "abc abc ab"}
	if got := resp.Count("abc"); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
	if got := resp.Count(""); got != 0 {
		t.Errorf("Count of empty marker = %d, want 0", got)
	}
}
