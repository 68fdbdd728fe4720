package runner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paramprobe/paramprobe/pkg/probe"
)

// overflowServer answers with the baseline body until a request carries
// at least overflowAt query parameters, then misbehaves.
func overflowServer(t *testing.T, overflowAt int, changeCode bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Query()) >= overflowAt {
			if changeCode {
				w.WriteHeader(http.StatusRequestURITooLong)
				return
			}
			fmt.Fprint(w, "main page\ntoo many inputs\n")
			return
		}
		fmt.Fprint(w, "main page\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sizingRunner(t *testing.T, target string, max int, stable Stable) *Runner {
	t.Helper()
	return &Runner{
		cfg:      testConfig(),
		defaults: testDefaults(t, target),
		initial:  &probe.Response{Code: 200, Text: "main page\n"},
		stable:   stable,
		spec:     AutoFrom(max),
		max:      max,
	}
}

func TestTryToIncreaseMaxBothRungsClean(t *testing.T) {
	srv := overflowServer(t, 1000, false)

	r := sizingRunner(t, srv.URL, 4, Stable{Body: true, Reflections: true})
	if err := r.tryToIncreaseMax(context.Background()); err != nil {
		t.Fatalf("tryToIncreaseMax: %v", err)
	}
	if r.max != 4+128 {
		t.Errorf("max = %d, want %d", r.max, 4+128)
	}
}

func TestTryToIncreaseMaxFirstRungDirty(t *testing.T) {
	// 4+64 parameters already change the page.
	srv := overflowServer(t, 68, false)

	r := sizingRunner(t, srv.URL, 4, Stable{Body: true, Reflections: true})
	if err := r.tryToIncreaseMax(context.Background()); err != nil {
		t.Fatalf("tryToIncreaseMax: %v", err)
	}
	if r.max != 4 {
		t.Errorf("max = %d, want unchanged 4", r.max)
	}
}

func TestTryToIncreaseMaxSecondRungDirty(t *testing.T) {
	// 4+64 is fine, 4+128 changes the page.
	srv := overflowServer(t, 132, false)

	r := sizingRunner(t, srv.URL, 4, Stable{Body: true, Reflections: true})
	if err := r.tryToIncreaseMax(context.Background()); err != nil {
		t.Fatalf("tryToIncreaseMax: %v", err)
	}
	if r.max != 4+64 {
		t.Errorf("max = %d, want %d", r.max, 4+64)
	}
}

func TestTryToIncreaseMaxIgnoresBodyWhenUnstable(t *testing.T) {
	// Body changes at 68 parameters, but on an unstable page body
	// evidence proves nothing: only a code change may block escalation.
	srv := overflowServer(t, 68, false)

	r := sizingRunner(t, srv.URL, 4, Stable{Body: false, Reflections: true})
	if err := r.tryToIncreaseMax(context.Background()); err != nil {
		t.Fatalf("tryToIncreaseMax: %v", err)
	}
	if r.max != 4+128 {
		t.Errorf("max = %d, want %d", r.max, 4+128)
	}
}

func TestTryToIncreaseMaxCodeChangeAlwaysBlocks(t *testing.T) {
	srv := overflowServer(t, 68, true)

	r := sizingRunner(t, srv.URL, 4, Stable{Body: false, Reflections: true})
	if err := r.tryToIncreaseMax(context.Background()); err != nil {
		t.Fatalf("tryToIncreaseMax: %v", err)
	}
	if r.max != 4 {
		t.Errorf("max = %d, want unchanged 4", r.max)
	}
}
