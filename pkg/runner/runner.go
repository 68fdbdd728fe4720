// Package runner implements the discovery orchestration engine: it
// calibrates a baseline against one target, learns which response
// differences are noise, sizes probe batches, and drives candidate
// parameters through discovery, the custom-parameter sweep, and
// post-processing (dedup, verification, replay).
//
// A Runner is built once per target, consumed by its Run, and never
// reused. Every probe is awaited before the next decision: each
// stage's request depends on knowledge (diffs, stability, batch size)
// produced by the one before it. Cross-target concurrency belongs to
// pkg/scheduler, which gives each target its own Runner; nothing
// mutable is shared between Runner instances.
package runner

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/paramprobe/paramprobe/pkg/config"
	"github.com/paramprobe/paramprobe/pkg/metrics"
	"github.com/paramprobe/paramprobe/pkg/probe"
	"github.com/paramprobe/paramprobe/pkg/strutil"
	"github.com/paramprobe/paramprobe/pkg/ui"
)

// Runner drives the discovery pipeline for a single target.
type Runner struct {
	cfg          *config.Config
	defaults     *probe.RequestDefaults
	replayClient *http.Client

	params []string // candidate parameter names
	spec   BatchSpec
	max    int // parameters per probe request, always <= len(params)

	stable  Stable
	initial *probe.Response // detached baseline, never mutated after New
	diffs   []string        // learned noise floor

	// Parameter names revealed by probe responses ("parameter x is
	// required" pages), queued for a follow-up discovery pass. hinted
	// holds every name already probed or queued.
	hints  []string
	hinted map[string]struct{}
}

// New creates a runner and makes the initial calibration request.
//
// The calibration probe carries a single synthetic parameter whose name
// is a long random string and whose value is a globally unique canary,
// so counting the name's occurrences in the body gives an unambiguous
// reflection calibration. Candidate
// names inferred from the baseline body are merged into the caller's
// params slice in place (additive only) unless parameters are injected
// as headers. Any transport error aborts construction.
func New(ctx context.Context, cfg *config.Config, defaults *probe.RequestDefaults, params *[]string, spec BatchSpec, replayClient *http.Client) (*Runner, error) {
	max := spec.Size()
	if max < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, max)
	}

	// The original defaults change right after calibration, so probe
	// with a throwaway clone.
	// The value is a globally unique canary so a cached page can never
	// poison the calibration.
	temp := defaults.Clone()
	marker := probe.Param{Name: strutil.RandomLine(10), Value: strutil.Canary()}
	temp.Parameters = []probe.Param{marker}

	initial, err := probe.New(temp, nil).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("baseline probe: %w", err)
	}
	metrics.RequestsTotal.WithLabelValues(metrics.StageBaseline).Inc()

	if defaults.Place != probe.PlaceHeaders {
		for _, name := range initial.PossibleParameters() {
			if !containsString(*params, name) {
				*params = append(*params, name)
			}
		}
		if name := initial.AdditionalParameter; name != "" && !containsString(*params, name) {
			*params = append(*params, name)
		}
	}

	// A candidate pool smaller than the batch size caps the batch size
	// and pins the spec: there is nothing for the sizer to grow into.
	if len(*params) < max {
		max = len(*params)
		spec = Fixed(max)
		if max == 0 {
			return nil, ErrNoParameters
		}
	}

	defaults.AmountOfReflections = initial.Count(marker.Name)

	if cfg.Verbose > 0 {
		ui.WriteBannerResponse(initial.Code, len(initial.Text), defaults.AmountOfReflections, len(*params))
	}

	candidates := make([]string, len(*params))
	copy(candidates, *params)

	hinted := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		hinted[name] = struct{}{}
	}

	return &Runner{
		cfg:          cfg,
		defaults:     defaults.Clone(),
		replayClient: replayClient,
		params:       candidates,
		spec:         spec,
		max:          max,
		initial:      initial.Detach(),
		hinted:       hinted,
	}, nil
}

// Max returns the current probe batch size.
func (r *Runner) Max() int { return r.max }

// Spec returns the current batch spec.
func (r *Runner) Spec() BatchSpec { return r.spec }

// Stable returns what the stability learner concluded. Meaningful only
// after Run (or learnStability) has executed.
func (r *Runner) Stable() Stable { return r.stable }

// Baseline returns the detached baseline response.
func (r *Runner) Baseline() *probe.Response { return r.initial }

// Run executes the pipeline and returns the post-processed findings.
// Fatal and transport errors abort the run; verification and replay
// failures degrade to warnings.
func (r *Runner) Run(ctx context.Context) (Parameters, error) {
	if err := r.learnStability(ctx); err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	_, found, err := r.CheckParameters(ctx, r.params)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	swept, err := r.checkNonRandomParameters(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	found = append(found, swept...)

	// Responses can name parameters the server expected; probe those
	// too. Each name is queued at most once, so this terminates.
	for len(r.hints) > 0 {
		queue := r.hints
		r.hints = nil
		ui.Info(r.cfg.Verbose, "#", fmt.Sprintf("probing %d parameters named by the page", len(queue)))
		_, extra, err := r.CheckParameters(ctx, queue)
		if err != nil {
			metrics.RunsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		for _, f := range extra {
			if !found.ContainsName(f.Name) {
				found = append(found, f)
			}
		}
	}

	found = dedupKeyed(found)

	if r.cfg.Verify {
		if verified, verr := Verify(ctx, r.initial, r.defaults, found, r.diffs, r.stable); verr != nil {
			ui.Warn("~", "was unable to verify found parameters")
		} else {
			found = verified
		}
	}

	if r.cfg.ReplayProxy != "" && r.replayClient != nil {
		if rerr := Replay(ctx, r.cfg, r.defaults, r.replayClient, found); rerr != nil {
			ui.Warn("~", "was unable to resend found parameters via the replay proxy")
		}
	}

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	return found, nil
}

// dedupKeyed drops any key=value finding whose bare key is already a
// finding: once "admin" itself is confirmed hidden, "admin=true" is
// redundant.
func dedupKeyed(found Parameters) Parameters {
	out := make(Parameters, 0, len(found))
	for _, f := range found {
		if strings.Contains(f.Name, "=") && found.ContainsName(f.Key()) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
