package runner

import (
	"context"
	"fmt"

	"github.com/paramprobe/paramprobe/pkg/config"
	"github.com/paramprobe/paramprobe/pkg/diff"
	"github.com/paramprobe/paramprobe/pkg/metrics"
	"github.com/paramprobe/paramprobe/pkg/probe"
	"github.com/paramprobe/paramprobe/pkg/ui"
)

// learnStability populates the runner's noise floor and stability
// summary. Only if automatic batch growth is still enabled does it then
// explore a larger batch size.
func (r *Runner) learnStability(ctx context.Context) error {
	diffs, stable, err := EmptyReqs(ctx, r.cfg, r.initial, r.defaults, r.cfg.LearnRequestsCount, r.max)
	if err != nil {
		return err
	}
	r.diffs, r.stable = diffs, stable

	// Reflected-only discovery trusts reflection counts as its primary
	// signal; an unstable count makes the whole mode meaningless.
	if r.cfg.ReflectedOnly && !r.stable.Reflections {
		return ErrUnstableReflections
	}

	if r.spec.Auto() {
		before := r.max
		if err := r.tryToIncreaseMax(ctx); err != nil {
			return err
		}
		if r.max != before {
			r.spec = Fixed(r.max)
			ui.Info(r.cfg.Verbose, "#", fmt.Sprintf("increased batch size to %d parameters per request", r.max))
		}
	}

	return nil
}

// EmptyReqs issues rounds baseline-shaped requests, each carrying max
// random parameters, to learn which response differences are
// pre-existing noise and whether the target behaves consistently.
//
// Body stability means the final round produced no unseen diff markers,
// i.e. the noise floor converged. Reflection stability means every
// injected name reflected exactly its expected number of times on
// every round, the name's baseline occurrences plus the calibrated
// count. A status-code change during learning is fatal: no trustworthy
// baseline exists.
func EmptyReqs(ctx context.Context, cfg *config.Config, baseline *probe.Response, defaults *probe.RequestDefaults, rounds, max int) ([]string, Stable, error) {
	var diffs []string
	stable := Stable{Body: true, Reflections: true}

	for i := 0; i < rounds; i++ {
		resp, err := probe.NewRandom(defaults, max).Send(ctx)
		if err != nil {
			return nil, Stable{}, fmt.Errorf("learning request %d/%d: %w", i+1, rounds, err)
		}
		metrics.RequestsTotal.WithLabelValues(metrics.StageLearn).Inc()

		codeDiffers, newDiffs := resp.Compare(baseline, diffs)
		if codeDiffers {
			return nil, Stable{}, fmt.Errorf("%w: %d became %d", ErrUnstableCode, baseline.Code, resp.Code)
		}

		if i == rounds-1 && len(newDiffs) > 0 {
			stable.Body = false
		}
		diffs = diff.Merge(diffs, newDiffs)

		for name, count := range resp.ReflectedParameters {
			if count != baseline.Count(name)+defaults.AmountOfReflections {
				stable.Reflections = false
				break
			}
		}
	}

	ui.Info(cfg.Verbose, "#", fmt.Sprintf("learned %d known diffs over %d requests (body stable: %v, reflections stable: %v)",
		len(diffs), rounds, stable.Body, stable.Reflections))

	return diffs, stable, nil
}

// tryToIncreaseMax checks whether the target tolerates more injected
// parameters per request without the page changing, using a two-rung
// ladder rather than a full search: one probe at max+64, and if that
// is clean, one at max+128. The batch size grows to the largest rung
// verified safe.
func (r *Runner) tryToIncreaseMax(ctx context.Context) error {
	resp, err := probe.NewRandom(r.defaults, r.max+64).Send(ctx)
	if err != nil {
		return fmt.Errorf("batch sizing probe: %w", err)
	}
	metrics.RequestsTotal.WithLabelValues(metrics.StageSizing).Inc()

	codeDiffers, newDiffs := resp.Compare(r.initial, r.diffs)
	bodySame := len(newDiffs) == 0

	// When the body is unstable anyway, new diffs prove nothing; only
	// a code change blocks escalation.
	if codeDiffers || (r.stable.Body && !bodySame) {
		return nil
	}

	resp, err = probe.NewRandom(r.defaults, r.max+128).Send(ctx)
	if err != nil {
		return fmt.Errorf("batch sizing probe: %w", err)
	}
	metrics.RequestsTotal.WithLabelValues(metrics.StageSizing).Inc()

	codeDiffers, newDiffs = resp.Compare(r.initial, r.diffs)
	bodySame = len(newDiffs) == 0

	if !codeDiffers && (!r.stable.Body || bodySame) {
		r.max += 128
	} else {
		r.max += 64
	}

	return nil
}
