package runner

import (
	"context"
	"fmt"
	"net/http"

	"github.com/paramprobe/paramprobe/pkg/config"
	"github.com/paramprobe/paramprobe/pkg/iohelper"
	"github.com/paramprobe/paramprobe/pkg/metrics"
	"github.com/paramprobe/paramprobe/pkg/probe"
)

// Verify re-validates findings against the baseline by re-sending each
// one alone and checking that its deviation reproduces. It only ever
// narrows the list: a finding whose evidence does not reproduce is
// dropped, never replaced. A transport error aborts verification; the
// caller keeps the unverified list in that case.
func Verify(ctx context.Context, baseline *probe.Response, defaults *probe.RequestDefaults, found Parameters, diffs []string, stable Stable) (Parameters, error) {
	kept := make(Parameters, 0, len(found))

	for _, fp := range found {
		resp, err := probe.New(defaults, probe.NamedParams([]string{fp.Name})).Send(ctx)
		if err != nil {
			return nil, fmt.Errorf("verifying %q: %w", fp.Name, err)
		}
		metrics.RequestsTotal.WithLabelValues(metrics.StageVerify).Inc()

		codeDiffers, newDiffs := resp.Compare(baseline, diffs)

		// Body diffs only count as evidence when the body is stable;
		// on a noisy page they prove nothing either way.
		bodySignal := stable.Body && len(newDiffs) > 0

		// The expectation is baseline-relative, matching discovery: the
		// name's natural occurrences plus the calibrated reflections.
		reflectionSignal := false
		if stable.Reflections {
			expected := baseline.Count(fp.Key()) + defaults.AmountOfReflections
			reflectionSignal = resp.ReflectedParameters[fp.Key()] != expected
		}

		if codeDiffers || bodySignal || reflectionSignal {
			kept = append(kept, fp)
			metrics.VerifyOutcomes.WithLabelValues("kept").Inc()
		} else {
			metrics.VerifyOutcomes.WithLabelValues("dropped").Inc()
		}
	}

	return kept, nil
}

// Replay resends confirmed findings through a distinct client,
// typically one configured with a different proxy, for independent
// confirmation or logging. The first transport error aborts the
// replay; the caller treats that as a warning, not a run failure.
func Replay(ctx context.Context, cfg *config.Config, defaults *probe.RequestDefaults, replayClient *http.Client, found Parameters) error {
	d := defaults.Clone()
	d.Client = replayClient
	d.MaxBodySize = iohelper.SmallMaxBodySize

	for _, fp := range found {
		if _, err := probe.New(d, probe.NamedParams([]string{fp.Name})).Send(ctx); err != nil {
			return fmt.Errorf("replaying %q: %w", fp.Name, err)
		}
		metrics.RequestsTotal.WithLabelValues(metrics.StageReplay).Inc()
	}
	return nil
}
