package runner

import (
	"context"
	"fmt"
	"sort"

	"github.com/paramprobe/paramprobe/pkg/diff"
	"github.com/paramprobe/paramprobe/pkg/metrics"
	"github.com/paramprobe/paramprobe/pkg/probe"
	"github.com/paramprobe/paramprobe/pkg/ui"
)

// CheckParameters probes a list of candidate names ("name" or
// "name=value") in batches of at most the current batch size, using
// the baseline plus the learned noise floor as the comparison
// reference. Batches whose response deviates are bisected down to the
// culprit parameters. Returns the unexplained diff markers observed
// and the parameters found.
func (r *Runner) CheckParameters(ctx context.Context, names []string) ([]string, Parameters, error) {
	var observed []string
	var found Parameters

	for start := 0; start < len(names); start += r.max {
		end := start + r.max
		if end > len(names) {
			end = len(names)
		}

		chunkDiffs, chunkFound, err := r.checkChunk(ctx, names[start:end])
		if err != nil {
			return nil, nil, err
		}
		observed = diff.Merge(observed, chunkDiffs)
		for _, f := range chunkFound {
			if !found.ContainsName(f.Name) {
				found = append(found, f)
			}
		}
	}

	return observed, found, nil
}

// checkChunk sends one probe carrying the whole chunk. A deviating
// response is narrowed by splitting the chunk in half and re-probing
// each side, down to single parameters.
func (r *Runner) checkChunk(ctx context.Context, chunk []string) ([]string, Parameters, error) {
	if len(chunk) == 0 {
		return nil, nil, nil
	}

	params := probe.NamedParams(chunk)
	resp, err := probe.New(r.defaults, params).Send(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("discovery probe: %w", err)
	}
	metrics.RequestsTotal.WithLabelValues(metrics.StageDiscovery).Inc()

	r.noteHint(resp.AdditionalParameter)

	codeDiffers, newDiffs := resp.Compare(r.initial, r.diffs)
	anomalies := r.reflectionAnomalies(resp, params)

	deviated := codeDiffers || len(newDiffs) > 0 || len(anomalies) > 0
	if r.cfg.ReflectedOnly {
		deviated = len(anomalies) > 0
	}
	if !deviated {
		return nil, nil, nil
	}

	if len(chunk) > 1 {
		mid := len(chunk) / 2
		leftDiffs, leftFound, err := r.checkChunk(ctx, chunk[:mid])
		if err != nil {
			return nil, nil, err
		}
		rightDiffs, rightFound, err := r.checkChunk(ctx, chunk[mid:])
		if err != nil {
			return nil, nil, err
		}
		return diff.Merge(leftDiffs, rightDiffs), append(leftFound, rightFound...), nil
	}

	// Single culprit confirmed.
	name := chunk[0]
	key := params[0].Name

	fp := FoundParameter{
		Name:         name,
		Diffs:        newDiffs,
		ReflectCount: resp.ReflectedParameters[key],
		Status:       resp.Code,
	}
	if codeDiffers {
		fp.Reasons = append(fp.Reasons, fmt.Sprintf("code changed (%d -> %d)", r.initial.Code, resp.Code))
	}
	if len(newDiffs) > 0 && !r.cfg.ReflectedOnly {
		fp.Reasons = append(fp.Reasons, fmt.Sprintf("page changed (%d new diffs)", len(newDiffs)))
	}
	if count, anomalous := anomalies[key]; anomalous {
		expected := r.initial.Count(key) + r.defaults.AmountOfReflections
		fp.Reasons = append(fp.Reasons, fmt.Sprintf("reflections changed (%d -> %d)", expected, count))
	}

	metrics.ParametersFound.Inc()
	if r.cfg.Verbose > 0 {
		ui.Found(name, fp.Reasons)
	}

	return newDiffs, Parameters{fp}, nil
}

// noteHint queues a response-revealed parameter name for a follow-up
// discovery pass, unless it was already a candidate or is queued.
func (r *Runner) noteHint(name string) {
	if name == "" {
		return
	}
	if r.hinted == nil {
		r.hinted = make(map[string]struct{})
	}
	if _, dup := r.hinted[name]; dup {
		return
	}
	r.hinted[name] = struct{}{}
	r.hints = append(r.hints, name)
}

// reflectionAnomalies returns the injected parameters whose names
// reflected a different number of times than expected. The expectation
// is baseline-relative: occurrences the page already had before
// injection plus the calibrated reflection count, so a dictionary name
// that appears naturally in the body is not an anomaly. Only
// trustworthy when reflections are stable.
func (r *Runner) reflectionAnomalies(resp *probe.Response, params []probe.Param) map[string]int {
	if !r.stable.Reflections {
		return nil
	}
	anomalies := make(map[string]int)
	for _, p := range params {
		expected := r.initial.Count(p.Name) + r.defaults.AmountOfReflections
		if count := resp.ReflectedParameters[p.Name]; count != expected {
			anomalies[p.Name] = count
		}
	}
	return anomalies
}

// checkNonRandomParameters sweeps the configured dictionary of common
// parameter name/value pairs, independent of the random candidate
// list. Values drain round-robin with a cursor per key: each round
// takes the next unused value for every key that still has one, so
// earlier values are tried before deeper ones across all names evenly
// and total probes are bounded by the longest value list.
func (r *Runner) checkNonRandomParameters(ctx context.Context) (Parameters, error) {
	if r.cfg.DisableCustomParameters {
		return nil, nil
	}

	keys := make([]string, 0, len(r.cfg.CustomParameters))
	for k := range r.cfg.CustomParameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cursors := make(map[string]int, len(keys))
	var found Parameters

	for {
		var batch []string
		for _, k := range keys {
			values := r.cfg.CustomParameters[k]
			if cursors[k] < len(values) {
				batch = append(batch, k+"="+values[cursors[k]])
				cursors[k]++
			}
		}
		if len(batch) == 0 {
			break
		}

		_, swept, err := r.CheckParameters(ctx, batch)
		if err != nil {
			return nil, err
		}
		found = append(found, swept...)
	}

	return found, nil
}
