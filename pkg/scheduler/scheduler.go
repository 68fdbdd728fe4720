// Package scheduler executes discovery runs concurrently across
// multiple targets. Each target gets its own task (one engine runner,
// one pipeline); the only state shared between tasks is the immutable
// process configuration and the pooled HTTP client. Per-target results
// are merged only here, at the top level, after each run completes.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Result represents the outcome of processing a single target.
type Result[T any] struct {
	Target   string
	Data     T
	Error    error
	Duration time.Duration
}

// Stats tracks execution statistics.
type Stats struct {
	Total      int64
	Completed  int64
	Successful int64
	Failed     int64
	StartTime  time.Time
}

// Progress returns completion percentage (0-100).
func (s *Stats) Progress() float64 {
	total := atomic.LoadInt64(&s.Total)
	if total == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Completed)) / float64(total) * 100
}

// TaskFunc processes a single target.
type TaskFunc[T any] func(ctx context.Context, target string) (T, error)

// Scheduler fans tasks out over targets with bounded concurrency.
type Scheduler[T any] struct {
	// Concurrency is the number of parallel targets (default 1:
	// probing is noisy enough without parallel runs from one box).
	Concurrency int

	// Timeout per target (0 = no per-target timeout).
	Timeout time.Duration

	// Stats tracks execution statistics.
	Stats Stats

	// OnProgress is called after each target completes (optional).
	OnProgress func(completed, total int64, result Result[T])
}

// New creates a scheduler with default settings.
func New[T any]() *Scheduler[T] {
	return &Scheduler[T]{Concurrency: 1}
}

// Run executes the task for all targets and returns results in
// completion order.
func (s *Scheduler[T]) Run(ctx context.Context, targets []string, task TaskFunc[T]) []Result[T] {
	if len(targets) == 0 {
		return nil
	}

	s.Stats = Stats{
		Total:     int64(len(targets)),
		StartTime: time.Now(),
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(targets) {
		concurrency = len(targets)
	}

	sem := make(chan struct{}, concurrency)
	resultsChan := make(chan Result[T], len(targets))
	var wg sync.WaitGroup

	for _, target := range targets {
		select {
		case <-ctx.Done():
			goto cleanup
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(t string) {
			defer wg.Done()
			defer func() { <-sem }()

			start := time.Now()

			taskCtx := ctx
			if s.Timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, s.Timeout)
				defer cancel()
			}

			data, err := task(taskCtx, t)

			result := Result[T]{
				Target:   t,
				Data:     data,
				Error:    err,
				Duration: time.Since(start),
			}

			atomic.AddInt64(&s.Stats.Completed, 1)
			if err == nil {
				atomic.AddInt64(&s.Stats.Successful, 1)
			} else {
				atomic.AddInt64(&s.Stats.Failed, 1)
			}

			if s.OnProgress != nil {
				s.OnProgress(
					atomic.LoadInt64(&s.Stats.Completed),
					atomic.LoadInt64(&s.Stats.Total),
					result,
				)
			}

			resultsChan <- result
		}(target)
	}

cleanup:
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]Result[T], 0, len(targets))
	for result := range resultsChan {
		results = append(results, result)
	}
	return results
}
