package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angeloszaimis/status-checker/internal/checker"
	"github.com/angeloszaimis/status-checker/internal/circuitbreaker"
	"github.com/angeloszaimis/status-checker/internal/model"
	"github.com/angeloszaimis/status-checker/internal/pool"
	"github.com/angeloszaimis/status-checker/internal/retry"
)

// Recorder receives every attempt and every final result of a run.
type Recorder interface {
	RecordAttempt(url string, outcome model.Outcome)
	RecordResult(result model.Result)
}

type Scheduler struct {
	settings Settings
	pool     *pool.Pool
	recorder Recorder
	onResult func(model.Result)
	logger   *slog.Logger
}

type Option func(*options)

type options struct {
	breakers *circuitbreaker.Registry
	recorder Recorder
	onResult func(model.Result)
}

// WithBreakers enables per-host circuit breakers for retries.
func WithBreakers(registry *circuitbreaker.Registry) Option {
	return func(o *options) {
		o.breakers = registry
	}
}

// WithRecorder reports attempts and results to recorder.
func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// WithResultHandler calls fn for each result as soon as it completes, in
// completion order, from the goroutine running Run.
func WithResultHandler(fn func(model.Result)) Option {
	return func(o *options) {
		o.onResult = fn
	}
}

// New validates settings and wires the retry policy and worker pool around c.
func New(settings Settings, c checker.Checker, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	policyOpts := []retry.Option{retry.WithBackoff(settings.Backoff, settings.MaxBackoff)}
	if o.breakers != nil {
		policyOpts = append(policyOpts, retry.WithBreakers(o.breakers))
	}
	if o.recorder != nil {
		policyOpts = append(policyOpts, retry.WithRecorder(o.recorder))
	}

	policy := retry.New(c, settings.Timeout, settings.Retries, logger, policyOpts...)

	return &Scheduler{
		settings: settings,
		pool:     pool.New(settings.Workers, policy, logger),
		recorder: o.recorder,
		onResult: o.onResult,
		logger:   logger,
	}, nil
}

// Run checks urls and returns their results in input order. An empty list
// yields an empty Report.
//
// Cancelling ctx stops the run: attempts already started finish, nothing new
// starts, and Run returns ErrInterrupted without a Report.
func (s *Scheduler) Run(ctx context.Context, urls []string) (model.Report, error) {
	if len(urls) == 0 {
		return model.Report{}, nil
	}

	s.logger.Info("Starting run",
		slog.Int("urls", len(urls)),
		slog.Int("workers", s.pool.Size()),
		slog.Duration("timeout", s.settings.Timeout),
		slog.Int("retries", s.settings.Retries))

	jobs := make(chan model.Job)
	results := make(chan model.Result, s.settings.Workers)

	go Dispatch(ctx, urls, jobs)
	go func() {
		s.pool.Run(ctx, jobs, results)
		close(results)
	}()

	collector := NewCollector(len(urls))
	for result := range results {
		if err := collector.Add(result); err != nil {
			s.logger.Error("Discarding result", slog.Any("err", err))
			continue
		}

		if s.recorder != nil {
			s.recorder.RecordResult(result)
		}
		if s.onResult != nil {
			s.onResult(result)
		}
	}

	// A job cut short between attempts still yields a Result, so a full
	// collector does not mean the run finished.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %d of %d urls checked", ErrInterrupted, collector.Received(), len(urls))
	}

	report, err := collector.Report()
	if err != nil {
		return nil, err
	}

	s.logger.Info("Run complete", slog.Int("results", len(report)))

	return report, nil
}
