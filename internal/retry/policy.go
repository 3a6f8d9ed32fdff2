package retry

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/angeloszaimis/status-checker/internal/checker"
	"github.com/angeloszaimis/status-checker/internal/circuitbreaker"
	"github.com/angeloszaimis/status-checker/internal/model"
)

// AttemptRecorder is notified after every attempt a Policy makes.
type AttemptRecorder interface {
	RecordAttempt(url string, outcome model.Outcome)
}

// Policy runs a Job through a Checker, re-attempting after failures until an
// attempt gets a response or the retry budget is spent.
type Policy struct {
	checker    checker.Checker
	timeout    time.Duration
	retries    int
	backoff    time.Duration
	maxBackoff time.Duration
	breakers   *circuitbreaker.Registry
	recorder   AttemptRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option customises a Policy.
type Option func(*Policy)

// WithBackoff sets the delay before the first retry. The delay doubles on each
// further retry up to max. A zero base disables waiting between attempts.
func WithBackoff(base, max time.Duration) Option {
	return func(p *Policy) {
		p.backoff = base
		p.maxBackoff = max
	}
}

// WithBreakers skips the remaining retries of a job once the breaker for its
// host is open.
func WithBreakers(registry *circuitbreaker.Registry) Option {
	return func(p *Policy) {
		p.breakers = registry
	}
}

// WithRecorder registers a recorder for attempt outcomes.
func WithRecorder(recorder AttemptRecorder) Option {
	return func(p *Policy) {
		p.recorder = recorder
	}
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

// New creates a Policy allowing retries extra attempts after the first, each
// bounded by timeout.
func New(c checker.Checker, timeout time.Duration, retries int, logger *slog.Logger, opts ...Option) *Policy {
	p := &Policy{
		checker: c,
		timeout: timeout,
		retries: retries,
		logger:  logger,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Execute checks job.URL and returns its final Result. Only failed attempts
// are retried; any HTTP response ends the job. TotalElapsed sums the attempt
// durations and leaves out backoff waits.
//
// Cancelling ctx stops further attempts but lets a started one finish.
func (p *Policy) Execute(ctx context.Context, job model.Job) model.Result {
	attemptCtx := context.WithoutCancel(ctx)
	breaker := p.breakerFor(job.URL)
	delay := p.backoff

	var (
		outcome  model.Outcome
		total    time.Duration
		attempts int
		finished time.Time
	)

	for {
		outcome = p.checker.Attempt(attemptCtx, job.URL, p.timeout)
		finished = p.now()
		attempts++
		total += outcome.Elapsed

		p.record(job.URL, outcome, breaker)

		if outcome.OK() || attempts > p.retries || ctx.Err() != nil {
			break
		}

		if breaker != nil && !breaker.Allow() {
			p.logger.Debug("Circuit open, skipping remaining retries",
				slog.String("url", job.URL),
				slog.Int("attempts", attempts))
			break
		}

		p.logger.Debug("Retrying",
			slog.String("url", job.URL),
			slog.Int("attempt", attempts),
			slog.String("reason", string(outcome.Reason)),
			slog.Duration("backoff", delay))

		if delay > 0 {
			if !wait(ctx, delay) {
				break
			}
			delay *= 2
			if p.maxBackoff > 0 && delay > p.maxBackoff {
				delay = p.maxBackoff
			}
		}
	}

	return model.Result{
		Index:        job.Index,
		URL:          job.URL,
		Final:        outcome,
		Attempts:     attempts,
		TotalElapsed: total,
		Timestamp:    finished,
	}
}

func (p *Policy) record(rawURL string, outcome model.Outcome, breaker *circuitbreaker.CircuitBreaker) {
	if p.recorder != nil {
		p.recorder.RecordAttempt(rawURL, outcome)
	}

	if breaker == nil {
		return
	}
	if outcome.OK() {
		breaker.RecordSuccess()
	} else {
		breaker.RecordFailure()
	}
}

func (p *Policy) breakerFor(rawURL string) *circuitbreaker.CircuitBreaker {
	if p.breakers == nil {
		return nil
	}

	key := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		key = u.Host
	}

	return p.breakers.GetBreaker(key)
}

func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
