package pool

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc"

	"github.com/angeloszaimis/status-checker/internal/model"
)

// Executor turns a Job into its final Result.
type Executor interface {
	Execute(ctx context.Context, job model.Job) model.Result
}

type Pool struct {
	size     int
	executor Executor
	logger   *slog.Logger
}

func New(size int, executor Executor, logger *slog.Logger) *Pool {
	return &Pool{
		size:     size,
		executor: executor,
		logger:   logger,
	}
}

// Size returns the number of workers Run starts.
func (p *Pool) Size() int {
	return p.size
}

// Run starts the workers and blocks until all of them have exited. A worker
// exits when jobs is closed or ctx is cancelled, never in the middle of a job.
// Every result is sent to results, so the caller must keep receiving until Run returns.
func (p *Pool) Run(ctx context.Context, jobs <-chan model.Job, results chan<- model.Result) {
	var wg conc.WaitGroup

	for i := 1; i <= p.size; i++ {
		id := i
		wg.Go(func() {
			p.work(ctx, id, jobs, results)
		})
	}

	wg.Wait()
}

func (p *Pool) work(ctx context.Context, id int, jobs <-chan model.Job, results chan<- model.Result) {
	p.logger.Debug("Worker started", slog.Int("worker", id))
	defer p.logger.Debug("Worker stopped", slog.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok || ctx.Err() != nil {
				return
			}
			results <- p.executor.Execute(ctx, job)
		}
	}
}
