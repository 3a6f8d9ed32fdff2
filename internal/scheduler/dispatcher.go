package scheduler

import (
	"context"

	"github.com/angeloszaimis/status-checker/internal/model"
)

// Dispatch sends one Job per URL, in input order, and closes jobs afterwards.
// URLs are passed through untouched; a malformed one fails in the checker.
// Dispatch stops early only when ctx is cancelled.
func Dispatch(ctx context.Context, urls []string, jobs chan<- model.Job) {
	defer close(jobs)

	for i, u := range urls {
		select {
		case jobs <- model.Job{URL: u, Index: i}:
		case <-ctx.Done():
			return
		}
	}
}
