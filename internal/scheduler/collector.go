package scheduler

import (
	"errors"
	"fmt"

	"github.com/angeloszaimis/status-checker/internal/model"
)

var (
	ErrDuplicateResult = errors.New("duplicate result")
	ErrUnknownIndex    = errors.New("result index out of range")
	ErrIncomplete      = errors.New("report incomplete")
)

// Collector places results at their job index. It is not safe for concurrent
// use; a single goroutine owns it while results arrive.
type Collector struct {
	results  []model.Result
	filled   []bool
	received int
}

func NewCollector(expected int) *Collector {
	return &Collector{
		results: make([]model.Result, expected),
		filled:  make([]bool, expected),
	}
}

// Add stores result at result.Index.
func (c *Collector) Add(result model.Result) error {
	if result.Index < 0 || result.Index >= len(c.results) {
		return fmt.Errorf("%w: %d", ErrUnknownIndex, result.Index)
	}
	if c.filled[result.Index] {
		return fmt.Errorf("%w: %d", ErrDuplicateResult, result.Index)
	}

	c.results[result.Index] = result
	c.filled[result.Index] = true
	c.received++

	return nil
}

// Complete reports whether every expected result has arrived.
func (c *Collector) Complete() bool {
	return c.received == len(c.results)
}

// Received returns the number of results stored so far.
func (c *Collector) Received() int {
	return c.received
}

// Report returns the results in index order once all of them have arrived.
func (c *Collector) Report() (model.Report, error) {
	if !c.Complete() {
		return nil, fmt.Errorf("%w: %d of %d results", ErrIncomplete, c.received, len(c.results))
	}

	report := make(model.Report, len(c.results))
	copy(report, c.results)
	return report, nil
}
