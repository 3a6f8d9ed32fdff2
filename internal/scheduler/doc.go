// Package scheduler checks a list of URLs with a bounded worker pool and
// returns one Result per URL in input order.
//
// Run feeds one Job per URL into a shared queue, lets the pool work through
// the queue with the retry policy, and places every Result at its job index as
// it arrives, so the Report order never depends on completion order.
//
// Failing URLs are data, not errors. Run only returns an error for invalid
// Settings (ErrInvalidConfig) or when the run is interrupted (ErrInterrupted).
package scheduler
