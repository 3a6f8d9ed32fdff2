// Package metrics collects live statistics about a check run.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Attempt counts per host
//   - Failure reasons per host (timeout, connection_error, protocol_error)
//   - Response times with percentile calculations (P50, P95, P99)
//   - HTTP status code distribution
//   - Finished results and the number of retries they needed
//
// The collector runs in a dedicated goroutine. Workers emit events with
// non-blocking sends so a slow collector never holds up a check.
//
// Example usage:
//
//	collector := metrics.NewCollector(1024, logger)
//	collector.Start(ctx)
//
//	policy := retry.New(c, timeout, retries, logger, retry.WithRecorder(collector))
//
//	snapshot := collector.Snapshot()
//
// Every event is also mirrored into a private Prometheus registry exposed by
// PrometheusHandler.
package metrics
