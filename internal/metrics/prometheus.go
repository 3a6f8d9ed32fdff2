package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/angeloszaimis/status-checker/internal/model"
)

// promMetrics mirrors the in-memory metrics on a private registry so several
// collectors can coexist in one process.
type promMetrics struct {
	registry        *prometheus.Registry
	attemptsTotal   *prometheus.CounterVec
	resultsTotal    *prometheus.CounterVec
	retriesTotal    prometheus.Counter
	attemptDuration *prometheus.HistogramVec
}

func newPromMetrics() *promMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &promMetrics{
		registry: registry,
		attemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "status_checker_attempts_total",
				Help: "Total number of HTTP attempts by outcome",
			},
			[]string{"outcome"}, // ok, timeout, connection_error, protocol_error
		),
		resultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "status_checker_results_total",
				Help: "Total number of finished URL checks by status",
			},
			[]string{"status"}, // ok, error
		),
		retriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "status_checker_retries_total",
				Help: "Total number of attempts made after the first one",
			},
		),
		// 10ms to ~20s
		attemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "status_checker_attempt_duration_seconds",
				Help:    "Duration of HTTP attempts that received a response",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"code"},
		),
	}
}

func (p *promMetrics) observeAttempt(outcome model.Outcome) {
	if !outcome.OK() {
		p.attemptsTotal.WithLabelValues(string(outcome.Reason)).Inc()
		return
	}

	p.attemptsTotal.WithLabelValues(model.StatusOK).Inc()
	p.attemptDuration.WithLabelValues(strconv.Itoa(outcome.StatusCode)).Observe(outcome.Elapsed.Seconds())
}

func (p *promMetrics) observeResult(ok bool, attempts int) {
	status := model.StatusError
	if ok {
		status = model.StatusOK
	}
	p.resultsTotal.WithLabelValues(status).Inc()

	if attempts > 1 {
		p.retriesTotal.Add(float64(attempts - 1))
	}
}
