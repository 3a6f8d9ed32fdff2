package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/angeloszaimis/status-checker/internal/model"
)

const maxSamples = 1000

type Metrics struct {
	mutex         sync.RWMutex
	attempts      map[string]int64
	failures      map[string]map[model.Reason]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	results       int64
	resultsOK     int64
	retries       int64
	startTime     time.Time
}

type Snapshot struct {
	TotalAttempts int64                  `json:"total_attempts"`
	Results       int64                  `json:"results"`
	ResultsOK     int64                  `json:"results_ok"`
	Retries       int64                  `json:"retries"`
	Uptime        time.Duration          `json:"uptime"`
	Hosts         map[string]HostMetrics `json:"hosts"`
}

type HostMetrics struct {
	Attempts    int64                  `json:"attempts"`
	Failures    map[model.Reason]int64 `json:"failures,omitempty"`
	AvgResponse time.Duration          `json:"avg_response"`
	P50Response time.Duration          `json:"p50_response"`
	P95Response time.Duration          `json:"p95_response"`
	P99Response time.Duration          `json:"p99_response"`
	StatusCodes map[int]int64          `json:"status_codes,omitempty"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		attempts:      make(map[string]int64),
		failures:      make(map[string]map[model.Reason]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		startTime:     time.Now(),
	}
}

// RecordAttempt counts one attempt against host. Response times are only kept
// for attempts that got a response.
func (m *Metrics) RecordAttempt(host string, outcome model.Outcome) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.attempts[host]++

	if !outcome.OK() {
		if m.failures[host] == nil {
			m.failures[host] = make(map[model.Reason]int64)
		}
		m.failures[host][outcome.Reason]++
		return
	}

	m.responseTimes[host] = append(m.responseTimes[host], outcome.Elapsed)
	if len(m.responseTimes[host]) > maxSamples {
		m.responseTimes[host] = m.responseTimes[host][1:]
	}

	if m.statusCodes[host] == nil {
		m.statusCodes[host] = make(map[int]int64)
	}
	m.statusCodes[host][outcome.StatusCode]++
}

func (m *Metrics) RecordResult(ok bool, attempts int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.results++
	if ok {
		m.resultsOK++
	}
	if attempts > 1 {
		m.retries += int64(attempts - 1)
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Results:   m.results,
		ResultsOK: m.resultsOK,
		Retries:   m.retries,
		Uptime:    time.Since(m.startTime),
		Hosts:     make(map[string]HostMetrics, len(m.attempts)),
	}

	for host, attempts := range m.attempts {
		snap.TotalAttempts += attempts

		hm := HostMetrics{
			Attempts:    attempts,
			Failures:    copyCounts(m.failures[host]),
			StatusCodes: copyCounts(m.statusCodes[host]),
		}

		durations := m.responseTimes[host]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			hm.AvgResponse = average(sorted)
			hm.P50Response = percentile(sorted, 0.50)
			hm.P95Response = percentile(sorted, 0.95)
			hm.P99Response = percentile(sorted, 0.99)
		}

		snap.Hosts[host] = hm
	}

	return snap
}

func copyCounts[K comparable](src map[K]int64) map[K]int64 {
	if src == nil {
		return nil
	}
	dst := make(map[K]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
