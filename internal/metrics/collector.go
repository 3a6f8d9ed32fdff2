package metrics

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/angeloszaimis/status-checker/internal/model"
)

type EventType string

const (
	EventAttemptCompleted EventType = "attempt_completed"
	EventResultRecorded   EventType = "result_recorded"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Host      string
	Outcome   model.Outcome
	Attempts  int
}

type Collector struct {
	eventCh chan MetricEvent
	done    chan struct{}
	metrics *Metrics
	prom    *promMetrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		done:    make(chan struct{}),
		metrics: NewMetrics(),
		prom:    newPromMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Start processes events in a background goroutine until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Wait blocks until the collector has stopped and drained its buffer.
func (c *Collector) Wait() {
	<-c.done
}

// RecordAttempt emits an attempt event without blocking the caller.
func (c *Collector) RecordAttempt(rawURL string, outcome model.Outcome) {
	c.emit(MetricEvent{
		Type:      EventAttemptCompleted,
		Timestamp: time.Now(),
		Host:      hostOf(rawURL),
		Outcome:   outcome,
	})
}

// RecordResult emits a result event without blocking the caller.
func (c *Collector) RecordResult(result model.Result) {
	c.emit(MetricEvent{
		Type:      EventResultRecorded,
		Timestamp: time.Now(),
		Host:      hostOf(result.URL),
		Outcome:   result.Final,
		Attempts:  result.Attempts,
	})
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}

func (c *Collector) emit(event MetricEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("Metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Debug("Metrics collector started")
	defer c.logger.Debug("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventAttemptCompleted:
		c.prom.observeAttempt(event.Outcome)
		c.metrics.RecordAttempt(event.Host, event.Outcome)

	case EventResultRecorded:
		c.prom.observeResult(event.Outcome.OK(), event.Attempts)
		c.metrics.RecordResult(event.Outcome.OK(), event.Attempts)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
