package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/angeloszaimis/status-checker/internal/report"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ResultMessage is the payload of a single published result.
type ResultMessage struct {
	RunID string `json:"run_id"`
	report.Entry
}

// Producer wraps a Kafka writer for publishing results.
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

// NewProducer creates a producer for the given broker and topic.
func NewProducer(broker, topic string) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: false,
	})
}

// NewProducerWithWriter builds a producer using a custom writer (tests).
func NewProducerWithWriter(writer messageWriter) *Producer {
	return &Producer{writer: writer, now: time.Now}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// PublishReport writes one message per entry in a single batch. Messages share
// the run ID as key so a run lands on one partition in order.
func (p *Producer) PublishReport(ctx context.Context, runID string, entries []report.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	now := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(ResultMessage{RunID: runID, Entry: entry})
		if err != nil {
			return err
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(runID),
			Value: payload,
			Time:  now,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publishing %d results: %w", len(msgs), err)
	}

	return nil
}
