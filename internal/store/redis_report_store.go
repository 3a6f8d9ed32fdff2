package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angeloszaimis/status-checker/internal/report"
)

type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

// RedisReportStore stores run documents in Redis.
type RedisReportStore struct {
	client redisClient
	prefix string
	ttl    time.Duration
}

var _ ReportStore = (*RedisReportStore)(nil)

// NewRedisReportStore initializes a Redis-backed ReportStore. A zero ttl keeps
// reports until they are removed by hand.
func NewRedisReportStore(addr, prefix string, ttl time.Duration) *RedisReportStore {
	return NewRedisReportStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), prefix, ttl)
}

func NewRedisReportStoreWithClient(client redisClient, prefix string, ttl time.Duration) *RedisReportStore {
	return &RedisReportStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisReportStore) Close() error {
	return s.client.Close()
}

// SaveReport writes doc under prefix+RunID.
func (s *RedisReportStore) SaveReport(ctx context.Context, doc report.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+doc.RunID, payload, s.ttl).Err()
}

// GetReport reads a run document. The bool is false when none is stored.
func (s *RedisReportStore) GetReport(ctx context.Context, runID string) (report.Document, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+runID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return report.Document{}, false, nil
		}
		return report.Document{}, false, err
	}

	var doc report.Document
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return report.Document{}, false, err
	}

	return doc, true, nil
}
