package store_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/angeloszaimis/status-checker/internal/model"
	"github.com/angeloszaimis/status-checker/internal/report"
	"github.com/angeloszaimis/status-checker/internal/store"
)

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failSet error
	failGet error
	closed  bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.failSet != nil {
		return redis.NewStatusResult("", f.failSet)
	}
	f.values[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	val, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("RedisReportStore", func() {
	var (
		client *fakeRedis
		s      *store.RedisReportStore
		doc    report.Document
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = newFakeRedis()
		s = store.NewRedisReportStoreWithClient(client, "status-checker:report:", time.Hour)

		started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		doc = report.NewDocument("run-7", started, started.Add(time.Second),
			report.Settings{Workers: 2, Timeout: "5s"},
			model.Report{{URL: "https://example.com", Final: model.Success(204, time.Millisecond), Attempts: 1, Timestamp: started}})
	})

	It("should store the document under the prefixed run ID with the TTL", func() {
		Expect(s.SaveReport(ctx, doc)).To(Succeed())

		Expect(client.values).To(HaveKey("status-checker:report:run-7"))
		Expect(client.ttls["status-checker:report:run-7"]).To(Equal(time.Hour))
	})

	It("should read back a saved document", func() {
		Expect(s.SaveReport(ctx, doc)).To(Succeed())

		got, found, err := s.GetReport(ctx, "run-7")

		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(got.RunID).To(Equal("run-7"))
		Expect(got.Results).To(Equal(doc.Results))
		Expect(got.Summary.OK).To(Equal(1))
	})

	It("should report a missing document as not found", func() {
		_, found, err := s.GetReport(ctx, "unknown")

		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("should return client errors", func() {
		client.failSet = errors.New("connection refused")
		client.failGet = errors.New("connection refused")

		Expect(s.SaveReport(ctx, doc)).To(MatchError("connection refused"))
		_, found, err := s.GetReport(ctx, "run-7")
		Expect(err).To(MatchError("connection refused"))
		Expect(found).To(BeFalse())
	})

	It("should fail on a corrupt payload", func() {
		client.values["status-checker:report:run-7"] = "{not json"

		_, found, err := s.GetReport(ctx, "run-7")

		Expect(err).To(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("should close the client", func() {
		Expect(s.Close()).To(Succeed())
		Expect(client.closed).To(BeTrue())
	})
})
