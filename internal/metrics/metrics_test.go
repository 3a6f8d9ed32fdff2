package metrics_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/status-checker/internal/metrics"
	"github.com/angeloszaimis/status-checker/internal/model"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("RecordAttempt", func() {
		It("should count attempts per host", func() {
			m.RecordAttempt("a.example.com", model.Success(200, time.Millisecond))
			m.RecordAttempt("a.example.com", model.Success(200, time.Millisecond))
			m.RecordAttempt("b.example.com", model.Success(200, time.Millisecond))

			snap := m.Snapshot()
			Expect(snap.TotalAttempts).To(Equal(int64(3)))
			Expect(snap.Hosts["a.example.com"].Attempts).To(Equal(int64(2)))
			Expect(snap.Hosts["b.example.com"].Attempts).To(Equal(int64(1)))
		})

		It("should record response times and status codes", func() {
			m.RecordAttempt("example.com", model.Success(200, 100*time.Millisecond))
			m.RecordAttempt("example.com", model.Success(404, 200*time.Millisecond))

			host := m.Snapshot().Hosts["example.com"]
			Expect(host.AvgResponse).To(Equal(150 * time.Millisecond))
			Expect(host.StatusCodes).To(Equal(map[int]int64{200: 1, 404: 1}))
		})

		It("should count failures by reason without timing them", func() {
			m.RecordAttempt("example.com", model.Failure(model.ReasonTimeout, errors.New("timeout"), time.Second))
			m.RecordAttempt("example.com", model.Failure(model.ReasonTimeout, errors.New("timeout"), time.Second))
			m.RecordAttempt("example.com", model.Failure(model.ReasonConnection, errors.New("refused"), time.Millisecond))

			host := m.Snapshot().Hosts["example.com"]
			Expect(host.Attempts).To(Equal(int64(3)))
			Expect(host.Failures[model.ReasonTimeout]).To(Equal(int64(2)))
			Expect(host.Failures[model.ReasonConnection]).To(Equal(int64(1)))
			Expect(host.AvgResponse).To(BeZero())
		})

		It("should calculate percentiles correctly", func() {
			for i := 1; i <= 100; i++ {
				m.RecordAttempt("example.com", model.Success(200, time.Duration(i)*time.Millisecond))
			}

			host := m.Snapshot().Hosts["example.com"]
			Expect(host.P50Response).To(BeNumerically("~", 50*time.Millisecond, time.Millisecond))
			Expect(host.P95Response).To(BeNumerically("~", 95*time.Millisecond, time.Millisecond))
			Expect(host.P99Response).To(BeNumerically("~", 99*time.Millisecond, time.Millisecond))
		})

		It("should keep only the most recent response times", func() {
			for i := 1; i <= 1500; i++ {
				m.RecordAttempt("example.com", model.Success(200, time.Duration(i)*time.Millisecond))
			}

			Expect(m.Snapshot().Hosts["example.com"].AvgResponse).To(BeNumerically(">", 500*time.Millisecond))
		})
	})

	Describe("RecordResult", func() {
		It("should count results and retries", func() {
			m.RecordResult(true, 1)
			m.RecordResult(false, 3)
			m.RecordResult(true, 2)

			snap := m.Snapshot()
			Expect(snap.Results).To(Equal(int64(3)))
			Expect(snap.ResultsOK).To(Equal(int64(2)))
			Expect(snap.Retries).To(Equal(int64(3)))
		})
	})

	Describe("Snapshot", func() {
		It("should handle empty metrics", func() {
			snap := m.Snapshot()
			Expect(snap.TotalAttempts).To(BeZero())
			Expect(snap.Hosts).To(BeEmpty())
		})

		It("should include uptime", func() {
			time.Sleep(5 * time.Millisecond)
			Expect(m.Snapshot().Uptime).To(BeNumerically(">", 0))
		})

		It("should not share maps with later updates", func() {
			m.RecordAttempt("example.com", model.Success(200, time.Millisecond))
			snap := m.Snapshot()
			m.RecordAttempt("example.com", model.Success(200, time.Millisecond))

			Expect(snap.Hosts["example.com"].StatusCodes[200]).To(Equal(int64(1)))
		})
	})
})
