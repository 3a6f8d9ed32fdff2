package circuitbreaker_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/status-checker/internal/circuitbreaker"
)

var _ = Describe("CircuitBreaker", func() {
	var cb *circuitbreaker.CircuitBreaker

	trip := func() {
		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordFailure()
	}

	BeforeEach(func() {
		cb = circuitbreaker.NewCircuitBreaker(3, 100*time.Millisecond)
	})

	It("should start closed", func() {
		Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		Expect(cb.Allow()).To(BeTrue())
	})

	Context("when in CLOSED state", func() {
		It("should remain closed below the threshold", func() {
			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Allow()).To(BeTrue())
		})

		It("should open at the threshold", func() {
			trip()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})
	})

	Context("when in OPEN state", func() {
		BeforeEach(trip)

		It("should refuse attempts before the reset timeout", func() {
			time.Sleep(30 * time.Millisecond)
			Expect(cb.Allow()).To(BeFalse())
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should let a single probe through after the reset timeout", func() {
			time.Sleep(150 * time.Millisecond)
			Expect(cb.Allow()).To(BeTrue())
			Expect(cb.State()).To(Equal(circuitbreaker.StateHalfOpen))
			Expect(cb.Allow()).To(BeFalse())
		})
	})

	Context("when in HALF-OPEN state", func() {
		BeforeEach(func() {
			trip()
			time.Sleep(150 * time.Millisecond)
			Expect(cb.Allow()).To(BeTrue())
		})

		It("should close when the probe succeeds", func() {
			cb.RecordSuccess()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Allow()).To(BeTrue())
		})

		It("should reopen when the probe fails", func() {
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
			Expect(cb.Allow()).To(BeFalse())
		})
	})

	It("should reset the failure count on success", func() {
		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordSuccess()
		cb.RecordFailure()
		Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
	})

	It("should render state names", func() {
		Expect(circuitbreaker.StateClosed.String()).To(Equal("CLOSED"))
		Expect(circuitbreaker.StateOpen.String()).To(Equal("OPEN"))
		Expect(circuitbreaker.StateHalfOpen.String()).To(Equal("HALF-OPEN"))
		Expect(circuitbreaker.State(42).String()).To(Equal("UNKNOWN"))
	})
})
