// Package circuitbreaker tracks consecutive failures per host so that retries
// against a host that keeps failing can be skipped.
//
// A breaker has three states:
//
//   - CLOSED: attempts and retries proceed normally
//   - OPEN: the host failed too often, retries are refused until the reset timeout passes
//   - HALF-OPEN: one probe retry is let through; its outcome closes or reopens the breaker
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second)
//	cb := registry.GetBreaker("example.com")
//	if cb.Allow() {
//	    // retry...
//	}
package circuitbreaker
