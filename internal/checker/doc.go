// Package checker performs single HTTP attempts against a URL with a hard
// timeout and classifies what happened.
//
// Any HTTP response counts as a successful attempt, including 4xx and 5xx
// status codes. Only attempts that got no response at all are failures, split
// into timeouts, connection errors and protocol errors:
//
//	c := checker.New(nil)
//	outcome := c.Attempt(ctx, "https://example.com", 5*time.Second)
//	if !outcome.OK() {
//	    // outcome.Reason is one of model.ReasonTimeout,
//	    // model.ReasonConnection or model.ReasonProtocol
//	}
package checker
