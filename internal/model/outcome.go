package model

import "time"

// Reason classifies why an attempt produced no HTTP response.
type Reason string

const (
	ReasonTimeout    Reason = "timeout"
	ReasonConnection Reason = "connection_error"
	ReasonProtocol   Reason = "protocol_error"
)

// Outcome is the result of a single attempt. A zero Reason means the target
// answered with StatusCode; otherwise the attempt failed and Err holds the cause.
type Outcome struct {
	StatusCode int
	Reason     Reason
	Err        error
	Elapsed    time.Duration
}

// Success builds the outcome of an attempt that received a response.
func Success(statusCode int, elapsed time.Duration) Outcome {
	return Outcome{StatusCode: statusCode, Elapsed: elapsed}
}

// Failure builds the outcome of an attempt that received no response.
func Failure(reason Reason, err error, elapsed time.Duration) Outcome {
	return Outcome{Reason: reason, Err: err, Elapsed: elapsed}
}

// OK reports whether the attempt received a response, whatever its status code.
func (o Outcome) OK() bool {
	return o.Reason == ""
}

// Message returns the failure cause, or an empty string for a successful attempt.
func (o Outcome) Message() string {
	if o.OK() {
		return ""
	}
	if o.Err == nil {
		return string(o.Reason)
	}
	return o.Err.Error()
}
