// Package retry decides how many times a job is attempted. A job ends as soon
// as an attempt gets an HTTP response, or once retry budget + 1 attempts have
// failed, in which case the last failure becomes the final status.
package retry
