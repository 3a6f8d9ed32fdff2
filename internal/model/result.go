package model

import "time"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the terminal outcome recorded for a Job once retrying stops.
type Result struct {
	Index        int
	URL          string
	Final        Outcome
	Attempts     int
	TotalElapsed time.Duration
	Timestamp    time.Time
}

// Status returns StatusOK when the final attempt got a response and StatusError otherwise.
func (r Result) Status() string {
	if r.Final.OK() {
		return StatusOK
	}
	return StatusError
}

// Report holds one Result per input URL, in input order.
type Report []Result

// Summary aggregates a Report for display.
type Summary struct {
	Total       int            `json:"total" yaml:"total"`
	OK          int            `json:"ok" yaml:"ok"`
	Errors      int            `json:"errors" yaml:"errors"`
	Reasons     map[Reason]int `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	StatusCodes map[int]int    `json:"status_codes,omitempty" yaml:"status_codes,omitempty"`
}

// Summarize counts outcomes across the report.
func (r Report) Summarize() Summary {
	s := Summary{
		Total:       len(r),
		Reasons:     make(map[Reason]int),
		StatusCodes: make(map[int]int),
	}

	for _, res := range r {
		if res.Final.OK() {
			s.OK++
			s.StatusCodes[res.Final.StatusCode]++
			continue
		}
		s.Errors++
		s.Reasons[res.Final.Reason]++
	}

	return s
}
