package model

// Job is one URL queued for checking together with its position in the input list.
type Job struct {
	URL   string
	Index int
}
