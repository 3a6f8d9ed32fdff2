package report

import (
	"time"

	"github.com/angeloszaimis/status-checker/internal/model"
)

const timestampLayout = time.RFC3339Nano

// Document is the serialized form of a finished run.
type Document struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	StartedAt  string        `json:"started_at" yaml:"started_at"`
	FinishedAt string        `json:"finished_at" yaml:"finished_at"`
	Settings   Settings      `json:"settings" yaml:"settings"`
	Summary    model.Summary `json:"summary" yaml:"summary"`
	Results    []Entry       `json:"results" yaml:"results"`
}

type Settings struct {
	Workers int    `json:"workers" yaml:"workers"`
	Timeout string `json:"timeout" yaml:"timeout"`
	Retries int    `json:"retries" yaml:"retries"`
}

// Entry is one Result. StatusCode is set only for "ok" entries, Reason and
// Error only for "error" entries.
type Entry struct {
	Index      int          `json:"index" yaml:"index"`
	URL        string       `json:"url" yaml:"url"`
	Status     string       `json:"status" yaml:"status"`
	StatusCode int          `json:"http_status_code,omitempty" yaml:"http_status_code,omitempty"`
	Reason     model.Reason `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error      string       `json:"error,omitempty" yaml:"error,omitempty"`
	Attempts   int          `json:"attempts" yaml:"attempts"`
	TimeMS     int64        `json:"time_ms" yaml:"time_ms"`
	Timestamp  string       `json:"timestamp" yaml:"timestamp"`
}

// NewDocument builds the document for report.
func NewDocument(runID string, startedAt, finishedAt time.Time, settings Settings, report model.Report) Document {
	doc := Document{
		RunID:      runID,
		StartedAt:  startedAt.UTC().Format(timestampLayout),
		FinishedAt: finishedAt.UTC().Format(timestampLayout),
		Settings:   settings,
		Summary:    report.Summarize(),
		Results:    make([]Entry, 0, len(report)),
	}

	for _, result := range report {
		doc.Results = append(doc.Results, NewEntry(result))
	}

	return doc
}

func NewEntry(result model.Result) Entry {
	entry := Entry{
		Index:     result.Index,
		URL:       result.URL,
		Status:    result.Status(),
		Attempts:  result.Attempts,
		TimeMS:    result.TotalElapsed.Milliseconds(),
		Timestamp: result.Timestamp.UTC().Format(timestampLayout),
	}

	if result.Final.OK() {
		entry.StatusCode = result.Final.StatusCode
	} else {
		entry.Reason = result.Final.Reason
		entry.Error = result.Final.Message()
	}

	return entry
}
