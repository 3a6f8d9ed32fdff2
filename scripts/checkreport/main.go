// Checkreport validates a report written by status-checker: every index from
// 0 to n-1 appears exactly once, attempts stay within the retry budget and the
// summary agrees with the results.
//
// Usage:
//
//	go run ./scripts/checkreport -report status.json -expected 500
//	go run ./scripts/checkreport -redis localhost:6379 -run-id <id>
//
// Exit codes:
//
//	0 - Verification passed
//	2 - File errors or malformed report
//	3 - Inconsistent report
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/angeloszaimis/status-checker/internal/model"
	"github.com/angeloszaimis/status-checker/internal/report"
	"github.com/angeloszaimis/status-checker/internal/store"
)

var errRunNotFound = errors.New("run not found")

func main() {
	path := pflag.String("report", "status.json", "path to the report (.json or .yaml)")
	expected := pflag.Int("expected", 0, "expected number of results (optional)")
	redisAddr := pflag.String("redis", "", "read the report from this Redis address instead of a file")
	prefix := pflag.String("prefix", "status-checker:report:", "Redis key prefix")
	runID := pflag.String("run-id", "", "run ID to read from Redis")
	pflag.Parse()

	var (
		doc report.Document
		err error
	)
	if *redisAddr != "" {
		reports := store.NewRedisReportStore(*redisAddr, *prefix, 0)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		doc, err = fetch(ctx, reports, *runID)
		cancel()
		reports.Close()
	} else {
		doc, err = load(*path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read report: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Run %s: %d results\n", doc.RunID, len(doc.Results))

	problems := verify(doc, *expected)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Println("ERROR:", p)
		}
		os.Exit(3)
	}

	fmt.Println("Per-status counts:")
	fmt.Printf("  ok -> %d\n", doc.Summary.OK)
	fmt.Printf("  error -> %d\n", doc.Summary.Errors)

	fmt.Println("Verification passed: indices complete and unique, summary matches results.")
}

func load(path string) (report.Document, error) {
	var doc report.Document

	content, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		err = yaml.Unmarshal(content, &doc)
	} else {
		err = json.Unmarshal(content, &doc)
	}

	return doc, err
}

// fetch reads a stored run document.
func fetch(ctx context.Context, reports store.ReportStore, runID string) (report.Document, error) {
	if runID == "" {
		return report.Document{}, errors.New("-run-id is required with -redis")
	}

	doc, found, err := reports.GetReport(ctx, runID)
	if err != nil {
		return report.Document{}, err
	}
	if !found {
		return report.Document{}, fmt.Errorf("%w: %s", errRunNotFound, runID)
	}

	return doc, nil
}

// verify returns one message per inconsistency found in doc.
func verify(doc report.Document, expected int) []string {
	var problems []string

	if expected > 0 && len(doc.Results) != expected {
		problems = append(problems, fmt.Sprintf("total results (%d) != expected (%d)", len(doc.Results), expected))
	}

	seen := make(map[int]bool, len(doc.Results))
	var ok, failed int
	for pos, entry := range doc.Results {
		if entry.Index != pos {
			problems = append(problems, fmt.Sprintf("result %d has index %d", pos, entry.Index))
		}
		if seen[entry.Index] {
			problems = append(problems, fmt.Sprintf("duplicate index %d", entry.Index))
		}
		seen[entry.Index] = true

		if entry.Attempts < 1 || entry.Attempts > doc.Settings.Retries+1 {
			problems = append(problems, fmt.Sprintf("index %d made %d attempts with %d retries allowed",
				entry.Index, entry.Attempts, doc.Settings.Retries))
		}

		switch entry.Status {
		case model.StatusOK:
			ok++
		case model.StatusError:
			failed++
		default:
			problems = append(problems, fmt.Sprintf("index %d has unknown status %q", entry.Index, entry.Status))
		}
	}

	if doc.Summary.Total != len(doc.Results) || doc.Summary.OK != ok || doc.Summary.Errors != failed {
		problems = append(problems, fmt.Sprintf("summary %d/%d/%d does not match results %d/%d/%d",
			doc.Summary.Total, doc.Summary.OK, doc.Summary.Errors, len(doc.Results), ok, failed))
	}

	return problems
}
