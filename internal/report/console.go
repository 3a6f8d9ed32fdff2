package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/angeloszaimis/status-checker/internal/model"
)

// PrintResult writes a one-line status for result.
func PrintResult(w io.Writer, result model.Result) {
	elapsed := result.TotalElapsed.Round(time.Millisecond)

	if result.Final.OK() {
		fmt.Fprintf(w, "[%d] OK %s in %s\n", result.Final.StatusCode, result.URL, elapsed)
		return
	}

	fmt.Fprintf(w, "[ERROR] %s failed: %s: %s (after %s, %d attempts)\n",
		result.URL, result.Final.Reason, result.Final.Message(), elapsed, result.Attempts)
}

// PrintSummary writes the totals of summary.
func PrintSummary(w io.Writer, summary model.Summary) {
	fmt.Fprintf(w, "\nSummary: %d checked, %d ok, %d errors\n", summary.Total, summary.OK, summary.Errors)

	codes := make([]int, 0, len(summary.StatusCodes))
	for code := range summary.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  HTTP %d: %d\n", code, summary.StatusCodes[code])
	}

	reasons := make([]string, 0, len(summary.Reasons))
	for reason := range summary.Reasons {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %s: %d\n", reason, summary.Reasons[model.Reason(reason)])
	}
}
