package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/unclesp1d3r/containercrack/lib/progress"
)

// Paths returns the target paths of rep in sorted order.
func (rep Report) Paths() []string {
	paths := make([]string, 0, len(rep))
	for p := range rep {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return paths
}

// FormatSummary renders stats and the per-target lists as plain text.
func FormatSummary(stats Stats, rep Report) string {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth) + "\n"
	total := float64(stats.Total)

	b.WriteString(rule)
	b.WriteString("SUMMARY\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Total files: %d\n", stats.Total)
	fmt.Fprintf(&b, "Cracked: %d (%s)\n", stats.Successful, progress.CalculatePercentage(float64(stats.Successful), total))
	fmt.Fprintf(&b, "Failed: %d (%s)\n", stats.Failed(), progress.CalculatePercentage(float64(stats.Failed()), total))
	fmt.Fprintf(&b, "  Not found: %d\n", stats.NotFound)
	fmt.Fprintf(&b, "  Errors: %d\n", stats.Errored)
	fmt.Fprintf(&b, "  Interrupted: %d\n", stats.Interrupted)
	fmt.Fprintf(&b, "Total attempts: %s\n", humanize.Comma(int64(stats.TotalAttempts))) //nolint:gosec // Attempt counts stay far below MaxInt64
	fmt.Fprintf(&b, "Total time: %s\n", progress.FormatDuration(stats.TotalElapsed))
	if stats.CumulativeElapsed > stats.TotalElapsed {
		fmt.Fprintf(&b, "Attack time across workers: %s\n", progress.FormatDuration(stats.CumulativeElapsed))
	}
	if stats.TotalElapsed > 0 {
		fmt.Fprintf(&b, "Average speed: %.2f passwords/sec\n", stats.AverageRate)
	}
	b.WriteString(rule)

	var cracked, notFound, errored, interrupted []string
	for _, path := range rep.Paths() {
		r := rep[path]
		switch {
		case r.Success:
			cracked = append(cracked, fmt.Sprintf("%s: %s", r.Filename, *r.Password))
		case r.Error != nil:
			line := fmt.Sprintf("%s (%s)", r.Filename, *r.Error)
			if r.ErrorDetail != "" {
				line = fmt.Sprintf("%s (%s: %s)", r.Filename, *r.Error, r.ErrorDetail)
			}
			errored = append(errored, line)
		case r.Interrupted:
			interrupted = append(interrupted, fmt.Sprintf("%s (resume with --start-line %d)", r.Filename, r.ResumeLine))
		default:
			notFound = append(notFound, r.Filename)
		}
	}

	writeSection(&b, "CRACKED FILES", cracked)
	writeSection(&b, "NOT FOUND", notFound)
	writeSection(&b, "ERRORS", errored)
	writeSection(&b, "INTERRUPTED", interrupted)

	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, l := range lines {
		fmt.Fprintf(b, "  %s\n", l)
	}
}
