package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ymajdalawi/dqwatch/internal/checks"
	"github.com/ymajdalawi/dqwatch/internal/issue"
	"github.com/ymajdalawi/dqwatch/internal/runner"
)

// WriteText writes a plain-text report of the outcome, for console output.
// Unlike the email, it is also produced for clean runs and always includes
// discovery failures in their own section.
func WriteText(w io.Writer, outcome *runner.Outcome) {
	fmt.Fprintf(w, "Data Quality Report\n")
	fmt.Fprintf(w, "Date: %s\n", outcome.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Checks run: %d\n", len(outcome.ChecksRun))
	fmt.Fprintf(w, "Total issues: %d\n", outcome.Issues.Len())
	if outcome.ExecutionInfo != "" {
		fmt.Fprintf(w, "Execution mode: %s\n", outcome.ExecutionInfo)
	}

	if !outcome.Issues.IsEmpty() {
		fmt.Fprintln(w)
		writeSeverityTable(w, outcome.Issues)

		for _, group := range outcome.Issues.GroupByCheck() {
			name := checks.DisplayName(group.CheckName)
			fmt.Fprintf(w, "\n%s\n%s\n", name, strings.Repeat("-", len(name)))
			for _, iss := range group.Issues {
				fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(iss.Severity.String()), iss.Message)
				if iss.Details != "" {
					fmt.Fprintf(w, "    Details: %s\n", iss.Details)
				}
			}
		}
	}

	if len(outcome.DiscoveryFailures) > 0 {
		fmt.Fprintf(w, "\nDiscovery failures:\n")
		for _, f := range outcome.DiscoveryFailures {
			fmt.Fprintf(w, "  - %s: %v\n", f.Name, f.Err)
		}
	}
}

func writeSeverityTable(w io.Writer, issues *issue.Collection) {
	const colSeverity = 10
	counts := issues.CountBySeverity()

	fmt.Fprintf(w, "%s  %s\n", padRight("Severity", colSeverity), "Count")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", colSeverity+7))
	for _, sev := range issue.Severities {
		fmt.Fprintf(w, "%s  %d\n", padRight(sev.String(), colSeverity), counts[sev])
	}
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
