// Package report renders run outcomes for humans and delivers the email
// alert through Microsoft Graph.
package report

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/ymajdalawi/dqwatch/internal/checks"
	"github.com/ymajdalawi/dqwatch/internal/config"
	"github.com/ymajdalawi/dqwatch/internal/issue"
	"github.com/ymajdalawi/dqwatch/internal/runner"
)

// Limits caps how much structured data the report renders per issue.
type Limits struct {
	MaxListItems int
	MaxTableRows int
}

// LimitsFromConfig builds Limits from the report config section.
func LimitsFromConfig(cfg config.ReportConfig) Limits {
	return Limits{
		MaxListItems: cfg.MaxListItems,
		MaxTableRows: cfg.MaxTableRows,
	}
}

const htmlStyle = `
		body { font-family: Arial, sans-serif; }
		h1 { color: #000000; }
		h2 { color: #1976d2; margin-top: 20px; }
		.issue {
			background-color: #fff3cd;
			border-left: 4px solid #ffc107;
			padding: 10px;
			margin: 10px 0;
		}
		.severity-high { border-left-color: #d32f2f; background-color: #ffebee; }
		.severity-medium { border-left-color: #ff9800; background-color: #fff3e0; }
		.severity-low { border-left-color: #4caf50; background-color: #e8f5e9; }
		.details { margin-top: 5px; color: #333; font-size: 0.9em; }
		.extra-data { margin-top: 10px; padding: 10px; background-color: #f5f5f5; border-radius: 4px; }
		.extra-data-section { margin-top: 10px; }
		.extra-data-title { font-weight: bold; color: #1976d2; margin-bottom: 5px; }
		.extra-data-list { margin: 5px 0; padding-left: 20px; }
		.extra-data-list li { margin: 3px 0; }
		.extra-data-table { width: 100%; border-collapse: collapse; margin: 10px 0; font-size: 0.9em; }
		.extra-data-table th { background-color: #1976d2; color: white; padding: 8px; text-align: left; }
		.extra-data-table td { padding: 6px 8px; border-bottom: 1px solid #ddd; }
		.truncation-notice { margin-top: 5px; font-style: italic; color: #666; font-size: 0.85em; }
		.execution-info { color: #999; font-size: 0.85em; font-style: italic; margin-top: 5px; }
`

// RenderHTML formats the outcome as the HTML email body. Issues appear
// grouped by check in execution order.
func RenderHTML(outcome *runner.Outcome, limits Limits) string {
	if outcome.Issues.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("<html>\n<head>\n<style>")
	b.WriteString(htmlStyle)
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString("<h1>Data Quality Alert Report</h1>\n")
	fmt.Fprintf(&b, "<p><strong>Date:</strong> %s</p>\n", outcome.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "<p><strong>Total Issues Found:</strong> %d</p>\n", outcome.Issues.Len())
	if outcome.ExecutionInfo != "" {
		fmt.Fprintf(&b, "<p class=\"execution-info\">Execution mode: %s</p>\n", html.EscapeString(outcome.ExecutionInfo))
	}

	for _, group := range outcome.Issues.GroupByCheck() {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(checks.DisplayName(group.CheckName)))
		for _, iss := range group.Issues {
			fmt.Fprintf(&b, "<div class=\"issue severity-%s\">\n", iss.Severity)
			fmt.Fprintf(&b, "<strong>[%s]</strong> %s\n", strings.ToUpper(iss.Severity.String()), html.EscapeString(iss.Message))
			if iss.Details != "" {
				fmt.Fprintf(&b, "<div class=\"details\">%s</div>\n", html.EscapeString(iss.Details))
			}
			if iss.HasExtra() {
				writeExtraData(&b, iss.Extra, limits)
			}
			b.WriteString("</div>\n")
		}
	}

	b.WriteString("<hr style=\"margin-top: 30px; border: none; border-top: 1px solid #ddd;\">\n")
	b.WriteString("<p style=\"color: #666; font-size: 0.9em; margin-top: 20px;\">dqwatch</p>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeExtraData(b *strings.Builder, extra *issue.ExtraData, limits Limits) {
	b.WriteString("<div class=\"extra-data\">\n")
	if len(extra.InvalidValues) > 0 {
		writeList(b, "Invalid Values", extra.InvalidValues, limits.MaxListItems)
	}
	if len(extra.Records) > 0 {
		writeTable(b, extra.Records, limits.MaxTableRows)
	}
	if len(extra.Summary) > 0 {
		writeSummary(b, extra.Summary)
	}
	b.WriteString("</div>\n")
}

func writeList(b *strings.Builder, title string, items []any, maxItems int) {
	b.WriteString("<div class=\"extra-data-section\">\n")
	fmt.Fprintf(b, "<div class=\"extra-data-title\">%s:</div>\n", html.EscapeString(title))
	b.WriteString("<ul class=\"extra-data-list\">\n")

	display := items
	if maxItems > 0 && len(display) > maxItems {
		display = display[:maxItems]
	}
	for _, item := range display {
		fmt.Fprintf(b, "<li>%s</li>\n", html.EscapeString(fmt.Sprint(item)))
	}
	b.WriteString("</ul>\n")

	if len(items) > len(display) {
		fmt.Fprintf(b, "<div class=\"truncation-notice\">Showing first %d of %d items</div>\n", len(display), len(items))
	}
	b.WriteString("</div>\n")
}

func writeTable(b *strings.Builder, records []issue.Record, maxRows int) {
	display := records
	if maxRows > 0 && len(display) > maxRows {
		display = display[:maxRows]
	}
	headers := tableHeaders(display)

	b.WriteString("<div class=\"extra-data-section\">\n")
	b.WriteString("<div class=\"extra-data-title\">Detailed Records:</div>\n")
	b.WriteString("<table class=\"extra-data-table\">\n<thead><tr>")
	for _, h := range headers {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead>\n<tbody>\n")

	for _, record := range display {
		b.WriteString("<tr>")
		for _, h := range headers {
			value := ""
			if v, ok := record[h]; ok && v != nil {
				value = fmt.Sprint(v)
			}
			fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(value))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody></table>\n")

	if len(records) > len(display) {
		fmt.Fprintf(b, "<div class=\"truncation-notice\">Showing first %d of %d records</div>\n", len(display), len(records))
	}
	b.WriteString("</div>\n")
}

// tableHeaders returns the sorted union of column names over the displayed
// rows. Rows need not share identical keys, and Go map iteration would not be
// stable anyway.
func tableHeaders(records []issue.Record) []string {
	seen := map[string]bool{}
	var headers []string
	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	sort.Strings(headers)
	return headers
}

func writeSummary(b *strings.Builder, summary map[string]any) {
	labels := make([]string, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	b.WriteString("<div class=\"extra-data-section\">\n")
	b.WriteString("<div class=\"extra-data-title\">Summary:</div>\n")
	b.WriteString("<ul class=\"extra-data-list\">\n")
	for _, label := range labels {
		fmt.Fprintf(b, "<li><strong>%s:</strong> %s</li>\n",
			html.EscapeString(label), html.EscapeString(fmt.Sprint(summary[label])))
	}
	b.WriteString("</ul>\n</div>\n")
}
