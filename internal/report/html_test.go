package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ymajdalawi/dqwatch/internal/config"
	"github.com/ymajdalawi/dqwatch/internal/issue"
	"github.com/ymajdalawi/dqwatch/internal/runner"
)

func testOutcome(t *testing.T, build func(*issue.Collection)) *runner.Outcome {
	t.Helper()

	coll := issue.NewCollection()
	if build != nil {
		build(coll)
	}
	return &runner.Outcome{
		Timestamp:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ChecksRun:     []string{"city-validation"},
		ExecutionInfo: "All checks executed",
		Issues:        coll,
	}
}

func TestRenderHTMLEmptyCollection(t *testing.T) {
	outcome := testOutcome(t, nil)
	require.Equal(t, "", RenderHTML(outcome, Limits{MaxListItems: 10, MaxTableRows: 10}))
}

func TestRenderHTMLBasic(t *testing.T) {
	outcome := testOutcome(t, func(coll *issue.Collection) {
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityMedium, "Found 2 invalid city values"))
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityHigh, "Error executing check",
			issue.WithDetails("dial tcp: connection refused")))
	})

	out := RenderHTML(outcome, Limits{MaxListItems: 10, MaxTableRows: 10})

	require.Contains(t, out, "<h1>Data Quality Alert Report</h1>")
	require.Contains(t, out, "<strong>Date:</strong> 2026-03-14 09:30:00")
	require.Contains(t, out, "<strong>Total Issues Found:</strong> 2")
	require.Contains(t, out, "Execution mode: All checks executed")
	require.Contains(t, out, "<h2>City Validation</h2>")
	require.Contains(t, out, `class="issue severity-medium"`)
	require.Contains(t, out, `class="issue severity-high"`)
	require.Contains(t, out, "<strong>[MEDIUM]</strong> Found 2 invalid city values")
	require.Contains(t, out, `<div class="details">dial tcp: connection refused</div>`)
	require.Contains(t, out, ">dqwatch</p>")
}

func TestRenderHTMLGroupsByCheckInOrder(t *testing.T) {
	outcome := testOutcome(t, func(coll *issue.Collection) {
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityLow, "first"))
		require.NoError(t, coll.AddIssue("missing-product-images", issue.SeverityLow, "second"))
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityLow, "third"))
	})

	out := RenderHTML(outcome, Limits{})

	cityIdx := strings.Index(out, "<h2>City Validation</h2>")
	imagesIdx := strings.Index(out, "<h2>Missing Product Images</h2>")
	require.NotEqual(t, -1, cityIdx)
	require.NotEqual(t, -1, imagesIdx)
	require.Less(t, cityIdx, imagesIdx)
	require.Equal(t, 1, strings.Count(out, "<h2>City Validation</h2>"))
}

func TestRenderHTMLEscapesUserData(t *testing.T) {
	outcome := testOutcome(t, func(coll *issue.Collection) {
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityMedium,
			`city contains <script>alert("x")</script>`,
			issue.WithExtra(&issue.ExtraData{
				InvalidValues: []any{"<b>bold</b>"},
				Records:       []issue.Record{{"city": "a&b"}},
			})))
	})

	out := RenderHTML(outcome, Limits{MaxListItems: 10, MaxTableRows: 10})

	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
	require.Contains(t, out, "<li>&lt;b&gt;bold&lt;/b&gt;</li>")
	require.Contains(t, out, "<td>a&amp;b</td>")
}

func TestRenderHTMLListTruncation(t *testing.T) {
	outcome := testOutcome(t, func(coll *issue.Collection) {
		values := make([]any, 15)
		for i := range values {
			values[i] = fmt.Sprintf("value-%02d", i)
		}
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityMedium, "invalid values",
			issue.WithExtra(&issue.ExtraData{InvalidValues: values})))
	})

	out := RenderHTML(outcome, Limits{MaxListItems: 10, MaxTableRows: 10})

	require.Contains(t, out, "Invalid Values:")
	require.Contains(t, out, "<li>value-09</li>")
	require.NotContains(t, out, "<li>value-10</li>")
	require.Contains(t, out, "Showing first 10 of 15 items")
}

func TestRenderHTMLTableTruncationAndHeaders(t *testing.T) {
	outcome := testOutcome(t, func(coll *issue.Collection) {
		records := make([]issue.Record, 12)
		for i := range records {
			records[i] = issue.Record{"entity_id": i, "city": "x"}
		}
		// one row carries an extra column
		records[0]["region"] = "north"
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityMedium, "records",
			issue.WithExtra(&issue.ExtraData{Records: records})))
	})

	out := RenderHTML(outcome, Limits{MaxListItems: 10, MaxTableRows: 10})

	require.Contains(t, out, "Detailed Records:")
	// headers are the sorted union of displayed row keys
	require.Contains(t, out, "<th>city</th><th>entity_id</th><th>region</th>")
	require.Contains(t, out, "Showing first 10 of 12 records")
	// missing values render as empty cells, not "<nil>"
	require.NotContains(t, out, "&lt;nil&gt;")
}

func TestRenderHTMLSummarySorted(t *testing.T) {
	outcome := testOutcome(t, func(coll *issue.Collection) {
		require.NoError(t, coll.AddIssue("missing-product-images", issue.SeverityMedium, "summary",
			issue.WithExtra(&issue.ExtraData{Summary: map[string]any{
				"Total products": 42,
				"By attribute":   "image=3, thumbnail=1",
			}})))
	})

	out := RenderHTML(outcome, Limits{})

	require.Contains(t, out, "Summary:")
	byAttr := strings.Index(out, "<li><strong>By attribute:</strong> image=3, thumbnail=1</li>")
	total := strings.Index(out, "<li><strong>Total products:</strong> 42</li>")
	require.NotEqual(t, -1, byAttr)
	require.NotEqual(t, -1, total)
	require.Less(t, byAttr, total)
}

func TestLimitsFromConfig(t *testing.T) {
	cfg := config.ReportConfig{MaxListItems: 5, MaxTableRows: 7}
	require.Equal(t, Limits{MaxListItems: 5, MaxTableRows: 7}, LimitsFromConfig(cfg))
}
