package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ymajdalawi/dqwatch/internal/discovery"
	"github.com/ymajdalawi/dqwatch/internal/issue"
)

var errBadSettings = errors.New("invalid erp_table")

func TestWriteTextCleanRun(t *testing.T) {
	outcome := testOutcome(t, nil)

	var b strings.Builder
	WriteText(&b, outcome)
	out := b.String()

	require.Contains(t, out, "Data Quality Report")
	require.Contains(t, out, "Date: 2026-03-14 09:30:00")
	require.Contains(t, out, "Checks run: 1")
	require.Contains(t, out, "Total issues: 0")
	require.Contains(t, out, "Execution mode: All checks executed")
	require.NotContains(t, out, "Severity")
	require.NotContains(t, out, "Discovery failures")
}

func TestWriteTextWithIssues(t *testing.T) {
	outcome := testOutcome(t, func(coll *issue.Collection) {
		require.NoError(t, coll.AddIssue("city-validation", issue.SeverityMedium, "Found 1 invalid city value"))
		require.NoError(t, coll.AddIssue("customer-name-mismatch", issue.SeverityHigh, "Error executing check",
			issue.WithDetails("query failed")))
	})

	var b strings.Builder
	WriteText(&b, outcome)
	out := b.String()

	require.Contains(t, out, "Total issues: 2")
	require.Contains(t, out, "medium      1")
	require.Contains(t, out, "high        1")
	require.Contains(t, out, "low         0")
	require.Contains(t, out, "City Validation")
	require.Contains(t, out, "Customer Name Mismatch")
	require.Contains(t, out, "[MEDIUM] Found 1 invalid city value")
	require.Contains(t, out, "[HIGH] Error executing check")
	require.Contains(t, out, "Details: query failed")
}

func TestWriteTextDiscoveryFailures(t *testing.T) {
	outcome := testOutcome(t, nil)
	outcome.DiscoveryFailures = []discovery.Failure{
		{Name: "erp-customer-sync", Err: errBadSettings},
	}

	var b strings.Builder
	WriteText(&b, outcome)
	out := b.String()

	require.Contains(t, out, "Discovery failures:")
	require.Contains(t, out, "erp-customer-sync: invalid erp_table")
}
