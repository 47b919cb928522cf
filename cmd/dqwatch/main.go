package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // No data quality issues found
	ExitIssuesFound = 1 // One or more checks reported issues
	ExitError       = 2 // Configuration or runtime error
)

// IssuesFoundError indicates that the run completed successfully,
// but one or more checks reported data quality issues.
type IssuesFoundError struct {
	Count int
}

func (e *IssuesFoundError) Error() string {
	return fmt.Sprintf("found %d data quality issue(s)", e.Count)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var issuesErr *IssuesFoundError
		if errors.As(err, &issuesErr) {
			os.Exit(ExitIssuesFound)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
