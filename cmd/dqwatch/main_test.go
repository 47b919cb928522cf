package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssuesFoundError(t *testing.T) {
	err := &IssuesFoundError{Count: 3}
	assert.Equal(t, "found 3 data quality issue(s)", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{
			name:     "IssuesFoundError",
			err:      &IssuesFoundError{Count: 1},
			wantType: "IssuesFoundError",
		},
		{
			name:     "regular error",
			err:      errors.New("config error"),
			wantType: "other",
		},
		{
			name:     "wrapped IssuesFoundError",
			err:      errors.Join(&IssuesFoundError{Count: 2}, errors.New("additional context")),
			wantType: "IssuesFoundError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var issuesErr *IssuesFoundError
			isIssues := errors.As(tt.err, &issuesErr)

			if tt.wantType == "IssuesFoundError" {
				assert.True(t, isIssues, "expected error to be detected as IssuesFoundError")
			} else {
				assert.False(t, isIssues, "expected error NOT to be detected as IssuesFoundError")
			}
		})
	}
}
