package issue

import (
	"fmt"
	"strings"
)

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Severities lists the valid severities in ascending order. Reporters rely on
// this order when rendering per-severity counts.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

func (s Severity) String() string {
	return string(s)
}

// Valid reports whether s is one of the three known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ParseSeverity parses a severity string case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return "", fmt.Errorf("invalid severity: %q", s)
	}
}
