// Package issue defines the finding model shared by all data quality checks:
// a validated Issue record and an ordered, mergeable Collection with the
// aggregation queries the reporter needs.
package issue

import (
	"fmt"
	"strings"
)

// Record is one result row attached to an issue, keyed by column name. Rows
// belonging to the same issue need not share identical keys.
type Record = map[string]any

// ExtraData carries optional structured payloads for detailed reporting. The
// reporter renders InvalidValues as a list, Records as a table and Summary as
// key/value pairs.
type ExtraData struct {
	InvalidValues []any
	Records       []Record
	Summary       map[string]any
}

// IsZero reports whether no payload is present.
func (e *ExtraData) IsZero() bool {
	return e == nil || (len(e.InvalidValues) == 0 && len(e.Records) == 0 && len(e.Summary) == 0)
}

// Issue is a single data quality finding. Issues are constructed through
// Collection.AddIssue so the validation rules always apply, and are never
// mutated once appended.
type Issue struct {
	// CheckName identifies the check that produced the finding.
	CheckName string
	Severity  Severity
	// Message is a brief description of the finding.
	Message string
	// Details optionally expands on Message.
	Details string
	// Extra optionally carries structured data for the report.
	Extra *ExtraData
}

func (i *Issue) validate() error {
	if i.CheckName == "" {
		return fmt.Errorf("check name is required")
	}
	if !i.Severity.Valid() {
		return fmt.Errorf("invalid severity: %q", i.Severity)
	}
	if strings.TrimSpace(i.Message) == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// HasExtra reports whether the issue carries a non-empty structured payload.
func (i *Issue) HasExtra() bool {
	return !i.Extra.IsZero()
}

// IssueOption sets an optional field on a new issue.
type IssueOption func(*Issue)

// WithDetails attaches expanded detail text to the issue.
func WithDetails(details string) IssueOption {
	return func(i *Issue) { i.Details = details }
}

// WithExtra attaches a structured payload to the issue.
func WithExtra(extra *ExtraData) IssueOption {
	return func(i *Issue) { i.Extra = extra }
}

// Collection is an ordered container of issues. Insertion order is meaningful:
// it reflects check execution order, then AddIssue order within a check.
type Collection struct {
	issues []*Issue
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// AddIssue validates and appends a new issue. A validation failure (unknown
// severity, blank message) is a bug in the calling check, not a data quality
// finding: the error is returned and nothing is appended.
func (c *Collection) AddIssue(checkName string, severity Severity, message string, opts ...IssueOption) error {
	iss := &Issue{
		CheckName: checkName,
		Severity:  severity,
		Message:   message,
	}
	for _, opt := range opts {
		opt(iss)
	}
	if err := iss.validate(); err != nil {
		return err
	}
	c.issues = append(c.issues, iss)
	return nil
}

// Len returns the number of issues in the collection.
func (c *Collection) Len() int {
	return len(c.issues)
}

// IsEmpty reports whether the collection holds no issues.
func (c *Collection) IsEmpty() bool {
	return len(c.issues) == 0
}

// Issues returns the issues in insertion order. The returned slice is owned by
// the collection and must not be modified.
func (c *Collection) Issues() []*Issue {
	return c.issues
}

// FilterBySeverity returns a new collection containing only issues of the
// given severity, preserving relative order. The receiver is unmodified.
func (c *Collection) FilterBySeverity(severity Severity) *Collection {
	filtered := NewCollection()
	for _, iss := range c.issues {
		if iss.Severity == severity {
			filtered.issues = append(filtered.issues, iss)
		}
	}
	return filtered
}

// Group holds the issues of one check, in insertion order.
type Group struct {
	CheckName string
	Issues    []*Issue
}

// GroupByCheck groups issues by check name. Groups appear in first-seen order
// of the check names; a slice keeps that order, which a Go map would not.
func (c *Collection) GroupByCheck() []Group {
	index := make(map[string]int)
	var groups []Group
	for _, iss := range c.issues {
		i, ok := index[iss.CheckName]
		if !ok {
			i = len(groups)
			index[iss.CheckName] = i
			groups = append(groups, Group{CheckName: iss.CheckName})
		}
		groups[i].Issues = append(groups[i].Issues, iss)
	}
	return groups
}

// CountBySeverity counts issues per severity. All three severities are present
// in the result even when zero.
func (c *Collection) CountBySeverity() map[Severity]int {
	counts := map[Severity]int{
		SeverityLow:    0,
		SeverityMedium: 0,
		SeverityHigh:   0,
	}
	for _, iss := range c.issues {
		counts[iss.Severity]++
	}
	return counts
}

// Summary aggregates statistics over a collection.
type Summary struct {
	TotalIssues  int
	BySeverity   map[Severity]int
	ByCheck      map[string]int
	UniqueChecks int
}

// Summary returns aggregate statistics for the collection.
func (c *Collection) Summary() Summary {
	byCheck := make(map[string]int)
	for _, iss := range c.issues {
		byCheck[iss.CheckName]++
	}
	return Summary{
		TotalIssues:  len(c.issues),
		BySeverity:   c.CountBySeverity(),
		ByCheck:      byCheck,
		UniqueChecks: len(byCheck),
	}
}

// Extend appends all issues of other after the receiver's issues, preserving
// other's order. The receiver is returned for chaining; other is unmodified.
func (c *Collection) Extend(other *Collection) *Collection {
	if other != nil {
		c.issues = append(c.issues, other.issues...)
	}
	return c
}

func (c *Collection) String() string {
	return fmt.Sprintf("Collection(%d issues)", len(c.issues))
}
