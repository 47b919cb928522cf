// Package runner executes discovered checks one at a time and merges their
// findings into the single collection handed to the reporter.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ymajdalawi/dqwatch/internal/checks"
	"github.com/ymajdalawi/dqwatch/internal/discovery"
	"github.com/ymajdalawi/dqwatch/internal/issue"
)

// Outcome is the aggregate artifact of one run.
type Outcome struct {
	Timestamp  time.Time
	DurationMs int64
	// ChecksRun lists the names of the checks that were executed, in order.
	ChecksRun []string
	// ExecutionInfo describes which checks ran, for the report footer.
	ExecutionInfo string
	// Issues holds every finding in execution order, including synthetic
	// issues for checks that failed.
	Issues *issue.Collection
	// DiscoveryFailures lists checks that could not be instantiated. They are
	// surfaced in logs and console output, never in the emailed issue list.
	DiscoveryFailures []discovery.Failure
}

// NeedsReport reports whether the reporter should be invoked. A run with zero
// issues produces no email.
func (o *Outcome) NeedsReport() bool {
	return !o.Issues.IsEmpty()
}

// Runner executes checks sequentially in discovery order.
type Runner struct {
	includes []string
	excludes []string
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCheckFilters limits the run to the named checks.
func WithCheckFilters(names ...string) Option {
	return func(r *Runner) {
		r.includes = names
	}
}

// WithExcludeFilters runs every check except the named ones.
func WithExcludeFilters(names ...string) Option {
	return func(r *Runner) {
		r.excludes = names
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run filters and executes the discovered checks. A check that returns an
// error or panics yields one synthetic high-severity issue attributed to it
// and the run continues; every selected check is visited exactly once.
func (r *Runner) Run(ctx context.Context, discovered []checks.Check, discoveryFailures []discovery.Failure) (*Outcome, error) {
	if len(r.includes) > 0 && len(r.excludes) > 0 {
		return nil, fmt.Errorf("cannot use include and exclude filters at the same time")
	}

	start := r.now()
	for _, f := range discoveryFailures {
		slog.Error("check failed to load", "check", f.Name, "error", f.Err)
	}

	selected, info := filterChecks(discovered, r.includes, r.excludes)

	acc := issue.NewCollection()
	checksRun := make([]string, 0, len(selected))
	for _, chk := range selected {
		name := chk.Name()
		slog.Info("running check", "check", name)
		checksRun = append(checksRun, name)

		result, err := runCheck(ctx, chk)
		if err != nil {
			slog.Error("check execution failed", "check", name, "error", err)
			if addErr := acc.AddIssue(name, issue.SeverityHigh,
				"Error executing check",
				issue.WithDetails(err.Error()),
			); addErr != nil {
				return nil, addErr
			}
			continue
		}

		if result.IsEmpty() {
			slog.Info("no issues found", "check", name)
		} else {
			slog.Info("issues found", "check", name, "count", result.Len())
		}
		acc.Extend(result)
	}

	return &Outcome{
		Timestamp:         start,
		DurationMs:        r.now().Sub(start).Milliseconds(),
		ChecksRun:         checksRun,
		ExecutionInfo:     info,
		Issues:            acc,
		DiscoveryFailures: discoveryFailures,
	}, nil
}

// runCheck invokes one check, converting a panic into an error so a broken
// check cannot abort the whole run. A nil collection with a nil error is
// normalized to an empty collection.
func runCheck(ctx context.Context, chk checks.Check) (result *issue.Collection, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	result, err = chk.Run(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = issue.NewCollection()
	}
	return result, nil
}

// filterChecks applies include or exclude filters. Names resolve
// case-insensitively; unresolved names are logged and skipped. The returned
// info string describes the execution mode for the report footer.
func filterChecks(all []checks.Check, includes, excludes []string) ([]checks.Check, string) {
	switch {
	case len(includes) > 0:
		resolved, notFound := resolveNames(all, includes)
		if len(notFound) > 0 {
			slog.Warn("could not find checks", "names", strings.Join(notFound, ", "))
		}
		var selected []checks.Check
		for _, chk := range all {
			if resolved[chk.Name()] {
				selected = append(selected, chk)
			}
		}
		if len(selected) == 0 {
			return nil, fmt.Sprintf("No valid checks found from: %s", strings.Join(includes, ", "))
		}
		return selected, fmt.Sprintf("Selected checks executed: %s", displayNames(resolved, all))

	case len(excludes) > 0:
		resolved, notFound := resolveNames(all, excludes)
		if len(notFound) > 0 {
			slog.Warn("could not find checks to exclude", "names", strings.Join(notFound, ", "))
		}
		var selected []checks.Check
		for _, chk := range all {
			if !resolved[chk.Name()] {
				selected = append(selected, chk)
			}
		}
		if len(resolved) == 0 {
			return selected, "All checks executed"
		}
		return selected, fmt.Sprintf("All checks executed except: %s", displayNames(resolved, all))

	default:
		return all, "All checks executed"
	}
}

func resolveNames(all []checks.Check, names []string) (map[string]bool, []string) {
	resolved := make(map[string]bool)
	var notFound []string
	for _, name := range names {
		found := false
		for _, chk := range all {
			if strings.EqualFold(chk.Name(), name) {
				resolved[chk.Name()] = true
				found = true
				break
			}
		}
		if !found {
			notFound = append(notFound, name)
		}
	}
	return resolved, notFound
}

// displayNames renders the resolved names in discovery order.
func displayNames(resolved map[string]bool, all []checks.Check) string {
	var parts []string
	for _, chk := range all {
		if resolved[chk.Name()] {
			parts = append(parts, checks.DisplayName(chk.Name()))
		}
	}
	return strings.Join(parts, ", ")
}
