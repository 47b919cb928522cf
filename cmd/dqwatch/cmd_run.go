package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ymajdalawi/dqwatch/internal/checks"
	"github.com/ymajdalawi/dqwatch/internal/config"
	"github.com/ymajdalawi/dqwatch/internal/dbconn"
	"github.com/ymajdalawi/dqwatch/internal/discovery"
	"github.com/ymajdalawi/dqwatch/internal/report"
	"github.com/ymajdalawi/dqwatch/internal/runner"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run data quality checks and report issues",
		Long: `Run the configured data quality checks against the target databases.

All registered checks run by default, minus any listed under checks.disabled
in dqwatch.yaml. Use --checks to run only specific checks, or --exclude to
skip specific checks; the two flags cannot be combined.

When issues are found, a consolidated HTML report is emailed to the
configured recipients and the command exits with code 1. A clean run sends
no email and exits 0.`,
		Args:          cobra.NoArgs,
		RunE:          runRunE,
		SilenceErrors: true,
	}
	cmd.Flags().StringSlice("checks", nil, "Run only these checks (comma-separated names)")
	cmd.Flags().StringSlice("exclude", nil, "Run all checks except these (comma-separated names)")
	cmd.Flags().String("format", "text", "Output format: text | json")
	cmd.Flags().Bool("no-email", false, "Skip email delivery even when issues are found")
	return cmd
}

// --- JSON output structs ---

type runJSONReport struct {
	Timestamp         string          `json:"timestamp"`
	DurationMs        int64           `json:"durationMs"`
	ChecksRun         []string        `json:"checksRun"`
	ExecutionInfo     string          `json:"executionInfo"`
	TotalIssues       int             `json:"totalIssues"`
	CountBySeverity   map[string]int  `json:"countBySeverity"`
	Issues            []issueJSON     `json:"issues"`
	DiscoveryFailures []discoveryJSON `json:"discoveryFailures,omitempty"`
	EmailSent         bool            `json:"emailSent"`
}

type issueJSON struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
}

type discoveryJSON struct {
	Check string `json:"check"`
	Error string `json:"error"`
}

func runRunE(cmd *cobra.Command, args []string) error {
	includes, err := cmd.Flags().GetStringSlice("checks")
	if err != nil {
		return err
	}
	excludes, err := cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", format)
	}
	noEmail, err := cmd.Flags().GetBool("no-email")
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	provider := dbconn.NewProvider(cfg.Databases)
	defer provider.Close() //nolint:errcheck

	discovered, failures := discovery.Discover(func(name string) checks.Deps {
		return checks.Deps{
			DB:       provider,
			Settings: cfg.Checks.SettingsFor(name),
		}
	})

	// Config-disabled checks are skipped unless --checks names them
	// explicitly.
	if len(includes) == 0 {
		for _, name := range cfg.Checks.Disabled {
			slog.Info("check disabled by config", "check", name)
			excludes = append(excludes, name)
		}
	}

	var opts []runner.Option
	if len(includes) > 0 {
		opts = append(opts, runner.WithCheckFilters(includes...))
	}
	if len(excludes) > 0 {
		opts = append(opts, runner.WithExcludeFilters(excludes...))
	}

	outcome, err := runner.New(opts...).Run(cmd.Context(), discovered, failures)
	if err != nil {
		return err
	}

	emailSent := false
	if outcome.NeedsReport() && !noEmail {
		if cfg.Email.Configured() {
			mailer, err := report.NewMailer(cfg.Email, report.LimitsFromConfig(cfg.Report))
			if err != nil {
				return err
			}
			if err := mailer.Send(cmd.Context(), outcome); err != nil {
				return err
			}
			emailSent = true
			slog.Info("alert email sent", "recipients", len(cfg.Email.Recipients), "issues", outcome.Issues.Len())
		} else {
			slog.Warn("issues found but no email settings configured, skipping delivery")
		}
	}

	switch format {
	case "json":
		if err := writeJSONReport(cmd, outcome, emailSent); err != nil {
			return err
		}
	default:
		report.WriteText(cmd.OutOrStdout(), outcome)
	}

	if outcome.NeedsReport() {
		return &IssuesFoundError{Count: outcome.Issues.Len()}
	}
	return nil
}

func writeJSONReport(cmd *cobra.Command, outcome *runner.Outcome, emailSent bool) error {
	out := runJSONReport{
		Timestamp:       outcome.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		DurationMs:      outcome.DurationMs,
		ChecksRun:       outcome.ChecksRun,
		ExecutionInfo:   outcome.ExecutionInfo,
		TotalIssues:     outcome.Issues.Len(),
		CountBySeverity: map[string]int{},
		Issues:          []issueJSON{},
		EmailSent:       emailSent,
	}
	for sev, count := range outcome.Issues.CountBySeverity() {
		out.CountBySeverity[sev.String()] = count
	}
	for _, iss := range outcome.Issues.Issues() {
		out.Issues = append(out.Issues, issueJSON{
			Check:    iss.CheckName,
			Severity: iss.Severity.String(),
			Message:  iss.Message,
			Details:  iss.Details,
		})
	}
	for _, f := range outcome.DiscoveryFailures {
		out.DiscoveryFailures = append(out.DiscoveryFailures, discoveryJSON{
			Check: f.Name,
			Error: f.Err.Error(),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
