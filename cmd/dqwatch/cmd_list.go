package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ymajdalawi/dqwatch/internal/checks"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered data quality checks",
		Args:  cobra.NoArgs,
		RunE:  listRunE,
	}
}

func listRunE(cmd *cobra.Command, args []string) error {
	type row struct {
		name        string
		description string
	}

	var rows []row
	nameWidth := len("NAME")
	for _, name := range checks.Registered() {
		factory, ok := checks.Lookup(name)
		if !ok {
			continue
		}
		// Empty deps are fine here: checks only touch the database when run.
		chk, err := factory(checks.Deps{})
		if err != nil {
			return fmt.Errorf("creating check %q: %w", name, err)
		}
		rows = append(rows, row{name: chk.Name(), description: chk.Description()})
		if w := runewidth.StringWidth(chk.Name()); w > nameWidth {
			nameWidth = w
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", padRight("NAME", nameWidth), "DESCRIPTION")
	for _, r := range rows {
		fmt.Fprintf(out, "%s  %s\n", padRight(r.name, nameWidth), r.description)
	}
	return nil
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
