package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ymajdalawi/dqwatch/internal/config"
	"github.com/ymajdalawi/dqwatch/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Generate a dqwatch.yaml through a guided wizard",
		Long: `Generate a dqwatch.yaml configuration file through an interactive wizard.

The wizard collects database connection details and email delivery settings.
Secrets are never written to the file; the generated configuration documents
the environment variables that carry them.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initRunE(cmd, args, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing dqwatch.yaml")

	return cmd
}

func initRunE(cmd *cobra.Command, args []string, force bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	spec, err := wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	content, err := wizard.RenderConfig(spec)
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath) //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s, %s and %s before running checks.\n",
		config.EnvPrimaryPassword, config.EnvSecondaryPassword, config.EnvEmailClientSecret) //nolint:errcheck
	return nil
}
