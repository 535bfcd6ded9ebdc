package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-cross/internal/pipeline"
)

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove artifacts older than the retention age",
		Long: `Cleanup runs one retention pass over the output directory and removes every
artifact or stale upload older than --max-age (default: output.max_age from
the config). Files the pipeline did not name are left alone.

Examples:
  image-cross cleanup
  image-cross cleanup --output-dir ./out --max-age 2h`,
		Args: cobra.NoArgs,
		RunE: runCleanupCmd,
	}

	cmd.Flags().Duration("max-age", 0, "Remove files older than this (e.g. 24h, 90m)")

	return cmd
}

func runCleanupCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	maxAge := cfg.Output.MaxAge
	if cmd.Flags().Changed("max-age") {
		if maxAge, err = cmd.Flags().GetDuration("max-age"); err != nil {
			return err
		}
		if maxAge < 0 {
			return fmt.Errorf("max-age must not be negative: %s", maxAge)
		}
	}

	removed, err := pipeline.CleanOldFiles(cfg.Output.Dir, maxAge, time.Now())
	for _, p := range removed {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "removed %d file(s) older than %s from %s\n", len(removed), maxAge, cfg.Output.Dir)
	return nil
}
