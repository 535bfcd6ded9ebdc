package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-cross/internal/config"
	"github.com/ironsheep/image-cross/internal/logging"
	"github.com/ironsheep/image-cross/internal/pipeline"
)

// NewRootCmd creates the root command for image-cross.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image-cross",
		Short: "Draw crosses on photos and chart their color histograms",
		Long: `image-cross validates JPEG and PNG photos, draws a colored cross on a copy
(a plus sign for "vertical", a diagonal X for "horizontal") and renders
density-normalized RGB histograms of the original and the result.

Settings are read from the config file, then IMAGE_CROSS_* environment
variables, then command-line flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", config.DefaultPath(), "Path to the YAML config file")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "", "Log format: json or text")
	cmd.PersistentFlags().String("output-dir", "", "Directory for produced artifacts")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewCleanupCmd())
	cmd.AddCommand(NewBeverageCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config and applies the global
// flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dest *string
	}{
		{"log-level", &cfg.Log.Level},
		{"log-format", &cfg.Log.Format},
		{"output-dir", &cfg.Output.Dir},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		v, err := cmd.Flags().GetString(o.flag)
		if err != nil {
			return nil, err
		}
		*o.dest = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger installs the process logger. Logs always go to stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
}

func newProcessor(cfg *config.Config, logger *slog.Logger) *pipeline.Processor {
	return pipeline.New(pipeline.Config{
		OutputDir:   cfg.Output.Dir,
		Limits:      cfg.Limits,
		JPEGQuality: cfg.Output.JPEGQuality,
	}, logger)
}
