package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-cross/internal/server"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Mcp serves the Model Context Protocol over stdio so MCP clients can validate
images, draw crosses, inspect histograms and clean up artifacts.

stdout carries the protocol; logs are written to stderr.`,
		Args: cobra.NoArgs,
		RunE: runMCPCmd,
	}
}

func runMCPCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Processor: newProcessor(cfg, logger),
		Logger:    logger,
		Version:   getVersion(),
		MaxAge:    cfg.Output.MaxAge,
	})
	logger.Debug("mcp server starting", "version", getVersion(), "output_dir", cfg.Output.Dir)
	return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
