package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-cross/internal/catalog"
	"github.com/ironsheep/image-cross/internal/httpapi"
	"github.com/ironsheep/image-cross/internal/pipeline"
)

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the HTTP API: the image upload endpoint, artifact downloads and
the beverage catalog. A background sweeper removes artifacts older than
output.max_age every output.sweep_interval; an interval of 0 disables it.

Examples:
  # Listen on the configured address
  image-cross serve

  # Listen on all interfaces, port 8080, without the starter catalog
  image-cross serve --addr 0.0.0.0:8080 --no-seed`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", "", "Listen address (host:port)")
	cmd.Flags().Bool("no-seed", false, "Start with an empty beverage catalog")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		if cfg.Server.Addr, err = cmd.Flags().GetString("addr"); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	noSeed, err := cmd.Flags().GetBool("no-seed")
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var seed []catalog.Beverage
	if cfg.Server.SeedCatalog && !noSeed {
		seed = catalog.Seed()
	}
	store, err := catalog.NewStore(seed...)
	if err != nil {
		return err
	}

	api := httpapi.New(httpapi.Options{
		Processor: newProcessor(cfg, logger),
		Catalog:   store,
		Logger:    logger,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Output.SweepInterval > 0 {
		sweeper := &pipeline.Sweeper{
			Dir:      cfg.Output.Dir,
			MaxAge:   cfg.Output.MaxAge,
			Interval: cfg.Output.SweepInterval,
			Logger:   logger,
		}
		g.Go(func() error {
			return sweeper.Run(gctx)
		})
	}

	ready := make(chan struct{})
	g.Go(func() error {
		return httpapi.Run(gctx, httpapi.RunConfig{
			Server:          srv,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			Ready:           ready,
		})
	})
	go func() {
		select {
		case <-ready:
			logger.Info("server listening",
				"addr", cfg.Server.Addr,
				"output_dir", cfg.Output.Dir,
				"beverages", store.Len(),
			)
		case <-gctx.Done():
		}
	}()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
