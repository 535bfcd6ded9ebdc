// Package pipeline runs one upload through validation, cross rendering and
// histogram rendering, and owns the artifact files that result.
//
// A Processor produces four artifacts per successful request, all sharing a
// unique base name in the output directory:
//
//	<base>_original.jpg        validated image re-encoded as JPEG
//	<base>_processed.jpg       the same image with the cross drawn on it
//	<base>_hist_original.png   histogram chart of the original
//	<base>_hist_processed.png  histogram chart of the processed image
//
// If any step fails, every file created during the call is removed and no
// partial result is returned.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-cross/internal/imaging"
	"github.com/ironsheep/image-cross/internal/logging"
)

// Config controls where artifacts are written and how uploads are checked.
type Config struct {
	OutputDir   string
	Limits      imaging.Limits
	JPEGQuality int
}

// Artifacts holds the paths of the files produced for one request.
type Artifacts struct {
	Original           string `json:"original"`
	Processed          string `json:"processed"`
	HistogramOriginal  string `json:"histogram_original"`
	HistogramProcessed string `json:"histogram_processed"`
}

// Paths returns the artifact paths in a fixed order.
func (a Artifacts) Paths() []string {
	return []string{a.Original, a.Processed, a.HistogramOriginal, a.HistogramProcessed}
}

// Result describes a successfully processed image.
type Result struct {
	ID        string         `json:"id"`
	Artifacts Artifacts      `json:"artifacts"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Format    imaging.Format `json:"format"`
	Thickness int            `json:"thickness"`
	CrossType string         `json:"cross_type"`
	Color     string         `json:"color"`
}

// Processor runs uploads through the image pipeline. It holds no per-request
// state and is safe for concurrent use.
type Processor struct {
	cfg    Config
	logger *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// New creates a Processor. Zero-valued limits fall back to
// imaging.DefaultLimits.
func New(cfg Config, logger *slog.Logger) *Processor {
	defaults := imaging.DefaultLimits()
	if cfg.Limits.MaxSizeMB <= 0 {
		cfg.Limits.MaxSizeMB = defaults.MaxSizeMB
	}
	if cfg.Limits.MaxDimension <= 0 {
		cfg.Limits.MaxDimension = defaults.MaxDimension
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = imaging.DefaultJPEGQuality
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Processor{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "pipeline"),
		now:    time.Now,
		newID:  uuid.New,
	}
}

// Config returns the effective configuration.
func (p *Processor) Config() Config {
	return p.cfg
}

// fileSet records files created during one request so they can be removed
// together when the request fails.
type fileSet struct {
	mu    sync.Mutex
	paths []string
}

func (s *fileSet) add(path string) string {
	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
	return path
}

func (s *fileSet) forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.paths {
		if p == path {
			s.paths = append(s.paths[:i], s.paths[i+1:]...)
			return
		}
	}
}

func (s *fileSet) removeAll(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove artifact", "path", p, "error", err)
		}
	}
	s.paths = nil
}

// Process stores raw in the output directory, then validates it, draws the
// cross and renders both histograms.
//
// The stored upload is capped one byte past the size limit, so an oversized
// body is rejected with imaging.ErrFileTooLarge without being read in full.
// The upload is deleted once processing finishes, whether it succeeded or
// not. Validation failures are returned as *imaging.ValidationError.
func (p *Processor) Process(ctx context.Context, raw io.Reader, spec imaging.CrossSpec) (*Result, error) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory: %v", imaging.ErrIO, err)
	}

	base := p.baseName()
	created := &fileSet{}
	ok := false
	defer func() {
		if !ok {
			created.removeAll(p.logger)
		}
	}()

	upload := filepath.Join(p.cfg.OutputDir, base+suffixUpload)
	if err := persist(upload, raw, p.cfg.Limits.MaxBytes()+1, created); err != nil {
		return nil, err
	}

	result, err := p.run(ctx, upload, base, spec, created)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(upload); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove upload", "path", upload, "error", err)
	}
	created.forget(upload)
	ok = true
	return result, nil
}

// ProcessFile runs the pipeline on an existing file. The source file is only
// read; it is never moved or deleted.
func (p *Processor) ProcessFile(ctx context.Context, path string, spec imaging.CrossSpec) (*Result, error) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory: %v", imaging.ErrIO, err)
	}

	created := &fileSet{}
	result, err := p.run(ctx, path, p.baseName(), spec, created)
	if err != nil {
		created.removeAll(p.logger)
		return nil, err
	}
	return result, nil
}

func (p *Processor) run(ctx context.Context, src, base string, spec imaging.CrossSpec, created *fileSet) (*Result, error) {
	logger := logging.WithContext(ctx, p.logger).With("id", base)
	start := p.now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, format, err := imaging.Validate(src, p.cfg.Limits)
	if err != nil {
		logger.Info("upload rejected", "error", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	processed, err := imaging.DrawCross(img, spec.Variant, spec.Color)
	if err != nil {
		return nil, err
	}

	artifacts := Artifacts{
		Original:           created.add(filepath.Join(p.cfg.OutputDir, base+suffixOriginal)),
		Processed:          created.add(filepath.Join(p.cfg.OutputDir, base+suffixProcessed)),
		HistogramOriginal:  created.add(filepath.Join(p.cfg.OutputDir, base+suffixHistogramOriginal)),
		HistogramProcessed: created.add(filepath.Join(p.cfg.OutputDir, base+suffixHistogramProcessed)),
	}

	// The four writes are independent once the cross has been drawn.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return imaging.SaveJPEG(img, artifacts.Original, p.cfg.JPEGQuality)
	})
	g.Go(func() error {
		return imaging.SaveJPEG(processed, artifacts.Processed, p.cfg.JPEGQuality)
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		_, err := imaging.RenderHistogram(img, artifacts.HistogramOriginal, "original")
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		_, err := imaging.RenderHistogram(processed, artifacts.HistogramProcessed, "processed")
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("failed to write artifacts", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	result := &Result{
		ID:        base,
		Artifacts: artifacts,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Format:    format,
		Thickness: imaging.CrossThickness(bounds.Dx(), bounds.Dy()),
		CrossType: spec.Variant.ExternalName(),
		Color:     spec.Color.Hex(),
	}
	logger.Info("image processed",
		"format", format,
		"width", result.Width,
		"height", result.Height,
		"cross_type", result.CrossType,
		"duration_ms", p.now().Sub(start).Milliseconds(),
	)
	return result, nil
}

func (p *Processor) baseName() string {
	return BaseName(p.now(), p.newID())
}

// persist copies at most limit bytes of r to a new file at path and records
// it in created.
func persist(path string, r io.Reader, limit int64, created *fileSet) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: failed to store upload: %v", imaging.ErrIO, err)
	}
	created.add(path)
	if _, err := io.Copy(f, io.LimitReader(r, limit)); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed to store upload: %v", imaging.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to store upload: %v", imaging.ErrIO, err)
	}
	return nil
}
