package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/kozaktomas/facecam/internal/capture"
	"github.com/kozaktomas/facecam/internal/config"
	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/database/postgres"
	"github.com/kozaktomas/facecam/internal/facematch"
	"github.com/kozaktomas/facecam/internal/gallery"
	"github.com/kozaktomas/facecam/internal/opencv"
	"github.com/kozaktomas/facecam/internal/recognize/dlib"
	"github.com/schollz/progressbar/v3"
)

// app holds the long lived components shared by all commands.
type app struct {
	cfg      *config.Config
	detector *dlib.Detector
	pool     *postgres.Pool
	gallery  *gallery.Gallery
}

// newApp loads the face models, connects the optional embedding cache and builds an
// empty gallery. Call loadGallery to populate it.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	model, err := dlib.ParseModel(cfg.Faces.Detector)
	if err != nil {
		return nil, err
	}
	strategy, err := facematch.ParseStrategy(cfg.Faces.MatchStrategy)
	if err != nil {
		return nil, err
	}

	detector, err := dlib.NewDetector(cfg.Faces.ModelsDir, model)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, detector: detector}
	opts := []gallery.Option{
		gallery.WithTolerance(cfg.Faces.MatchTolerance),
		gallery.WithStrategy(strategy),
	}

	if cfg.Database.CacheEnabled() {
		fmt.Printf("Connecting to PostgreSQL embedding cache...\n")
		pool, err := postgres.Open(ctx, &cfg.Database)
		if err != nil {
			detector.Close()
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		a.pool = pool
		opts = append(opts, gallery.WithCache(postgres.NewEmbeddingCache(pool)))
	}

	store := gallery.NewStore(cfg.Faces.KnownDir, cfg.Faces.UnknownDir, cfg.Faces.UploadDir)
	a.gallery = gallery.New(store, detector, opts...)
	return a, nil
}

// Close releases the detector and the database pool.
func (a *app) Close() {
	a.detector.Close()
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			fmt.Printf("Warning: failed to close database: %v\n", err)
		}
	}
}

// loadGallery reloads the gallery, showing a progress bar unless quiet is set.
func (a *app) loadGallery(ctx context.Context, quiet bool) (*gallery.Snapshot, error) {
	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if quiet {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Loading known faces"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("images"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		_ = bar.Set(done)
	}

	snap, err := a.gallery.ReloadWithProgress(ctx, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return nil, fmt.Errorf("loading known faces: %w", err)
	}
	return snap, nil
}

// openSource opens the configured capture backend.
func openSource(cfg *config.CaptureConfig) (capture.Source, error) {
	backend, err := capture.ParseBackend(strings.ToLower(cfg.Backend))
	if err != nil {
		return nil, err
	}

	fmt.Printf("Opening %s capture on %s...\n", backend, cfg.Device)
	var src capture.Source
	switch backend {
	case capture.BackendV4L2:
		src, err = capture.OpenV4L2(cfg.Device, cfg.Width, cfg.Height, cfg.FrameTimeout)
	case capture.BackendDirectory:
		src, err = capture.OpenDirectory(cfg.Device, constants.ReplayFrameInterval)
	default:
		src, err = opencv.OpenCamera(cfg.Device, cfg.Width, cfg.Height)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}
