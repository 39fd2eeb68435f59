// Package display runs the recognition pipeline into a desktop window.
package display

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/pipeline"
)

// Viewer shows frames and reports key presses.
type Viewer interface {
	Show(img image.Image) error
	WaitKey(ms int) int
	Close() error
}

// Source produces processed frames.
type Source interface {
	Next(ctx context.Context) (*pipeline.Result, error)
	Close() error
}

// Run shows frames until q is pressed, ctx is cancelled or a frame cannot be read.
// The source and viewer are closed on return. Cancellation is not an error.
func Run(ctx context.Context, src Source, viewer Viewer) (err error) {
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Printf("Failed to release capture: %v", cerr)
		}
		if cerr := viewer.Close(); cerr != nil {
			log.Printf("Failed to close window: %v", cerr)
		}
	}()

	frames := 0
	for {
		res, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return fmt.Errorf("after %d frames: %w", frames, err)
		}
		frames++

		if err := viewer.Show(res.Image); err != nil {
			return err
		}
		if isQuitKey(viewer.WaitKey(constants.DisplayWaitMillis)) {
			log.Printf("Quit requested after %d frames", frames)
			return nil
		}
	}
}

// isQuitKey reports whether key is q or Q. Some HighGUI backends set modifier bits above
// the low byte.
func isQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	k := key & 0xFF
	return k == 'q' || k == 'Q'
}
