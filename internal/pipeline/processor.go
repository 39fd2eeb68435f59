// Package pipeline turns captured frames into annotated JPEGs: detect, match against the
// gallery, save unknown crops, draw, encode.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log"

	"github.com/kozaktomas/facecam/internal/annotate"
	"github.com/kozaktomas/facecam/internal/capture"
	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/gallery"
	"github.com/kozaktomas/facecam/internal/recognize"
)

// Recognition is the outcome for one face in a frame.
type Recognition struct {
	Rect     image.Rectangle `json:"rect"`
	Name     string          `json:"name"`
	Known    bool            `json:"known"`
	Distance float64         `json:"distance,omitempty"`
	SavedAs  string          `json:"saved_as,omitempty"` // unknown crop path
}

// Result is a processed frame.
type Result struct {
	Frame        capture.Frame
	Image        *image.RGBA // annotated canvas
	JPEG         []byte
	Recognitions []Recognition
}

// Options tunes a Processor.
type Options struct {
	SaveUnknown bool
	JPEGQuality int
}

// Processor runs the per-frame pipeline against the current gallery snapshot.
type Processor struct {
	detector recognize.Detector
	gallery  *gallery.Gallery
	opts     Options
}

// NewProcessor creates a processor. A zero JPEG quality uses the encoder default.
func NewProcessor(detector recognize.Detector, g *gallery.Gallery, opts Options) *Processor {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = jpeg.DefaultQuality
	}
	return &Processor{detector: detector, gallery: g, opts: opts}
}

// Process recognizes and annotates one frame.
func (p *Processor) Process(ctx context.Context, frame capture.Frame) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	faces, err := p.detector.Detect(frame.Data)
	if err != nil {
		return nil, fmt.Errorf("detecting faces in frame %d: %w", frame.Seq, err)
	}

	img, err := recognize.Decode(frame.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding frame %d: %w", frame.Seq, err)
	}
	canvas := toRGBA(img)

	snap := p.gallery.Snapshot()
	recognitions := make([]Recognition, 0, len(faces))
	for _, f := range faces {
		rec := Recognition{Rect: f.Rect, Name: constants.UnknownLabel}
		if m, ok := snap.Match(f.Descriptor); ok {
			rec.Name = m.Entry.Name
			rec.Known = true
			rec.Distance = m.Distance
		} else if p.opts.SaveUnknown {
			// Crops come from the clean frame, before any box is drawn.
			path, err := p.gallery.Store().SaveUnknown(f.Rect, canvas, p.opts.JPEGQuality)
			if err != nil {
				log.Printf("Failed to save unknown face %v: %v", f.Rect, err)
			}
			rec.SavedAs = path
		}
		recognitions = append(recognitions, rec)
	}

	for _, rec := range recognitions {
		annotate.Face(canvas, rec.Rect, rec.Name)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: p.opts.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding frame %d: %w", frame.Seq, err)
	}

	return &Result{
		Frame:        frame,
		Image:        canvas,
		JPEG:         buf.Bytes(),
		Recognitions: recognitions,
	}, nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
