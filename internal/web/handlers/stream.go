package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/pipeline"
)

// FrameSource yields processed frames. pipeline.Feed implements it.
type FrameSource interface {
	Next(ctx context.Context) (*pipeline.Result, error)
}

// StreamHandler serves the annotated camera feed as MJPEG.
type StreamHandler struct {
	feed FrameSource
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(feed FrameSource) *StreamHandler {
	return &StreamHandler{feed: feed}
}

// VideoFeed writes frames until the client goes away or the feed fails. A feed error
// just ends the response.
func (h *StreamHandler) VideoFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+constants.MJPEGBoundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	frames := 0
	for {
		res, err := h.feed.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("Video feed ended after %d frames: %v", frames, err)
			}
			return
		}

		// Each frame gets its own deadline so the server WriteTimeout does not cut the stream.
		if err := rc.SetWriteDeadline(time.Now().Add(constants.FrameWriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			log.Printf("Video feed: failed to set write deadline: %v", err)
			return
		}
		if err := writeFramePart(w, res.JPEG); err != nil {
			return
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return
		}
		frames++
	}
}

func writeFramePart(w io.Writer, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", constants.MJPEGBoundary); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}
