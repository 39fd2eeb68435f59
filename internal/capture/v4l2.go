package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/blackjack/webcam"
	"github.com/kozaktomas/facecam/internal/constants"
)

const pixelFormatMJPEG webcam.PixelFormat = 0x47504A4D // 'MJPG'

// streamer is the part of *webcam.Webcam used after the stream has started.
type streamer interface {
	WaitForFrame(timeout uint32) error
	ReadFrame() ([]byte, error)
	StopStreaming() error
	Close() error
}

// V4L2 reads MJPEG frames straight from a video4linux device, no OpenCV needed.
type V4L2 struct {
	mu      sync.Mutex
	cam     streamer
	device  string
	timeout time.Duration
	seq     uint64
}

// OpenV4L2 opens device (e.g. /dev/video0) and starts streaming MJPEG at the closest
// size the driver supports to width x height.
func OpenV4L2(device string, width, height int, timeout time.Duration) (*V4L2, error) {
	cam, err := webcam.Open(device)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device, err)
	}

	if _, ok := cam.GetSupportedFormats()[pixelFormatMJPEG]; !ok {
		cam.Close()
		return nil, fmt.Errorf("%s does not support MJPEG capture", device)
	}

	_, w, h, err := cam.SetImageFormat(pixelFormatMJPEG, uint32(width), uint32(height))
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("setting image format on %s: %w", device, err)
	}

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("starting stream on %s: %w", device, err)
	}

	log.Printf("Capturing from %s (MJPEG %dx%d)", device, w, h)
	return &V4L2{cam: cam, device: device, timeout: timeout}, nil
}

// Read waits for the next frame. It fails when no frame arrives within the configured
// timeout.
func (s *V4L2) Read(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cam == nil {
		return Frame{}, ErrClosed
	}

	deadline := time.Now().Add(s.timeout)
	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}

		err := s.cam.WaitForFrame(constants.V4L2WaitSeconds)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			if s.timeout > 0 && time.Now().After(deadline) {
				return Frame{}, fmt.Errorf("no frame from %s within %s", s.device, s.timeout)
			}
			continue
		default:
			return Frame{}, fmt.Errorf("waiting for frame: %w", err)
		}

		data, err := s.cam.ReadFrame()
		if err != nil {
			return Frame{}, fmt.Errorf("reading frame: %w", err)
		}
		if len(data) == 0 {
			continue
		}

		s.seq++
		return Frame{
			Data:       append([]byte(nil), data...),
			Seq:        s.seq,
			CapturedAt: time.Now(),
		}, nil
	}
}

// Close stops streaming and releases the device.
func (s *V4L2) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cam == nil {
		return nil
	}
	err := errors.Join(s.cam.StopStreaming(), s.cam.Close())
	s.cam = nil
	if err != nil {
		return fmt.Errorf("closing %s: %w", s.device, err)
	}
	return nil
}
