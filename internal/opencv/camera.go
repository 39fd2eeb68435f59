// Package opencv contains the gocv backed camera and desktop window. It is the only
// package besides recognize/dlib that needs cgo.
package opencv

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kozaktomas/facecam/internal/capture"
	"github.com/kozaktomas/facecam/internal/constants"
	"gocv.io/x/gocv"
)

// Camera reads frames through cv::VideoCapture. device is a camera index ("0") or a
// file or stream URL.
type Camera struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	device string
	seq    uint64
}

// OpenCamera opens device and requests the given frame size.
func OpenCamera(device string, width, height int) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("opening capture device %s: %w", device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture device %s is not available", device)
	}

	if width > 0 && height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	log.Printf("Capturing from OpenCV device %s (%.0fx%.0f)", device,
		vc.Get(gocv.VideoCaptureFrameWidth), vc.Get(gocv.VideoCaptureFrameHeight))

	return &Camera{vc: vc, mat: gocv.NewMat(), device: device}, nil
}

// Read grabs the next frame and encodes it as JPEG. A failed grab is an error, which ends
// any stream built on the camera.
func (c *Camera) Read(ctx context.Context) (capture.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return capture.Frame{}, capture.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, err
	}

	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return capture.Frame{}, fmt.Errorf("cannot read frame from %s", c.device)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.mat, []int{gocv.IMWriteJpegQuality, constants.CaptureJPEGQuality})
	if err != nil {
		return capture.Frame{}, fmt.Errorf("encoding frame: %w", err)
	}
	defer buf.Close()

	c.seq++
	return capture.Frame{
		Data:       append([]byte(nil), buf.GetBytes()...),
		Seq:        c.seq,
		CapturedAt: time.Now(),
	}, nil
}

// Close releases the capture device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil
	}
	c.mat.Close()
	err := c.vc.Close()
	c.vc = nil
	if err != nil {
		return fmt.Errorf("closing capture device %s: %w", c.device, err)
	}
	return nil
}

var _ capture.Source = (*Camera)(nil)
