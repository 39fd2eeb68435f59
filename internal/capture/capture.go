// Package capture reads frames from a camera. Every source yields JPEG encoded frames.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by Read after Close.
var ErrClosed = errors.New("capture source closed")

// Frame is one captured image.
type Frame struct {
	Data       []byte // JPEG
	Seq        uint64
	CapturedAt time.Time
}

// Source is a frame producer. Implementations are not safe for concurrent Read calls.
type Source interface {
	Read(ctx context.Context) (Frame, error)
	Close() error
}

// Backend names a Source implementation.
type Backend string

const (
	BackendOpenCV    Backend = "opencv"
	BackendV4L2      Backend = "v4l2"
	BackendDirectory Backend = "directory"
)

// ParseBackend maps a config string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendOpenCV, BackendV4L2, BackendDirectory:
		return b, nil
	case "":
		return BackendOpenCV, nil
	default:
		return "", fmt.Errorf("unknown capture backend %q (want opencv, v4l2 or directory)", s)
	}
}
