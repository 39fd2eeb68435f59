package constants

import "time"

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (32MB)
	MaxUploadSize = 32 << 20
)

// Streaming constants
const (
	// MJPEGBoundary separates frames in the multipart/x-mixed-replace stream
	MJPEGBoundary = "frame"

	// FrameWriteTimeout bounds how long a single frame write to a client may take
	FrameWriteTimeout = 10 * time.Second
)
