// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Face matching constants
const (
	// DefaultMatchTolerance is the maximum Euclidean distance between two dlib
	// descriptors that still counts as the same person
	DefaultMatchTolerance = 0.6

	// UnknownLabel is drawn on faces that match nobody in the gallery
	UnknownLabel = "Unknown"

	// ConflictNeighbors is how many HNSW neighbours of each known face are checked for
	// faces of other people within tolerance
	ConflictNeighbors = 8

	// DescriptorDim is the length of a dlib face descriptor
	DescriptorDim = 128
)

// HNSW index constants
const (
	// HNSWMaxNeighbors is the M parameter of the gallery graph
	HNSWMaxNeighbors = 16

	// HNSWEfSearch is the candidate list size used while searching
	HNSWEfSearch = 32
)

// Annotation constants
const (
	// BoxThickness is the border width of face rectangles in pixels
	BoxThickness = 2

	// LabelOffset is how far above the rectangle the label baseline sits
	LabelOffset = 10
)

// Capture constants
const (
	// V4L2WaitSeconds is how long a single WaitForFrame call blocks before re-checking the context
	V4L2WaitSeconds = 1

	// ReplayFrameInterval paces the directory replay source (about 10 fps)
	ReplayFrameInterval = 100 * time.Millisecond

	// CaptureJPEGQuality is used when OpenCV frames are encoded for the pipeline
	CaptureJPEGQuality = 95

	// DisplayWaitMillis is the key poll delay of the desktop window
	DisplayWaitMillis = 1
)
