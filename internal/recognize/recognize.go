// Package recognize defines the face detection contract shared by the gallery loader and
// the frame processor. The dlib-backed implementation lives in the dlib subpackage so that
// everything else can be built and tested without the native libraries.
package recognize

import (
	"errors"
	"image"
	"math"

	"github.com/kozaktomas/facecam/internal/constants"
)

// Descriptor is a 128-dimensional face descriptor produced by the dlib ResNet model.
type Descriptor [constants.DescriptorDim]float32

// Face is a single detected face.
type Face struct {
	Rect       image.Rectangle
	Descriptor Descriptor
}

// Detector locates faces in an encoded image and computes one descriptor per face.
// Implementations accept any format Normalize understands.
type Detector interface {
	Detect(data []byte) ([]Face, error)
}

// ErrUnsupportedImage is returned when image data cannot be decoded.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Distance returns the Euclidean distance between two descriptors.
func Distance(a, b Descriptor) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Slice returns the descriptor as a float32 slice for vector stores.
func (d Descriptor) Slice() []float32 {
	out := make([]float32, len(d))
	copy(out, d[:])
	return out
}

// DescriptorFromSlice copies v into a Descriptor. It returns false when the length is wrong.
func DescriptorFromSlice(v []float32) (Descriptor, bool) {
	var d Descriptor
	if len(v) != len(d) {
		return d, false
	}
	copy(d[:], v)
	return d, true
}
