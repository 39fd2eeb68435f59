package facematch

import (
	"fmt"
	"image"
)

// ClampRect limits a detector rectangle to the frame bounds. dlib reports boxes that
// overhang the image when a face touches the edge.
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	return r.Canon().Intersect(bounds)
}

// LabelOrigin returns the baseline origin for a label drawn above r, keeping at least
// minAscent pixels of room at the top of the frame.
func LabelOrigin(r image.Rectangle, offset, minAscent int) image.Point {
	y := r.Min.Y - offset
	if y < minAscent {
		y = minAscent
	}
	return image.Pt(r.Min.X, y)
}

// UnknownFileName names the crop of an unmatched face after its top-left corner
// (top first). Crops at identical coordinates overwrite each other.
func UnknownFileName(r image.Rectangle) string {
	return fmt.Sprintf("unknown_%d_%d.jpg", r.Min.Y, r.Min.X)
}
