// Package facematch provides the gallery matching logic shared by the stream and the
// desktop loop: match strategies, the HNSW candidate index, rectangle geometry and the
// label text clean-up used when drawing names.
package facematch

import (
	"fmt"

	"github.com/kozaktomas/facecam/internal/recognize"
)

// Strategy decides which gallery entry wins when several are within tolerance.
type Strategy string

const (
	StrategyFirst   Strategy = "first"   // earliest entry in load order, distance ignored
	StrategyClosest Strategy = "closest" // smallest distance
)

// ParseStrategy maps a config string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFirst, "":
		return StrategyFirst, nil
	case StrategyClosest:
		return StrategyClosest, nil
	default:
		return "", fmt.Errorf("unknown match strategy %q (want first or closest)", s)
	}
}

// Entry is one known face: a person name and the descriptor of one of their photos.
type Entry struct {
	Name       string               `json:"name"`
	Descriptor recognize.Descriptor `json:"-"`
	Path       string               `json:"path"`
}

// Match is the outcome of comparing a query descriptor with the gallery.
type Match struct {
	Entry    Entry
	Index    int
	Distance float64
}
