package gallery

import (
	"context"
	"time"

	"github.com/kozaktomas/facecam/internal/recognize"
)

// CachedEmbedding is the stored detection result for one known-face image. HasFace is
// false when the image was decoded but contained no face.
type CachedEmbedding struct {
	Path       string
	Person     string
	Size       int64
	ModTime    time.Time
	HasFace    bool
	Descriptor recognize.Descriptor
}

// EmbeddingCache persists descriptors between reloads so unchanged images are not
// re-encoded.
type EmbeddingCache interface {
	All(ctx context.Context) (map[string]CachedEmbedding, error)
	Put(ctx context.Context, e CachedEmbedding) error
	// Prune removes entries whose path is not in keep and returns how many were removed.
	Prune(ctx context.Context, keep []string) (int, error)
}

// fresh reports whether c still describes a file with the given size and modification
// time. Timestamps are compared at microsecond precision, the resolution PostgreSQL keeps.
func (c CachedEmbedding) fresh(size int64, modTime time.Time) bool {
	return c.Size == size && c.ModTime.Equal(modTime.Truncate(time.Microsecond))
}
