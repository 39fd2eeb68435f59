package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/facecam/internal/gallery"
	"github.com/kozaktomas/facecam/internal/recognize"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingCache stores one descriptor per known-face image, keyed by file path.
type EmbeddingCache struct {
	pool *Pool
}

// NewEmbeddingCache creates a cache backed by the known_face_embeddings table.
func NewEmbeddingCache(pool *Pool) *EmbeddingCache {
	return &EmbeddingCache{pool: pool}
}

// All returns every cached entry keyed by path.
func (c *EmbeddingCache) All(ctx context.Context) (map[string]gallery.CachedEmbedding, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT path, person, size, mod_time, has_face, embedding
		FROM known_face_embeddings
	`)
	if err != nil {
		return nil, fmt.Errorf("query cached embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]gallery.CachedEmbedding)
	for rows.Next() {
		var e gallery.CachedEmbedding
		var vec *pgvector.Vector

		if err := rows.Scan(&e.Path, &e.Person, &e.Size, &e.ModTime, &e.HasFace, &vec); err != nil {
			return nil, fmt.Errorf("scan cached embedding: %w", err)
		}
		if e.HasFace {
			d, ok := recognize.DescriptorFromSlice(vecSlice(vec))
			if !ok {
				// Stale row from a different model; re-encode on this reload.
				continue
			}
			e.Descriptor = d
		}
		out[e.Path] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached embeddings: %w", err)
	}
	return out, nil
}

// Put stores an entry (upsert).
func (c *EmbeddingCache) Put(ctx context.Context, e gallery.CachedEmbedding) error {
	var vec any
	if e.HasFace {
		vec = pgvector.NewVector(e.Descriptor.Slice())
	}

	_, err := c.pool.Exec(ctx, `
		INSERT INTO known_face_embeddings (path, person, size, mod_time, has_face, embedding)
		VALUES ($1, $2, $3, $4, $5, $6::vector)
		ON CONFLICT (path) DO UPDATE SET
			person = EXCLUDED.person,
			size = EXCLUDED.size,
			mod_time = EXCLUDED.mod_time,
			has_face = EXCLUDED.has_face,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()
	`, e.Path, e.Person, e.Size, e.ModTime, e.HasFace, vec)
	if err != nil {
		return fmt.Errorf("save cached embedding: %w", err)
	}
	return nil
}

// Prune deletes entries whose path is not in keep.
func (c *EmbeddingCache) Prune(ctx context.Context, keep []string) (int, error) {
	if keep == nil {
		keep = []string{}
	}
	res, err := c.pool.Exec(ctx, "DELETE FROM known_face_embeddings WHERE NOT (path = ANY($1))", pq.Array(keep))
	if err != nil {
		return 0, fmt.Errorf("prune cached embeddings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune cached embeddings: %w", err)
	}
	return int(n), nil
}

// Count returns the number of cached entries.
func (c *EmbeddingCache) Count(ctx context.Context) (int, error) {
	var count int
	if err := c.pool.QueryRow(ctx, "SELECT COUNT(*) FROM known_face_embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cached embeddings: %w", err)
	}
	return count, nil
}

func vecSlice(v *pgvector.Vector) []float32 {
	if v == nil {
		return nil
	}
	return v.Slice()
}

var _ gallery.EmbeddingCache = (*EmbeddingCache)(nil)
