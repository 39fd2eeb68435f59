// Package gallery holds the known-face gallery: the directory layout on disk, the loader
// that turns it into descriptors, and the snapshot the frame processor matches against.
package gallery

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/facematch"
	"github.com/kozaktomas/facecam/internal/recognize"
)

// Person summarises one known person in a snapshot.
type Person struct {
	Name   string `json:"name"`
	Images int    `json:"images"`
	Faces  int    `json:"faces"`
}

// Snapshot is an immutable view of the gallery produced by one reload.
type Snapshot struct {
	matcher  *facematch.Matcher
	people   []Person
	images   int
	loadedAt time.Time
}

func newSnapshot(entries []facematch.Entry, images map[string]int, tolerance float64, strategy facematch.Strategy) *Snapshot {
	faces := make(map[string]int)
	for _, e := range entries {
		faces[e.Name]++
	}

	people := make([]Person, 0, len(images))
	total := 0
	for name, n := range images {
		people = append(people, Person{Name: name, Images: n, Faces: faces[name]})
		total += n
	}
	sort.Slice(people, func(i, j int) bool { return people[i].Name < people[j].Name })

	return &Snapshot{
		matcher:  facematch.NewMatcher(entries, tolerance, strategy),
		people:   people,
		images:   total,
		loadedAt: time.Now(),
	}
}

// Entries returns the known faces in load order.
func (s *Snapshot) Entries() []facematch.Entry { return s.matcher.Entries() }

// Len returns the number of known faces.
func (s *Snapshot) Len() int { return len(s.matcher.Entries()) }

// Images returns the number of files scanned, including ones without a face.
func (s *Snapshot) Images() int { return s.images }

// People returns per-person counts ordered by name.
func (s *Snapshot) People() []Person { return s.people }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

func (s *Snapshot) Tolerance() float64 { return s.matcher.Tolerance() }

func (s *Snapshot) Strategy() facematch.Strategy { return s.matcher.Strategy() }

// Conflicts lists known faces of different people that are within tolerance of each other.
func (s *Snapshot) Conflicts() []facematch.Conflict {
	return facematch.FindConflicts(s.matcher.Entries(), s.matcher.Tolerance())
}

// Match looks up the known face for a descriptor.
func (s *Snapshot) Match(d recognize.Descriptor) (facematch.Match, bool) {
	return s.matcher.Match(d)
}

// Progress is called after each file during a reload.
type Progress func(done, total int)

// Option configures a Gallery.
type Option func(*Gallery)

// WithCache enables the embedding cache.
func WithCache(c EmbeddingCache) Option {
	return func(g *Gallery) { g.cache = c }
}

// WithTolerance sets the maximum match distance.
func WithTolerance(t float64) Option {
	return func(g *Gallery) {
		if t > 0 {
			g.tolerance = t
		}
	}
}

// WithStrategy selects how a winner is picked among entries within tolerance.
func WithStrategy(s facematch.Strategy) Option {
	return func(g *Gallery) { g.strategy = s }
}

// Gallery loads known faces and publishes them as snapshots. Readers call Snapshot and
// never block; reloads and mutations are serialised.
type Gallery struct {
	store     *Store
	detector  recognize.Detector
	cache     EmbeddingCache
	tolerance float64
	strategy  facematch.Strategy

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// New creates a gallery with an empty snapshot. Call Reload to populate it.
func New(store *Store, detector recognize.Detector, opts ...Option) *Gallery {
	g := &Gallery{
		store:     store,
		detector:  detector,
		tolerance: constants.DefaultMatchTolerance,
		strategy:  facematch.StrategyFirst,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.current.Store(newSnapshot(nil, nil, g.tolerance, g.strategy))
	return g
}

// Store returns the underlying file store.
func (g *Gallery) Store() *Store { return g.store }

// Snapshot returns the current snapshot.
func (g *Gallery) Snapshot() *Snapshot { return g.current.Load() }

// Reload rescans the known-faces directory and publishes a new snapshot.
func (g *Gallery) Reload(ctx context.Context) (*Snapshot, error) {
	return g.ReloadWithProgress(ctx, nil)
}

// ReloadWithProgress is Reload with a per-file progress callback.
func (g *Gallery) ReloadWithProgress(ctx context.Context, progress Progress) (*Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reload(ctx, progress)
}

// Register saves an uploaded image for name and reloads the gallery.
func (g *Gallery) Register(ctx context.Context, name, filename string, r io.Reader) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path, err := g.store.SaveKnown(name, filename, r)
	if err != nil {
		return "", err
	}
	if _, err := g.reload(ctx, nil); err != nil {
		return path, fmt.Errorf("reloading gallery: %w", err)
	}
	return path, nil
}

// Label moves an unknown crop to the known faces of name and reloads the gallery.
func (g *Gallery) Label(ctx context.Context, filename, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path, err := g.store.LabelUnknown(filename, name)
	if err != nil {
		return "", err
	}
	if _, err := g.reload(ctx, nil); err != nil {
		return path, fmt.Errorf("reloading gallery: %w", err)
	}
	return path, nil
}

func (g *Gallery) reload(ctx context.Context, progress Progress) (*Snapshot, error) {
	photos, err := g.store.Photos()
	if err != nil {
		return nil, err
	}

	var cached map[string]CachedEmbedding
	if g.cache != nil {
		cached, err = g.cache.All(ctx)
		if err != nil {
			log.Printf("Embedding cache unavailable, encoding every image: %v", err)
			cached = nil
		}
	}

	entries := make([]facematch.Entry, 0, len(photos))
	images := make(map[string]int)
	paths := make([]string, 0, len(photos))
	for i, p := range photos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		images[p.Person]++
		paths = append(paths, p.Path)

		d, ok, err := g.describe(ctx, p, cached)
		switch {
		case err != nil:
			log.Printf("Skipping %s: %v", p.Path, err)
		case ok:
			entries = append(entries, facematch.Entry{Name: p.Person, Descriptor: d, Path: p.Path})
		}

		if progress != nil {
			progress(i+1, len(photos))
		}
	}

	if g.cache != nil {
		if n, err := g.cache.Prune(ctx, paths); err != nil {
			log.Printf("Failed to prune embedding cache: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d stale cached embeddings", n)
		}
	}

	snap := newSnapshot(entries, images, g.tolerance, g.strategy)
	g.current.Store(snap)
	return snap, nil
}

// describe returns the descriptor of the first face in p. ok is false when the image
// holds no face.
func (g *Gallery) describe(ctx context.Context, p Photo, cached map[string]CachedEmbedding) (recognize.Descriptor, bool, error) {
	if c, hit := cached[p.Path]; hit && c.fresh(p.Size, p.ModTime) {
		return c.Descriptor, c.HasFace, nil
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		return recognize.Descriptor{}, false, fmt.Errorf("reading image: %w", err)
	}
	faces, err := g.detector.Detect(data)
	if err != nil {
		return recognize.Descriptor{}, false, err
	}

	var d recognize.Descriptor
	if len(faces) > 0 {
		d = faces[0].Descriptor
	}

	if g.cache != nil {
		err := g.cache.Put(ctx, CachedEmbedding{
			Path:       p.Path,
			Person:     p.Person,
			Size:       p.Size,
			ModTime:    p.ModTime.Truncate(time.Microsecond),
			HasFace:    len(faces) > 0,
			Descriptor: d,
		})
		if err != nil {
			log.Printf("Failed to cache embedding for %s: %v", p.Path, err)
		}
	}
	return d, len(faces) > 0, nil
}
