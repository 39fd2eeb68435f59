package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/facecam/internal/recognize"
)

// Directory replays the images of a directory in name order, looping forever. It stands
// in for a camera on machines without one.
type Directory struct {
	mu       sync.Mutex
	frames   [][]byte
	next     int
	seq      uint64
	interval time.Duration
	last     time.Time
	closed   bool
}

var replayExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// OpenDirectory loads every image in dir. Non-JPEG images are converted once up front.
func OpenDirectory(dir string, interval time.Duration) (*Directory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading replay directory: %w", err)
	}

	var frames [][]byte
	for _, e := range entries {
		if e.IsDir() || !replayExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		jpg, err := recognize.Normalize(data)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", e.Name(), err)
		}
		frames = append(frames, jpg)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}

	return &Directory{frames: frames, interval: interval}, nil
}

// Read returns the next image, waiting so frames are at least interval apart.
func (s *Directory) Read(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Frame{}, ErrClosed
	}

	if wait := time.Until(s.last.Add(s.interval)); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Frame{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	data := s.frames[s.next]
	s.next = (s.next + 1) % len(s.frames)
	s.seq++
	s.last = time.Now()

	return Frame{Data: data, Seq: s.seq, CapturedAt: s.last}, nil
}

// Close makes further reads fail with ErrClosed.
func (s *Directory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
