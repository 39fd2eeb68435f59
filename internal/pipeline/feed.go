package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/facecam/internal/capture"
)

// Feed shares one capture source between any number of consumers. Each Next call holds
// the lock for the read and the processing, so frames are produced one at a time.
type Feed struct {
	mu   sync.Mutex
	src  capture.Source
	proc *Processor
}

// NewFeed creates a feed. The feed owns src.
func NewFeed(src capture.Source, proc *Processor) *Feed {
	return &Feed{src: src, proc: proc}
}

// Next reads and processes one frame.
func (f *Feed) Next(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	frame, err := f.src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	return f.proc.Process(ctx, frame)
}

// Close releases the capture source.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src.Close()
}
