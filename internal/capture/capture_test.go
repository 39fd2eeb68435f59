package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/facecam/internal/recognize"
)

func writeImage(t *testing.T, path string, c color.Color, asPNG bool) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	var err error
	if asPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{"", BackendOpenCV, false},
		{"opencv", BackendOpenCV, false},
		{"v4l2", BackendV4L2, false},
		{"directory", BackendDirectory, false},
		{"gstreamer", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBackend(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBackend(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBackend(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDirectory_ReplaysInOrder(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "b.png"), color.White, true)
	writeImage(t, filepath.Join(dir, "a.jpg"), color.Black, false)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenDirectory(dir, 0)
	if err != nil {
		t.Fatalf("OpenDirectory() error: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	var frames []Frame
	for range 3 {
		f, err := src.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		frames = append(frames, f)
	}

	for i, f := range frames {
		if f.Seq != uint64(i+1) {
			t.Errorf("frame %d: expected seq %d, got %d", i, i+1, f.Seq)
		}
		if !recognize.IsJPEG(f.Data) {
			t.Errorf("frame %d is not JPEG", i)
		}
	}
	if !bytes.Equal(frames[0].Data, frames[2].Data) {
		t.Error("expected replay to loop back to the first image")
	}
	if bytes.Equal(frames[0].Data, frames[1].Data) {
		t.Error("expected second frame to be a different image")
	}
}

func TestDirectory_Empty(t *testing.T) {
	if _, err := OpenDirectory(t.TempDir(), 0); err == nil {
		t.Error("expected error for a directory without images")
	}
}

func TestDirectory_Close(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.jpg"), color.Black, false)

	src, err := OpenDirectory(dir, 0)
	if err != nil {
		t.Fatalf("OpenDirectory() error: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := src.Read(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestDirectory_ContextCancelledWhileWaiting(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.jpg"), color.Black, false)

	src, err := OpenDirectory(dir, time.Hour)
	if err != nil {
		t.Fatalf("OpenDirectory() error: %v", err)
	}
	defer src.Close()

	// first read never waits
	if _, err := src.Read(context.Background()); err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := src.Read(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
