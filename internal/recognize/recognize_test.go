package recognize

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	var zero Descriptor
	var unitX Descriptor
	unitX[0] = 1
	var diag Descriptor
	diag[0], diag[1] = 3, 4

	tests := []struct {
		name string
		a, b Descriptor
		want float64
	}{
		{"identical", unitX, unitX, 0},
		{"unit apart", zero, unitX, 1},
		{"3-4-5 triangle", zero, diag, 5},
		{"symmetric", diag, zero, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescriptorFromSlice(t *testing.T) {
	v := make([]float32, 128)
	v[5] = 0.25

	d, ok := DescriptorFromSlice(v)
	if !ok {
		t.Fatal("expected 128-length slice to convert")
	}
	if d[5] != 0.25 {
		t.Errorf("expected d[5] = 0.25, got %v", d[5])
	}

	back := d.Slice()
	if len(back) != 128 || back[5] != 0.25 {
		t.Errorf("round trip through Slice lost data: len=%d v[5]=%v", len(back), back[5])
	}

	if _, ok := DescriptorFromSlice(v[:64]); ok {
		t.Error("expected short slice to be rejected")
	}
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 90, A: 255})
		}
	}
	return img
}

func TestNormalize_JPEGPassthrough(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), nil); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	got, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("expected JPEG input to be returned unchanged")
	}
}

func TestNormalize_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}

	got, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if !IsJPEG(got) {
		t.Error("expected PNG input to be re-encoded as JPEG")
	}
	if _, err := jpeg.Decode(bytes.NewReader(got)); err != nil {
		t.Errorf("re-encoded data is not decodable: %v", err)
	}
}

func TestNormalize_Garbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}
}
