package recognize

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for registered photos. dlib only reads JPEG, everything else is re-encoded.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// IsJPEG reports whether data starts with a JPEG SOI marker.
func IsJPEG(data []byte) bool {
	return bytes.HasPrefix(data, jpegMagic)
}

// Normalize returns data as JPEG. JPEG input is returned unchanged; PNG, GIF, BMP and
// WebP are decoded and re-encoded at full quality.
func Normalize(data []byte) ([]byte, error) {
	if IsJPEG(data) {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		return nil, fmt.Errorf("re-encoding %s as jpeg: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Decode decodes any supported image format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}
