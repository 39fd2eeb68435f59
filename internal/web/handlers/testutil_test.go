package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facecam/internal/gallery"
	"github.com/kozaktomas/facecam/internal/recognize"
	"github.com/kozaktomas/facecam/internal/web/static"
)

// contentDetector treats files starting with "face:" as one face, anything else as none.
type contentDetector struct{}

func (contentDetector) Detect(data []byte) ([]recognize.Face, error) {
	if !strings.HasPrefix(string(data), "face:") {
		return nil, nil
	}
	var d recognize.Descriptor
	d[0] = float32(len(data))
	return []recognize.Face{{Descriptor: d}}, nil
}

// testGallery creates a gallery rooted in a temp directory.
func testGallery(t *testing.T) (*gallery.Gallery, string) {
	t.Helper()
	root := t.TempDir()
	store := gallery.NewStore(
		filepath.Join(root, "known_faces"),
		filepath.Join(root, "unknown_faces"),
		filepath.Join(root, "uploads"),
	)
	if err := store.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error: %v", err)
	}
	return gallery.New(store, contentDetector{}), root
}

func testPagesHandler(t *testing.T) (*PagesHandler, *gallery.Gallery, string) {
	t.Helper()
	g, root := testGallery(t)
	return NewPagesHandler(g, static.Templates()), g, root
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// multipartRequest builds a POST with the given fields and an optional file part.
func multipartRequest(t *testing.T, path string, fields map[string]string, fileField, fileName, fileContent string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(fileContent))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
