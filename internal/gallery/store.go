package gallery

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/facecam/internal/facematch"
)

var (
	ErrEmptyName       = errors.New("name is required")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrUnknownNotFound = errors.New("unknown face not found")
)

// Store owns the on-disk layout: known_faces/<name>/<file>, unknown_faces/<file> and the
// uploads directory.
type Store struct {
	knownDir   string
	unknownDir string
	uploadDir  string
}

// Photo is a file inside a person directory of the known-faces tree.
type Photo struct {
	Person  string
	Path    string
	Size    int64
	ModTime time.Time
}

// UnknownFile is a saved crop of an unmatched face.
type UnknownFile struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// NewStore creates a store rooted at the given directories.
func NewStore(knownDir, unknownDir, uploadDir string) *Store {
	return &Store{
		knownDir:   knownDir,
		unknownDir: unknownDir,
		uploadDir:  uploadDir,
	}
}

func (s *Store) KnownDir() string   { return s.knownDir }
func (s *Store) UnknownDir() string { return s.unknownDir }
func (s *Store) UploadDir() string  { return s.uploadDir }

// EnsureDirs creates the data directories if they do not exist.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.knownDir, s.unknownDir, s.uploadDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// Photos lists every file under the known-faces tree ordered by person then file name.
// Entries directly under the root that are not directories are ignored. A missing root
// yields no photos.
func (s *Store) Photos() ([]Photo, error) {
	people, err := os.ReadDir(s.knownDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading known faces directory: %w", err)
	}

	var photos []Photo
	for _, person := range people {
		if !person.IsDir() {
			continue
		}
		dir := filepath.Join(s.knownDir, person.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, f := range files {
			info, err := f.Info()
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			photos = append(photos, Photo{
				Person:  person.Name(),
				Path:    filepath.Join(dir, f.Name()),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}
	return photos, nil
}

// SaveKnown writes an uploaded image to known_faces/<name>/ and returns its path.
// An existing file with the same name is replaced.
func (s *Store) SaveKnown(name, filename string, r io.Reader) (string, error) {
	person, err := cleanName(name)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.knownDir, person)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating person directory: %w", err)
	}

	path := filepath.Join(dir, uploadFileName(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// SaveUnknown crops rect out of frame and writes it as unknown_<top>_<left>.jpg.
// The rectangle is clamped to the frame first.
func (s *Store) SaveUnknown(rect image.Rectangle, frame image.Image, quality int) (string, error) {
	rect = facematch.ClampRect(rect, frame.Bounds())
	if rect.Empty() {
		return "", fmt.Errorf("face %v lies outside the frame", rect)
	}

	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(crop, crop.Bounds(), frame, rect.Min, draw.Src)

	if err := os.MkdirAll(s.unknownDir, 0o755); err != nil {
		return "", fmt.Errorf("creating unknown faces directory: %w", err)
	}

	path := filepath.Join(s.unknownDir, facematch.UnknownFileName(rect))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := jpeg.Encode(f, crop, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// Unknowns lists saved unknown crops by file name. A missing directory yields none.
func (s *Store) Unknowns() ([]UnknownFile, error) {
	entries, err := os.ReadDir(s.unknownDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []UnknownFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading unknown faces directory: %w", err)
	}

	files := make([]UnknownFile, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, UnknownFile{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// UnknownPath resolves filename inside the unknown-faces directory.
func (s *Store) UnknownPath(filename string) (string, error) {
	base, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.unknownDir, base)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrUnknownNotFound, base)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrUnknownNotFound, base)
	}
	return path, nil
}

// LabelUnknown moves an unknown crop into known_faces/<name>/ and returns the new path.
func (s *Store) LabelUnknown(filename, name string) (string, error) {
	person, err := cleanName(name)
	if err != nil {
		return "", err
	}
	src, err := s.UnknownPath(filename)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.knownDir, person)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating person directory: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("moving %s: %w", src, err)
	}
	return dst, nil
}

// baseName reduces s to its last path element. Browsers on Windows may send full paths
// with backslashes.
func baseName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\`, "/"))
	if s == "" {
		return ""
	}
	base := filepath.Base(s)
	switch base {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	return base
}

func cleanName(name string) (string, error) {
	base := baseName(name)
	if base == "" {
		return "", ErrEmptyName
	}
	return base, nil
}

func cleanFilename(filename string) (string, error) {
	base := baseName(filename)
	if base == "" {
		return "", ErrInvalidFilename
	}
	return base, nil
}

// uploadFileName keeps the uploaded base name. Hidden or empty names are replaced by a
// random one that keeps the extension.
func uploadFileName(filename string) string {
	base := baseName(filename)
	if base != "" && !strings.HasPrefix(base, ".") {
		return base
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}
