package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type (must be jpg, jpeg, png, gif or webp)")
	ErrImageNotFound    = errors.New("image not found")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalImageStore is the capture/picker collaborator: it files picked
// images under one directory and hands back opaque URI strings that the
// observation records carry.
type LocalImageStore struct {
	dir string
}

func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}
	return &LocalImageStore{dir: dir}, nil
}

// Save stores the image under a fresh name and returns its URI.
// The original filename only contributes its extension.
func (s *LocalImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedImage
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return name, nil
}

// path resolves a URI to a file path, refusing anything that would
// escape the image directory.
func (s *LocalImageStore) path(uri string) (string, error) {
	if uri == "" || filepath.Base(uri) != uri {
		return "", ErrImageNotFound
	}
	return filepath.Join(s.dir, uri), nil
}

func (s *LocalImageStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	path, err := s.path(uri)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return f, nil
}

func (s *LocalImageStore) Remove(ctx context.Context, uri string) error {
	path, err := s.path(uri)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
