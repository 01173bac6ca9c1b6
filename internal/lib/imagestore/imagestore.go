package imagestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("only JPEG, PNG, GIF and WEBP images are allowed")
	ErrTooLarge        = errors.New("image exceeds the maximum allowed size")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store keeps uploaded product images on disk under random names, so a
// hostile original filename can never escape the directory.
type Store struct {
	dir     string
	maxSize int64
}

func New(dir string, maxSizeMB int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSizeMB << 20}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the upload to disk and returns the stored file name
// (uuid + original extension).
func (s *Store) Save(r io.Reader, originalName, contentType string) (string, error) {
	if !allowedTypes[contentType] {
		return "", ErrUnsupportedType
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	// LimitReader with one extra byte detects oversized uploads.
	written, err := io.Copy(dst, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(dst.Name())
		return "", ErrTooLarge
	}
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error; the
// row may reference an image that was already cleaned up.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
