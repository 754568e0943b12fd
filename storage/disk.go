package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// UploadsURLPrefix is where disk images are served from
const UploadsURLPrefix = "/uploads/"

// DiskStore keeps images in a local directory served under /uploads/
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir is the directory images are written to
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid image name %q", name)
	}

	file, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("error creating image file: %w", err)
	}

	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("error writing image file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("error closing image file: %w", err)
	}

	return UploadsURLPrefix + name, nil
}

func (s *DiskStore) Delete(ctx context.Context, url string) error {
	if !s.Owns(url) {
		return nil
	}

	name := strings.TrimPrefix(url, UploadsURLPrefix)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error removing image file: %w", err)
	}
	return nil
}

// Owns only accepts a bare file name under the uploads prefix
func (s *DiskStore) Owns(url string) bool {
	if !strings.HasPrefix(url, UploadsURLPrefix) {
		return false
	}
	name := strings.TrimPrefix(url, UploadsURLPrefix)
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
