package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"photoshare/internal/models"

	"github.com/gabriel-vasile/mimetype"
)

// DiskPrefix is the URL path the disk store's files are served under.
const DiskPrefix = "/uploads/"

// DiskStore keeps images as flat files in one directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir is the directory served at DiskPrefix.
func (s *DiskStore) Dir() string { return s.dir }

// path maps a ref onto a file inside dir; only the last segment is used so a
// ref can never escape the upload directory.
func (s *DiskStore) path(ref string) (string, error) {
	name := lastSegment(ref)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: image ref %q", models.ErrInvalidID, ref)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *DiskStore) Save(_ context.Context, obj Object) (string, error) {
	p, err := s.path(obj.Name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, obj.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return DiskPrefix + filepath.Base(p), nil
}

func (s *DiskStore) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	p, err := s.path(ref)
	if err != nil {
		return nil, "", err
	}
	mtype, err := mimetype.DetectFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("image %s: %w", ref, models.ErrNotFound)
		}
		return nil, "", fmt.Errorf("detect image type: %w", err)
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("image %s: %w", ref, models.ErrNotFound)
		}
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	return f, mtype.String(), nil
}

func (s *DiskStore) Delete(_ context.Context, ref string) error {
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
