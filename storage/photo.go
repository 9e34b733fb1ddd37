package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// URLPrefix is the public path under which stored photos are served.
const URLPrefix = "/uploads/"

var (
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrInvalidFilename = errors.New("invalid photo filename")
)

// PhotoInfo describes a stored photo.
type PhotoInfo struct {
	Size        int64
	ContentType string
}

// PhotoStore is the binary side channel for report photos, keyed by generated filename.
type PhotoStore interface {
	Save(ctx context.Context, r io.Reader, size int64, originalName, contentType string) (string, error)
	Open(ctx context.Context, filename string) (io.ReadCloser, PhotoInfo, error)
}

// PhotoURL is the reference embedded in the issue document.
func PhotoURL(filename string) string {
	return URLPrefix + filename
}

// generateFilename never reuses a name, so concurrent uploads cannot collide.
func generateFilename(originalName string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
}

func checkFilename(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrInvalidFilename
	}
	return nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// DiskStore keeps photos as plain files in one directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	log.Info().Str("dir", dir).Msg("Disk photo storage initialized")
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, r io.Reader, _ int64, originalName, _ string) (string, error) {
	filename := generateFilename(originalName)
	path := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write photo file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close photo file: %w", err)
	}
	return filename, nil
}

func (s *DiskStore) Open(_ context.Context, filename string) (io.ReadCloser, PhotoInfo, error) {
	if err := checkFilename(filename); err != nil {
		return nil, PhotoInfo{}, err
	}

	f, err := os.Open(filepath.Join(s.dir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, PhotoInfo{}, ErrPhotoNotFound
		}
		return nil, PhotoInfo{}, fmt.Errorf("open photo: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, PhotoInfo{}, fmt.Errorf("stat photo: %w", err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, PhotoInfo{}, ErrPhotoNotFound
	}

	return f, PhotoInfo{Size: stat.Size(), ContentType: contentTypeFor(filename)}, nil
}
