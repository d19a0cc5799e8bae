package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps blobs on disk below dir and serves them from publicURL.
type LocalStore struct {
	dir       string
	publicURL string
}

func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (Blob, error) {
	id := uuid.NewString()
	name := id + strings.ToLower(filepath.Ext(filename))

	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to create destination file: %w", err)
	}

	// Copy the content, dropping the partial file on any failure
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return Blob{}, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return Blob{}, fmt.Errorf("failed to write file: %w", err)
	}
	return Blob{ID: id, URL: s.publicURL + "/" + name}, nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	name, ok := s.nameOf(url)
	if !ok {
		return fmt.Errorf("%s is not managed by this store", url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) nameOf(url string) (string, bool) {
	name, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", false
	}
	return name, true
}
