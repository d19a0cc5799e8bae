package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process BlobStore used by tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failing map[string]bool
	deleted []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string][]byte{}, failing: map[string]bool{}}
}

func (m *MemoryStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (Blob, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return Blob{}, err
	}
	id := uuid.NewString()
	url := "mem://" + id + "/" + filename

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[url] = buf.Bytes()
	return Blob{ID: id, URL: url}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing[url] {
		return errors.New("blob store unavailable")
	}
	m.deleted = append(m.deleted, url)
	if _, ok := m.blobs[url]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, url)
	return nil
}

// Put registers a blob under url without going through Upload.
func (m *MemoryStore) Put(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[url] = nil
}

// FailDeletes makes Delete fail for url until called with fail=false.
func (m *MemoryStore) FailDeletes(url string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[url] = fail
}

func (m *MemoryStore) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[url]
	return ok
}

// Deleted lists every url a delete was attempted for and did not fail.
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
