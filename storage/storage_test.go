package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	blob, err := store.Upload(ctx, "Notes.PDF", "application/pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(blob.URL, "/uploads/"+blob.ID))
	assert.True(t, strings.HasSuffix(blob.URL, ".pdf"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(blob.URL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, blob.URL))
	assert.ErrorIs(t, store.Delete(ctx, blob.URL), ErrNotFound)
}

type brokenReader struct{ sent bool }

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestLocalStoreDropsPartialUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "big.zip", "application/zip", &brokenReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStoreRejectsForeignURLs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	for _, url := range []string{"/uploads/../etc/passwd", "/uploads/", "https://cdn.example/x.png", "/uploads/a/b.png"} {
		err := store.Delete(ctx, url)
		require.Error(t, err, url)
		assert.NotErrorIs(t, err, ErrNotFound, url)
	}
}

func TestDeleteAllDedupesAndCollectsFailures(t *testing.T) {
	store := NewMemoryStore()
	store.Put("mem://1/a.png")
	store.Put("mem://2/b.png")
	store.FailDeletes("mem://2/b.png", true)

	failed := DeleteAll(context.Background(), store, []string{
		"mem://1/a.png", "", "mem://1/a.png", "mem://2/b.png", "mem://3/missing.png",
	})
	require.Len(t, failed, 1)
	assert.Equal(t, "mem://2/b.png", failed[0].URL)
	assert.NotEmpty(t, failed[0].Err)

	deleted := store.Deleted()
	sort.Strings(deleted)
	assert.Equal(t, []string{"mem://1/a.png", "mem://3/missing.png"}, deleted)
	assert.True(t, store.Has("mem://2/b.png"))

	assert.Nil(t, DeleteAll(context.Background(), store, nil))
}

func TestHTTPStore(t *testing.T) {
	var deletes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodPost:
			file, header, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			body, _ := io.ReadAll(file)
			assert.Equal(t, "pdf-bytes", string(body))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"abc","url":"https://cdn.example/abc/` + header.Filename + `"}`))
		case http.MethodDelete:
			deletes.Add(1)
			if r.URL.Query().Get("url") == "https://cdn.example/gone" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if r.URL.Query().Get("url") == "https://cdn.example/broken" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL+"/", "key-1", 5*time.Second)
	ctx := context.Background()

	blob, err := store.Upload(ctx, "cert.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "abc", blob.ID)
	assert.Equal(t, "https://cdn.example/abc/cert.pdf", blob.URL)

	assert.NoError(t, store.Delete(ctx, blob.URL))
	assert.ErrorIs(t, store.Delete(ctx, "https://cdn.example/gone"), ErrNotFound)
	err = store.Delete(ctx, "https://cdn.example/broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 3, deletes.Load())
}
