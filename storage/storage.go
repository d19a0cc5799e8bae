// Package storage talks to the blob store holding uploaded images, PDFs and certificates.
// Blobs are addressed by the URL returned from Upload.
package storage

import (
	"context"
	"errors"
	"io"
	"log"

	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("blob not found")

type Blob struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type BlobStore interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (Blob, error)
	Delete(ctx context.Context, url string) error
}

// DeleteFailure is a blob reference that could not be removed.
type DeleteFailure struct {
	URL string `json:"url"`
	Err string `json:"error"`
}

const deleteConcurrency = 8

// DeleteAll removes every referenced blob in parallel and returns the ones that failed.
// Blank and repeated references are skipped; a missing blob counts as deleted.
func DeleteAll(ctx context.Context, store BlobStore, urls []string) []DeleteFailure {
	unique := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}
	if len(unique) == 0 {
		return nil
	}

	errs := make([]error, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for i, u := range unique {
		i, u := i, u
		g.Go(func() error {
			if err := store.Delete(gctx, u); err != nil && !errors.Is(err, ErrNotFound) {
				errs[i] = err
			}
			// never cancel siblings; each delete stands alone
			return nil
		})
	}
	_ = g.Wait()

	var failures []DeleteFailure
	for i, err := range errs {
		if err != nil {
			log.Printf("[BLOB] delete %s failed: %v", unique[i], err)
			failures = append(failures, DeleteFailure{URL: unique[i], Err: err.Error()})
		}
	}
	return failures
}
