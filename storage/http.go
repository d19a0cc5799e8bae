package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPStore is a client for a remote object store exposing
// POST {base}/objects (multipart "file") and DELETE {base}/objects?url=...
type HTTPStore struct {
	client *resty.Client
}

func NewHTTPStore(baseURL, apiKey string, timeout time.Duration) *HTTPStore {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPStore{client: client}
}

func (s *HTTPStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (Blob, error) {
	var out Blob
	resp, err := s.client.R().
		SetContext(ctx).
		SetMultipartField("file", filename, contentType, r).
		SetResult(&out).
		Post("/objects")
	if err != nil {
		return Blob{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	if resp.IsError() {
		return Blob{}, fmt.Errorf("upload %s: blob store returned %d: %s", filename, resp.StatusCode(), resp.String())
	}
	if out.URL == "" {
		return Blob{}, fmt.Errorf("upload %s: blob store returned no url", filename)
	}
	return out, nil
}

func (s *HTTPStore) Delete(ctx context.Context, url string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("url", url).
		Delete("/objects")
	if err != nil {
		return fmt.Errorf("delete %s: %w", url, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	case resp.IsError():
		return fmt.Errorf("delete %s: blob store returned %d", url, resp.StatusCode())
	}
	return nil
}
