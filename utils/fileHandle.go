package utils

import (
	"context"
	"coursetrack/apperr"
	"coursetrack/storage"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxUploadSize caps a single uploaded file at 20 MB
const MaxUploadSize = 20 << 20

var allowedUploadExt = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".svg": true, ".mp4": true, ".zip": true, ".txt": true, ".md": true,
}

// SaveUploadedFile streams a multipart file into the blob store
func SaveUploadedFile(ctx context.Context, store storage.BlobStore, file *multipart.FileHeader) (storage.Blob, error) {
	if file == nil {
		return storage.Blob{}, apperr.Validation("No file uploaded!")
	}
	if file.Size > MaxUploadSize {
		return storage.Blob{}, apperr.Validation("File is larger than 20 MB!")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExt[ext] {
		return storage.Blob{}, apperr.Validation("File type " + ext + " is not allowed!")
	}

	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return storage.Blob{}, apperr.Wrap(err, "Failed to read uploaded file!")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	blob, err := store.Upload(ctx, filepath.Base(file.Filename), contentType, src)
	if err != nil {
		return storage.Blob{}, apperr.Wrap(err, "Failed to store file!")
	}
	return blob, nil
}
