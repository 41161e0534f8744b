package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object. Location is the public URL
// served to clients; Key is what gets persisted alongside the team.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores team logo blobs. Implementations must be safe for
// concurrent use.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
