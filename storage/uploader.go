package storage

import (
	"context"
	"io"
)

// UploadResult describes the stored object.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader archives completed tournament snapshots to object storage.
// A nil uploader disables archiving.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
