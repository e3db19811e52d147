package port

import (
	"context"
	"io"
)

// UploadInput describes one object upload.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput holds the stored object's location.
type UploadOutput struct {
	Bucket   string
	Key      string
	Location string
}

// ObjectStorage archives source documents before extraction.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
}
