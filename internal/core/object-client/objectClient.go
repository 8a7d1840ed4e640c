package objectclient

import (
	"context"
	"io"
)

// ObjectClient defines interactions with S3 or any object storage.
// It is abstract so AWS can be replaced with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (uri string, err error)
	GetFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error

	GetObjectReader(ctx context.Context, key string) (io.ReadCloser, error)
}
