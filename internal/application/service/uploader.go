package service

import (
	"context"
	"io"
)

// Uploader stores user files in the external file-storage service.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
