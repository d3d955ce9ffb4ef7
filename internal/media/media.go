// Package media abstracts the binary object storage backend used for video
// files, thumbnails, and profile images.
package media

import (
	"context"
	"io"

	"github.com/ayushmaan703/videotube/internal/models"
)

// Storage uploads and deletes opaque media blobs. Implementations return a
// MediaRef whose StorageID is the only handle needed for later deletion.
type Storage interface {
	Upload(ctx context.Context, body io.Reader, contentType, folder string) (models.MediaRef, error)
	Delete(ctx context.Context, storageID string) error
}
