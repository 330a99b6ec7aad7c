// Package archive retains raw imported statement files so an import
// can be audited or replayed later. Archiving is optional and
// best-effort; callers treat a nil Archiver as disabled.
package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// Archiver stores a blob under a key.
type Archiver interface {
	Store(ctx context.Context, key string, data []byte) error
}

// GCS archives blobs in a Google Cloud Storage bucket.
type GCS struct {
	bucket string
}

// NewGCS creates an archiver writing to the given bucket. Credentials
// come from the environment.
func NewGCS(bucket string) *GCS {
	return &GCS{bucket: bucket}
}

// Store writes data to gs://<bucket>/<key>.
func (g *GCS) Store(ctx context.Context, key string, data []byte) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write archive object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize archive object %s: %w", key, err)
	}
	return nil
}
