package snapshot

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"world-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Mirror uploads snapshot files to an object storage bucket.
type Mirror struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
}

// NewMirror creates a mirror into bucket.
func NewMirror(client storage.Client, bucket, region string, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{client: client, bucket: bucket, region: region, logger: logger}
}

// Prepare creates the bucket when missing.
func (m *Mirror) Prepare(ctx context.Context) error {
	return storage.EnsureBucket(ctx, m.client, m.bucket, m.region)
}

// Upload puts every file under <worldID>/ and removes objects of that prefix
// that are not part of files.
func (m *Mirror) Upload(ctx context.Context, worldID string, files []File) error {
	keep := make(map[string]bool, len(files))
	for _, f := range files {
		object := path.Join(worldID, f.Name)
		keep[object] = true

		if err := m.put(ctx, object, f); err != nil {
			return err
		}
	}

	prefix := worldID + "/"
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if keep[obj.Key] || strings.Contains(strings.TrimPrefix(obj.Key, prefix), "/") {
			continue
		}
		if err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove %s: %w", obj.Key, err)
		}
		m.logger.Debug("Removed stale snapshot object", zap.String("object", obj.Key))
	}
	return nil
}

func (m *Mirror) put(ctx context.Context, object string, f File) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer file.Close()

	_, err = m.client.PutObject(ctx, m.bucket, object, file, f.Size, minio.PutObjectOptions{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", object, err)
	}
	return nil
}
