package checks

import (
	"context"
	"fmt"
	"path"

	"world-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// CheckMirror returns the worlds whose info object is absent from bucket.
func CheckMirror(ctx context.Context, client storage.Client, bucket string, worlds []string) ([]string, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	missing := []string{}
	for _, world := range worlds {
		opts := minio.ListObjectsOptions{
			Prefix:  path.Join(world, "info"),
			MaxKeys: 1,
		}

		found, err := anyObject(ctx, client, bucket, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", world, err)
		}

		if !found {
			missing = append(missing, world)
		}
	}
	return missing, nil
}

// anyObject reports whether the listing yields at least one object. The
// listing is cancelled once the first result is read.
func anyObject(ctx context.Context, client storage.Client, bucket string, opts minio.ListObjectsOptions) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return false, obj.Err
		}
		return true, nil
	}
	return false, nil
}
