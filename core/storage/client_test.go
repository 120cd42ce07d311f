package storage_test

import (
	"context"
	"errors"
	"testing"

	"world-sync/core/storage"
	"world-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("PlainEndpoint", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "key",
			SecretKey: "secret",
			Bucket:    "world-snapshots",
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("SchemeIsStripped", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{
			Endpoint: "https://s3.amazonaws.com",
			UseSSL:   true,
			Region:   "sa-east-1",
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "snaps").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "snaps", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "snaps").Return(false, nil)
		client.On("MakeBucket", ctx, "snaps", minio.MakeBucketOptions{Region: "eu"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "snaps", "eu"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "snaps").Return(false, errors.New("denied"))

		err := storage.EnsureBucket(ctx, client, "snaps", "")
		assert.ErrorContains(t, err, "denied")
	})
}
