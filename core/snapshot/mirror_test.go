package snapshot

import (
	"context"
	"errors"
	"testing"

	"world-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMirror_Upload(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	mirror := NewMirror(client, "snaps", "", nil)
	store := NewStore(Config{Dir: t.TempDir()}, mirror, nil)

	listing := make(chan minio.ObjectInfo, 3)
	listing <- minio.ObjectInfo{Key: "br52/55"}
	listing <- minio.ObjectInfo{Key: "br52/33"}
	listing <- minio.ObjectInfo{Key: "br52/archive/old"}
	close(listing)

	for _, name := range []string{"br52/54", "br52/55", "br52/info"} {
		client.On("PutObject", ctx, "snaps", name, mock.Anything, mock.AnythingOfType("int64"),
			minio.PutObjectOptions{ContentType: "application/json", ContentEncoding: "gzip"}).
			Return(minio.UploadInfo{}, nil).Once()
	}
	client.On("ListObjects", ctx, "snaps", minio.ListObjectsOptions{Prefix: "br52/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(listing))
	client.On("RemoveObject", ctx, "snaps", "br52/33", minio.RemoveObjectOptions{}).Return(nil).Once()

	_, err := store.Write(ctx, testSnapshot())
	require.NoError(t, err)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "RemoveObject", ctx, "snaps", "br52/archive/old", mock.Anything)
}

func TestMirror_UploadFailure(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	store := NewStore(Config{Dir: t.TempDir()}, NewMirror(client, "snaps", "", nil), nil)

	client.On("PutObject", ctx, "snaps", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("offline"))

	files, err := store.Write(ctx, testSnapshot())
	assert.ErrorContains(t, err, "offline")
	assert.NotEmpty(t, files, "local files are kept when the mirror fails")
}

func TestMirror_Prepare(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", ctx, "snaps").Return(false, nil)
	client.On("MakeBucket", ctx, "snaps", minio.MakeBucketOptions{Region: "br"}).Return(nil)

	require.NoError(t, NewMirror(client, "snaps", "br", nil).Prepare(ctx))
	client.AssertExpectations(t)
}
