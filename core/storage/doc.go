// Package storage mirrors snapshot files to S3-compatible object storage.
//
// Client is the narrow slice of the MinIO API the mirror needs, so tests can
// substitute core/storage/mocks. NewClient configures strict transport
// timeouts; the connection is established lazily by the first call, usually
// EnsureBucket.
package storage
