package integrity

import (
	"context"
	"errors"
	"fmt"

	"world-sync/core/snapshot"
	"world-sync/core/storage"
	"world-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrMirrorDisabled is returned by mirror checks when no object storage is configured.
var ErrMirrorDisabled = errors.New("snapshot mirror is disabled")

// Service handles integrity checks.
type Service struct {
	db     *gorm.DB
	store  *snapshot.Store
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new integrity service. client may be nil when the
// snapshot mirror is disabled.
func NewService(db *gorm.DB, store *snapshot.Store, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		store:  store,
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// CheckSchema compares the tables with the models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckSnapshots returns worlds flagged map_available without snapshot files.
func (s *Service) CheckSnapshots(ctx context.Context) ([]string, error) {
	return checks.CheckSnapshots(ctx, s.db, s.store)
}

// FixSnapshots clears the map flag of the given worlds.
func (s *Service) FixSnapshots(ctx context.Context, missing []string) error {
	return checks.FixSnapshots(ctx, s.db, s.logger, missing)
}

// MirrorEnabled reports whether an object storage client is configured.
func (s *Service) MirrorEnabled() bool {
	return s.client != nil
}

// CheckMirror returns worlds with local snapshot files that are absent from the bucket.
func (s *Service) CheckMirror(ctx context.Context) ([]string, error) {
	if !s.MirrorEnabled() {
		return nil, ErrMirrorDisabled
	}

	ids, err := checks.MapWorlds(ctx, s.db)
	if err != nil {
		return nil, err
	}
	local := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.store.Exists(id) {
			local = append(local, id)
		}
	}
	return checks.CheckMirror(ctx, s.client, s.bucket, local)
}

// FixMirror uploads the local snapshot files of the given worlds.
func (s *Service) FixMirror(ctx context.Context, missing []string) error {
	if !s.MirrorEnabled() {
		return ErrMirrorDisabled
	}

	mirror := snapshot.NewMirror(s.client, s.bucket, "", s.logger)
	for _, id := range missing {
		files, err := s.store.Files(id)
		if err != nil {
			return fmt.Errorf("world %s: %w", id, err)
		}
		if err := mirror.Upload(ctx, id, files); err != nil {
			return fmt.Errorf("world %s: %w", id, err)
		}
		s.logger.Info("Re-uploaded snapshot", zap.String("world", id), zap.Int("files", len(files)))
	}
	return nil
}
