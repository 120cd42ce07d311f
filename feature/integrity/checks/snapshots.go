package checks

import (
	"context"
	"fmt"

	"world-sync/core/models"
	"world-sync/core/snapshot"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MapWorlds returns the ids of worlds flagged map_available.
func MapWorlds(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&models.World{}).
		Where("map_available = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list map worlds: %w", err)
	}
	return ids, nil
}

// CheckSnapshots returns the worlds flagged map_available without snapshot files.
func CheckSnapshots(ctx context.Context, db *gorm.DB, store *snapshot.Store) ([]string, error) {
	ids, err := MapWorlds(ctx, db)
	if err != nil {
		return nil, err
	}

	missing := []string{}
	for _, id := range ids {
		if !store.Exists(id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// FixSnapshots clears map_available on the given worlds. The next data sync
// writes the files and sets the flag again.
func FixSnapshots(ctx context.Context, db *gorm.DB, logger *zap.Logger, missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	err := db.WithContext(ctx).Model(&models.World{}).
		Where("id IN ?", missing).
		Update("map_available", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear map flag: %w", err)
	}
	logger.Info("Cleared map flag of worlds without snapshot", zap.Strings("worlds", missing))
	return nil
}
