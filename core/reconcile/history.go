package reconcile

import (
	"context"
	"fmt"
	"time"

	"world-sync/core/models"

	"gorm.io/gorm"
)

// AppendHistory writes one history row per non-archived player and tribe of
// each world, dated day, and evicts rows older than retentionDays before day.
// Rows already written for day are replaced, so a repeated cutover is harmless.
// It returns the number of rows written.
func AppendHistory(ctx context.Context, db *gorm.DB, worldIDs []string, day time.Time, retentionDays int) (int, error) {
	if len(worldIDs) == 0 {
		return 0, nil
	}

	written := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("world_id IN ? AND date = ?", worldIDs, day).Delete(&models.PlayerHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("world_id IN ? AND date = ?", worldIDs, day).Delete(&models.TribeHistory{}).Error; err != nil {
			return err
		}

		var players []models.Player
		if err := tx.Where("world_id IN ? AND archived = ?", worldIDs, false).Find(&players).Error; err != nil {
			return err
		}
		if len(players) > 0 {
			rows := make([]models.PlayerHistory, 0, len(players))
			for _, p := range players {
				rows = append(rows, models.PlayerHistory{
					WorldID:  p.WorldID,
					PlayerID: p.ID,
					Date:     day,
					TribeID:  p.TribeID,
					Stats:    p.Stats,
				})
			}
			if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
				return err
			}
			written += len(rows)
		}

		var tribes []models.Tribe
		if err := tx.Where("world_id IN ? AND archived = ?", worldIDs, false).Find(&tribes).Error; err != nil {
			return err
		}
		if len(tribes) > 0 {
			rows := make([]models.TribeHistory, 0, len(tribes))
			for _, t := range tribes {
				rows = append(rows, models.TribeHistory{
					WorldID: t.WorldID,
					TribeID: t.ID,
					Date:    day,
					Members: t.Members,
					Stats:   t.Stats,
				})
			}
			if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
				return err
			}
			written += len(rows)
		}

		if retentionDays > 0 {
			cutoff := day.AddDate(0, 0, -retentionDays)
			if err := tx.Where("world_id IN ? AND date < ?", worldIDs, cutoff).Delete(&models.PlayerHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("world_id IN ? AND date < ?", worldIDs, cutoff).Delete(&models.TribeHistory{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: history: %w", ErrCommitFailure, err)
	}
	return written, nil
}
