package reconcile

import (
	"context"
	"fmt"

	"world-sync/core/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 100

// Apply commits plan in one transaction.
func Apply(ctx context.Context, db *gorm.DB, plan *Plan) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(plan.Conquests) > 0 {
			if err := tx.CreateInBatches(&plan.Conquests, batchSize).Error; err != nil {
				return fmt.Errorf("conquests: %w", err)
			}
		}
		if len(plan.TribeChanges) > 0 {
			if err := tx.CreateInBatches(&plan.TribeChanges, batchSize).Error; err != nil {
				return fmt.Errorf("tribe changes: %w", err)
			}
		}

		upsert := func() *gorm.DB { return tx.Clauses(clause.OnConflict{UpdateAll: true}) }
		if len(plan.Tribes) > 0 {
			if err := upsert().CreateInBatches(&plan.Tribes, batchSize).Error; err != nil {
				return fmt.Errorf("tribes: %w", err)
			}
		}
		if len(plan.Players) > 0 {
			if err := upsert().CreateInBatches(&plan.Players, batchSize).Error; err != nil {
				return fmt.Errorf("players: %w", err)
			}
		}
		if len(plan.Villages) > 0 {
			if err := upsert().CreateInBatches(&plan.Villages, batchSize).Error; err != nil {
				return fmt.Errorf("villages: %w", err)
			}
		}
		if len(plan.Provinces) > 0 {
			if err := upsert().CreateInBatches(&plan.Provinces, batchSize).Error; err != nil {
				return fmt.Errorf("provinces: %w", err)
			}
		}

		if len(plan.ArchivePlayers) > 0 {
			if err := tx.Model(&models.Player{}).
				Where("world_id = ? AND id IN ?", plan.WorldID, plan.ArchivePlayers).
				Update("archived", true).Error; err != nil {
				return fmt.Errorf("archive players: %w", err)
			}
		}
		if len(plan.ArchiveTribes) > 0 {
			if err := tx.Model(&models.Tribe{}).
				Where("world_id = ? AND id IN ?", plan.WorldID, plan.ArchiveTribes).
				Update("archived", true).Error; err != nil {
				return fmt.Errorf("archive tribes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommitFailure, plan.WorldID, err)
	}
	return nil
}

// ApplyAchievements commits plan in one transaction.
func ApplyAchievements(ctx context.Context, db *gorm.DB, plan *AchievementPlan) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(plan.Add) > 0 {
			if err := tx.CreateInBatches(&plan.Add, batchSize).Error; err != nil {
				return fmt.Errorf("add achievements: %w", err)
			}
		}
		for _, row := range plan.Update {
			if err := tx.Model(&models.Achievement{}).Where("id = ?", row.ID).Updates(map[string]any{
				"level":           row.Level,
				"time_last_level": row.TimeLastLevel,
			}).Error; err != nil {
				return fmt.Errorf("update achievement %d: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommitFailure, plan.WorldID, err)
	}
	return nil
}
