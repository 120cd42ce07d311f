package reconcile

import (
	"context"
	"fmt"

	"world-sync/core/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// LoadState loads the stored villages, players and tribes of worldID.
// The three tables are read concurrently.
func LoadState(ctx context.Context, db *gorm.DB, worldID string) (*State, error) {
	var (
		villages []models.Village
		players  []models.Player
		tribes   []models.Tribe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.WithContext(gctx).Where("world_id = ?", worldID).Find(&villages).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).Where("world_id = ?", worldID).Find(&players).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).Where("world_id = ?", worldID).Find(&tribes).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load state of %s: %w", worldID, err)
	}

	state := NewState(worldID)
	for _, v := range villages {
		state.Villages[v.ID] = v
	}
	for _, p := range players {
		state.Players[p.ID] = p
	}
	for _, t := range tribes {
		state.Tribes[t.ID] = t
	}
	return state, nil
}

// LoadAchievementState loads the achievement ledger of worldID.
func LoadAchievementState(ctx context.Context, db *gorm.DB, worldID string) (*AchievementState, error) {
	var rows []models.Achievement
	if err := db.WithContext(ctx).Where("world_id = ?", worldID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements of %s: %w", worldID, err)
	}
	return NewAchievementState(worldID, rows), nil
}
