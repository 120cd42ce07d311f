package scheduler

import (
	"context"
	"fmt"
	"time"

	"world-sync/core/models"

	"go.uber.org/zap"
)

// SyncWorld queues a typ sync of one world. It reports false when the world
// is already queued or running for typ.
func (s *Scheduler) SyncWorld(ctx context.Context, typ SyncType, worldID string) (bool, error) {
	if _, err := s.world(ctx, worldID); err != nil {
		return false, err
	}
	n, err := s.Enqueue(ctx, typ, worldID)
	return n > 0, err
}

// SyncAll queues a typ sync of every open world with typ enabled, skipping
// worlds already queued. It returns the number of worlds queued.
func (s *Scheduler) SyncAll(ctx context.Context, typ SyncType) (int, error) {
	if _, err := ParseSyncType(string(typ)); err != nil {
		return 0, err
	}

	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.World{}).
		Where("open = ? AND "+enabledColumn(typ)+" = ?", true, true).
		Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list %s worlds: %w", typ, err)
	}

	n, err := s.Enqueue(ctx, typ, ids...)
	if err != nil {
		return n, err
	}
	s.logger.Info("Queued worlds", zap.String("type", string(typ)), zap.Int("queued", n), zap.Int("eligible", len(ids)))
	return n, nil
}

// ToggleWorld flips the typ sync switch of a world and returns the new value.
func (s *Scheduler) ToggleWorld(ctx context.Context, typ SyncType, worldID string) (bool, error) {
	if _, err := ParseSyncType(string(typ)); err != nil {
		return false, err
	}
	world, err := s.world(ctx, worldID)
	if err != nil {
		return false, err
	}

	enabled := !syncEnabled(world, typ)
	if err := s.db.WithContext(ctx).Model(&models.World{}).Where("id = ?", worldID).
		Update(enabledColumn(typ), enabled).Error; err != nil {
		return false, fmt.Errorf("failed to toggle %s sync of %s: %w", typ, worldID, err)
	}
	s.logger.Info("World sync toggled",
		zap.String("world", worldID), zap.String("type", string(typ)), zap.Bool("enabled", enabled))
	return enabled, nil
}

// PoolStatus describes one pool. Queued and Active come from the persisted
// queue; Running lists the attempts of this process.
type PoolStatus struct {
	Type        SyncType `json:"type"`
	Concurrency int      `json:"concurrency"`
	Queued      []string `json:"queued"`
	Active      []string `json:"active"`
	Running     []string `json:"running"`
}

// WorldStatus is the sync state of one world.
type WorldStatus struct {
	ID                         string     `json:"id"`
	Open                       bool       `json:"open"`
	SyncDataEnabled            bool       `json:"sync_data_enabled"`
	SyncAchievementsEnabled    bool       `json:"sync_achievements_enabled"`
	LastDataSyncStatus         string     `json:"last_data_sync_status"`
	LastDataSyncAt             *time.Time `json:"last_data_sync_at"`
	LastAchievementsSyncStatus string     `json:"last_achievements_sync_status"`
	LastAchievementsSyncAt     *time.Time `json:"last_achievements_sync_at"`
}

// Status is the state of the pools and worlds.
type Status struct {
	Pools  []PoolStatus  `json:"pools"`
	Worlds []WorldStatus `json:"worlds"`
}

// Status reports the pools and the sync state of every world.
func (s *Scheduler) Status(ctx context.Context) (*Status, error) {
	var items []models.QueueItem
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load sync queue: %w", err)
	}
	var worlds []models.World
	if err := s.db.WithContext(ctx).Order("id").Find(&worlds).Error; err != nil {
		return nil, fmt.Errorf("failed to load worlds: %w", err)
	}

	status := &Status{}
	for _, typ := range Types() {
		p := s.pool(typ)
		_, running := p.snapshot()
		ps := PoolStatus{
			Type:        typ,
			Concurrency: p.size,
			Queued:      []string{},
			Active:      []string{},
			Running:     running,
		}
		for _, item := range items {
			if item.Type != string(typ) {
				continue
			}
			if item.Active {
				ps.Active = append(ps.Active, item.WorldID)
			} else {
				ps.Queued = append(ps.Queued, item.WorldID)
			}
		}
		status.Pools = append(status.Pools, ps)
	}

	for _, w := range worlds {
		status.Worlds = append(status.Worlds, WorldStatus{
			ID:                         w.ID,
			Open:                       w.Open,
			SyncDataEnabled:            w.SyncDataEnabled,
			SyncAchievementsEnabled:    w.SyncAchievementsEnabled,
			LastDataSyncStatus:         w.LastDataSyncStatus,
			LastDataSyncAt:             w.LastDataSyncAt,
			LastAchievementsSyncStatus: w.LastAchievementsSyncStatus,
			LastAchievementsSyncAt:     w.LastAchievementsSyncAt,
		})
	}
	return status, nil
}
