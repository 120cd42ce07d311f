package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"world-sync/core/models"
	"world-sync/core/reconcile"
	"world-sync/core/session"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Background task names, as stored in the tasks table.
const (
	TaskDataAll         = "data_all"
	TaskAchievementsAll = "achievements_all"
	TaskDiscovery       = "worlds_discovery"
	TaskCleanShares     = "clean_shares"
)

type task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

func (s *Scheduler) tasks() []task {
	return []task{
		{TaskDataAll, minutes(s.cfg.DataIntervalMinutes, 60), func(ctx context.Context) error {
			_, err := s.SyncAll(ctx, TypeData)
			return err
		}},
		{TaskAchievementsAll, minutes(s.cfg.AchievementsIntervalMinutes, 360), func(ctx context.Context) error {
			_, err := s.SyncAll(ctx, TypeAchievements)
			return err
		}},
		{TaskDiscovery, minutes(s.cfg.DiscoveryIntervalMinutes, 1440), func(ctx context.Context) error {
			_, err := s.DiscoverWorlds(ctx)
			return err
		}},
		{TaskCleanShares, minutes(s.cfg.CleanSharesIntervalMinutes, 1440), func(ctx context.Context) error {
			_, err := s.CleanShares(ctx)
			return err
		}},
	}
}

// Run checks the background tasks and the history cutover on every tick
// until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Tick())
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	for _, t := range s.tasks() {
		if err := s.runIfDue(ctx, t); err != nil {
			s.logger.Error("Background task failed", zap.String("task", t.name), zap.Error(err))
		}
	}
	if _, err := s.HistoryCutover(ctx); err != nil {
		s.logger.Error("History cutover failed", zap.Error(err))
	}
}

// runIfDue runs t when its interval has elapsed since the recorded last run.
// The run is recorded even when it fails so a broken task waits a full interval.
func (s *Scheduler) runIfDue(ctx context.Context, t task) error {
	now := s.now()
	var last models.Task
	err := s.db.WithContext(ctx).Where("name = ?", t.name).First(&last).Error
	switch {
	case err == nil:
		if now.Sub(last.LastRunAt) < t.interval {
			return nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to load task %s: %w", t.name, err)
	}

	s.logger.Debug("Running background task", zap.String("task", t.name))
	runErr := t.run(ctx)

	row := models.Task{Name: t.name, LastRunAt: now}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to record task %s: %w", t.name, err))
	}
	return runErr
}

// DiscoverWorlds logs into every enabled market and stores the worlds listed
// by the login response that are not known yet. It returns the number of
// worlds created.
func (s *Scheduler) DiscoverWorlds(ctx context.Context) (int, error) {
	var markets []models.Market
	if err := s.db.WithContext(ctx).Where("enabled = ?", true).Order("id").Find(&markets).Error; err != nil {
		return 0, fmt.Errorf("failed to list markets: %w", err)
	}

	created := 0
	var errs []error
	for _, m := range markets {
		n, err := s.discoverMarket(ctx, m.ID)
		created += n
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.ID, err))
		}
	}
	return created, errors.Join(errs...)
}

func (s *Scheduler) discoverMarket(ctx context.Context, market string) (int, error) {
	logger := s.logger.With(zap.String("market", market))
	creds, err := s.credentials(ctx, market)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.session.HandshakeTimeout()+4*s.session.RequestTimeout())
	defer cancel()

	client, err := session.Dial(ctx, s.dialer, market, s.session, logger)
	if err != nil {
		return 0, fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Kill()

	identity, err := client.Auth(ctx, market, creds, s.cache)
	if err != nil {
		return 0, err
	}

	var known []string
	if err := s.db.WithContext(ctx).Model(&models.World{}).Where("market_id = ?", market).Pluck("id", &known).Error; err != nil {
		return 0, fmt.Errorf("failed to list worlds: %w", err)
	}
	seen := make(map[string]bool, len(known))
	for _, id := range known {
		seen[id] = true
	}

	var worlds []models.World
	for _, w := range identity.Worlds {
		if seen[w.ID] {
			continue
		}
		worldMarket, number, err := models.ParseWorldID(w.ID)
		if err != nil || worldMarket != market {
			logger.Warn("Ignoring listed world", zap.String("world", w.ID))
			continue
		}
		seen[w.ID] = true
		worlds = append(worlds, models.World{
			ID:                      w.ID,
			MarketID:                market,
			Number:                  number,
			Name:                    w.Name,
			Open:                    true,
			SyncDataEnabled:         true,
			SyncAchievementsEnabled: true,
			CreatedAt:               s.now(),
		})
	}
	if len(worlds) == 0 {
		return 0, nil
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&worlds).Error; err != nil {
		return 0, fmt.Errorf("failed to store worlds: %w", err)
	}
	for _, w := range worlds {
		logger.Info("World discovered", zap.String("world", w.ID), zap.String("name", w.Name))
	}
	return len(worlds), nil
}

// CleanShares deletes map shares idle for longer than the configured age.
func (s *Scheduler) CleanShares(ctx context.Context) (int64, error) {
	days := s.cfg.ShareMaxAgeDays
	if days <= 0 {
		days = 30
	}
	cutoff := s.now().AddDate(0, 0, -days)

	res := s.db.WithContext(ctx).Where("last_access_at < ?", cutoff).Delete(&models.MapShare{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clean map shares: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.logger.Info("Map shares cleaned", zap.Int64("deleted", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// HistoryCutover appends the daily history of every enabled market whose
// local date moved past its last recorded history day. It returns the
// markets processed.
func (s *Scheduler) HistoryCutover(ctx context.Context) ([]string, error) {
	var markets []models.Market
	if err := s.db.WithContext(ctx).Where("enabled = ?", true).Order("id").Find(&markets).Error; err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}

	now := s.now()
	var done []string
	for _, m := range markets {
		day := localDay(now, m.Location())
		if m.LastHistoryAt != nil && !m.LastHistoryAt.UTC().Before(day) {
			continue
		}

		var worldIDs []string
		if err := s.db.WithContext(ctx).Model(&models.World{}).
			Where("market_id = ? AND open = ?", m.ID, true).Order("id").Pluck("id", &worldIDs).Error; err != nil {
			return done, fmt.Errorf("failed to list worlds of %s: %w", m.ID, err)
		}

		rows, err := reconcile.AppendHistory(ctx, s.db, worldIDs, day, s.cfg.HistoryRetentionDays)
		if err != nil {
			return done, fmt.Errorf("failed to append history of %s: %w", m.ID, err)
		}
		if err := s.db.WithContext(ctx).Model(&models.Market{}).Where("id = ?", m.ID).
			Update("last_history_at", day).Error; err != nil {
			return done, fmt.Errorf("failed to record history day of %s: %w", m.ID, err)
		}

		s.logger.Info("History appended",
			zap.String("market", m.ID), zap.Time("day", day), zap.Int("worlds", len(worldIDs)), zap.Int("rows", rows))
		done = append(done, m.ID)
	}
	return done, nil
}

// localDay returns the date of now in loc as midnight UTC.
func localDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
