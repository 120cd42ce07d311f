package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"world-sync/core/crawler"
	"world-sync/core/models"
	"world-sync/core/reconcile"
	"world-sync/core/session"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// attempt runs one sync of worldID within the time budget of the pool.
// Exceeding the budget kills the session, which fails every request in
// flight, and the attempt reports ErrSyncTimeout.
func (s *Scheduler) attempt(p *pool, worldID string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeoutCause(p.ctx, p.timeout, ErrSyncTimeout)
	defer cancel()

	err := s.run(ctx, p.typ, worldID, logger)
	if err != nil && errors.Is(context.Cause(ctx), ErrSyncTimeout) {
		return fmt.Errorf("%w: %s after %s: %w", ErrSyncTimeout, worldID, p.timeout, err)
	}
	return err
}

func (s *Scheduler) run(ctx context.Context, typ SyncType, worldID string, logger *zap.Logger) error {
	world, err := s.world(ctx, worldID)
	if err != nil {
		return err
	}
	if !world.Open {
		return fmt.Errorf("%w: %s", ErrWorldClosed, worldID)
	}
	if !syncEnabled(world, typ) {
		return fmt.Errorf("%w: %s sync of %s", ErrWorldNotEnabled, typ, worldID)
	}

	client, ch, release, err := s.login(ctx, world, logger)
	if err != nil {
		return err
	}
	defer release()

	c := crawler.New(client, world.ID, ch.ID, s.crawl, logger)
	if typ == TypeAchievements {
		return s.syncAchievements(ctx, c, logger)
	}
	return s.syncData(ctx, c, ch, logger)
}

// Preview crawls worldID and plans the reconciliation against the stored
// state without applying it. The world must be open; its sync switches are
// ignored.
func (s *Scheduler) Preview(ctx context.Context, worldID string) (*reconcile.Plan, error) {
	world, err := s.world(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if !world.Open {
		return nil, fmt.Errorf("%w: %s", ErrWorldClosed, worldID)
	}

	ctx, cancel := context.WithTimeoutCause(ctx, s.cfg.MaxRunning(TypeData), ErrSyncTimeout)
	defer cancel()

	logger := s.logger.With(zap.String("world", worldID))
	client, ch, release, err := s.login(ctx, world, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := crawler.New(client, world.ID, ch.ID, s.crawl, logger).Data(ctx)
	if err != nil {
		return nil, err
	}
	prior, err := reconcile.LoadState(ctx, s.db, world.ID)
	if err != nil {
		return nil, err
	}
	return reconcile.PlanData(prior, snap), nil
}

// login connects to the market of world, authenticates and selects the crawl
// character. The session dies with ctx; release kills it.
func (s *Scheduler) login(ctx context.Context, world *models.World, logger *zap.Logger) (*session.Client, *session.Character, func(), error) {
	creds, err := s.credentials(ctx, world.MarketID)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := session.Dial(ctx, s.dialer, world.MarketID, s.session, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to %s: %w", world.MarketID, err)
	}
	stop := context.AfterFunc(ctx, client.Kill)
	release := func() {
		stop()
		client.Kill()
	}

	identity, err := client.Auth(ctx, world.MarketID, creds, s.cache)
	if err != nil {
		release()
		return nil, nil, nil, err
	}

	characterID, err := s.character(ctx, client, identity, world, logger)
	if err != nil {
		release()
		return nil, nil, nil, err
	}

	ch, err := client.SelectCharacter(ctx, characterID, world.ID)
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return client, ch, release, nil
}

func (s *Scheduler) world(ctx context.Context, worldID string) (*models.World, error) {
	var world models.World
	if err := s.db.WithContext(ctx).Where("id = ?", worldID).First(&world).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, worldID)
		}
		return nil, fmt.Errorf("failed to load world %s: %w", worldID, err)
	}
	return &world, nil
}

// credentials returns the accounts of market in trial order.
func (s *Scheduler) credentials(ctx context.Context, market string) ([]session.Credential, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).Where("market_id = ?", market).Order("position, id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to load accounts of %s: %w", market, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAccounts, market)
	}

	creds := make([]session.Credential, 0, len(accounts))
	for _, a := range accounts {
		creds = append(creds, session.Credential{Name: a.Name, Password: a.Password})
	}
	return creds, nil
}

// character returns the character of identity on world, creating one when the
// account has none. A character the game refuses to log in marks the world closed.
func (s *Scheduler) character(ctx context.Context, client *session.Client, identity *session.Identity, world *models.World, logger *zap.Logger) (int, error) {
	if summary, ok := identity.Character(world.ID); ok {
		if !summary.AllowLogin {
			s.closeWorld(ctx, world.ID, logger)
			return 0, fmt.Errorf("%w: %s refuses login", ErrWorldClosed, world.ID)
		}
		if summary.Maintenance {
			return 0, fmt.Errorf("%s is under maintenance", world.ID)
		}
		return summary.CharacterID, nil
	}

	logger.Info("Creating character", zap.String("account", identity.AccountName))
	id, err := client.CreateCharacter(ctx, world.ID)
	if err != nil {
		return 0, err
	}
	// The cached identity does not list the new character yet.
	s.cache.Invalidate(world.MarketID)
	return id, nil
}

func (s *Scheduler) closeWorld(ctx context.Context, worldID string, logger *zap.Logger) {
	if err := s.db.WithContext(ctx).Model(&models.World{}).Where("id = ?", worldID).
		Updates(map[string]any{"open": false, "closed_at": s.now()}).Error; err != nil {
		logger.Error("Failed to mark world closed", zap.Error(err))
		return
	}
	logger.Info("World closed")
}

func (s *Scheduler) syncData(ctx context.Context, c *crawler.Crawler, ch *session.Character, logger *zap.Logger) error {
	snap, err := c.Data(ctx)
	if err != nil {
		return err
	}
	snap.Config = ch.GameData

	prior, err := reconcile.LoadState(ctx, s.db, snap.WorldID)
	if err != nil {
		return err
	}
	plan := reconcile.PlanData(prior, snap)
	if err := reconcile.Apply(ctx, s.db, plan); err != nil {
		return err
	}

	updates := map[string]any{}
	if len(snap.Config) > 0 {
		raw, err := json.Marshal(snap.Config)
		if err != nil {
			return fmt.Errorf("failed to encode config of %s: %w", snap.WorldID, err)
		}
		updates["config"] = string(raw)
	}
	if s.store != nil {
		files, err := s.store.Write(ctx, snap)
		if err != nil {
			return fmt.Errorf("%w: snapshot files of %s: %w", reconcile.ErrCommitFailure, snap.WorldID, err)
		}
		updates["map_available"] = true
		logger.Debug("Snapshot written", zap.Int("files", len(files)))
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.World{}).Where("id = ?", snap.WorldID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: world %s: %w", reconcile.ErrCommitFailure, snap.WorldID, err)
		}
	}

	sum := plan.Summary
	logger.Info("Data committed",
		zap.Int("villages", sum.Villages),
		zap.Int("players", sum.Players),
		zap.Int("tribes", sum.Tribes),
		zap.Int("conquests", sum.Conquests),
		zap.Int("tribe_changes", sum.TribeChanges),
		zap.Int("records", sum.Records),
		zap.Int("archived", sum.Archived),
	)
	return nil
}

func (s *Scheduler) syncAchievements(ctx context.Context, c *crawler.Crawler, logger *zap.Logger) error {
	snap, err := c.Achievements(ctx)
	if err != nil {
		return err
	}

	prior, err := reconcile.LoadAchievementState(ctx, s.db, snap.WorldID)
	if err != nil {
		return err
	}
	plan := reconcile.PlanAchievements(prior, snap)
	if err := reconcile.ApplyAchievements(ctx, s.db, plan); err != nil {
		return err
	}

	logger.Info("Achievements committed",
		zap.Int("added", plan.Summary.AchievementsAdded),
		zap.Int("updated", plan.Summary.AchievementsUpdated),
	)
	return nil
}

func syncEnabled(w *models.World, typ SyncType) bool {
	if typ == TypeAchievements {
		return w.SyncAchievementsEnabled
	}
	return w.SyncDataEnabled
}
