package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"world-sync/core/crawler"
	"world-sync/core/logger"
	"world-sync/core/models"
	"world-sync/core/session"
	"world-sync/core/snapshot"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options carries the collaborators of a Scheduler.
type Options struct {
	// Dialer opens game connections. Required.
	Dialer session.Dialer
	// Session configures every game session.
	Session session.Config
	// Crawl tunes the crawl geometry.
	Crawl crawler.Options
	// Store receives the snapshot files of data syncs. Optional.
	Store *snapshot.Store
	// Cache shares authenticated identities between attempts. A new cache is
	// created when nil.
	Cache *session.Cache
	Logger *zap.Logger
}

// Scheduler runs sync attempts in one bounded pool per sync type. The
// sync_queue table is the source of truth for pending and active work.
type Scheduler struct {
	db      *gorm.DB
	cfg     Config
	dialer  session.Dialer
	session session.Config
	crawl   crawler.Options
	store   *snapshot.Store
	cache   *session.Cache
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	pools  map[SyncType]*pool
	closed bool
	wg     sync.WaitGroup

	// queueMu pairs every queue row write with its pool. Enqueue and Restore
	// hold it shared; ResetQueue holds it across the pool swap and row delete.
	queueMu sync.RWMutex
}

// pool bounds the attempts of one sync type. Reset replaces the pool; the
// attempts of the old one see their context cancelled and leave the queue alone.
type pool struct {
	typ     SyncType
	size    int
	timeout time.Duration
	sem     *semaphore.Weighted
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	queued map[string]bool
	active map[string]bool
}

// New creates a scheduler. Pools are empty until Enqueue or Restore.
func New(db *gorm.DB, cfg Config, opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = session.NewCache()
	}

	s := &Scheduler{
		db:      db,
		cfg:     cfg,
		dialer:  opts.Dialer,
		session: opts.Session,
		crawl:   opts.Crawl,
		store:   opts.Store,
		cache:   opts.Cache,
		logger:  opts.Logger,
		now:     func() time.Time { return time.Now().UTC() },
		pools:   make(map[SyncType]*pool),
	}
	for _, typ := range Types() {
		s.pools[typ] = s.newPool(typ)
	}
	return s
}

func (s *Scheduler) newPool(typ SyncType) *pool {
	ctx, cancel := context.WithCancel(context.Background())
	size := s.cfg.Concurrency(typ)
	return &pool{
		typ:     typ,
		size:    size,
		timeout: s.cfg.MaxRunning(typ),
		sem:     semaphore.NewWeighted(int64(size)),
		ctx:     ctx,
		cancel:  cancel,
		queued:  make(map[string]bool),
		active:  make(map[string]bool),
	}
}

func (s *Scheduler) pool(typ SyncType) *pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pools[typ]
}

// Enqueue queues typ syncs of worldIDs. Worlds already queued or active for
// typ are skipped. It returns the number of worlds queued.
func (s *Scheduler) Enqueue(ctx context.Context, typ SyncType, worldIDs ...string) (int, error) {
	if _, err := ParseSyncType(string(typ)); err != nil {
		return 0, err
	}
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()

	queued := 0
	for _, worldID := range worldIDs {
		item := models.QueueItem{
			WorldID:   worldID,
			Type:      string(typ),
			CreatedAt: s.now(),
		}
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
		if res.Error != nil {
			return queued, fmt.Errorf("failed to queue %s sync of %s: %w", typ, worldID, res.Error)
		}
		if res.RowsAffected == 0 {
			s.logger.Debug("Sync already queued", zap.String("type", string(typ)), zap.String("world", worldID))
			continue
		}
		if err := s.schedule(item); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// Restore re-seeds the pools from the persisted queue. Items left active by a
// previous process are queued again.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()

	var items []models.QueueItem
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&items).Error; err != nil {
		return 0, fmt.Errorf("failed to load sync queue: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("active = ?", true).Update("active", false).Error; err != nil {
		return 0, fmt.Errorf("failed to clear active flags: %w", err)
	}

	restored := 0
	for _, item := range items {
		if _, err := ParseSyncType(item.Type); err != nil {
			s.logger.Warn("Dropping queue item of unknown type", zap.String("type", item.Type), zap.String("world", item.WorldID))
			s.db.WithContext(ctx).Delete(&models.QueueItem{}, item.ID)
			continue
		}
		item.Active = false
		if err := s.schedule(item); err != nil {
			return restored, err
		}
		restored++
	}
	if restored > 0 {
		s.logger.Info("Restored sync queue", zap.Int("items", restored))
	}
	return restored, nil
}

// ResetQueue drops every queued and running sync of typ and recreates its
// pool with the same concurrency. Running attempts are killed.
func (s *Scheduler) ResetQueue(ctx context.Context, typ SyncType) error {
	if _, err := ParseSyncType(string(typ)); err != nil {
		return err
	}

	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	s.mu.Lock()
	old := s.pools[typ]
	s.pools[typ] = s.newPool(typ)
	s.mu.Unlock()
	old.cancel()

	if err := s.db.WithContext(ctx).Where("type = ?", string(typ)).Delete(&models.QueueItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear %s queue: %w", typ, err)
	}
	s.logger.Info("Sync pool reset", zap.String("type", string(typ)))
	return nil
}

// Close kills running attempts and waits for every worker to return. Queue
// rows are kept so the next process restores them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for _, p := range s.pools {
		p.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until every scheduled attempt has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) schedule(item models.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("scheduler closed")
	}

	p := s.pools[SyncType(item.Type)]
	p.mu.Lock()
	p.queued[item.WorldID] = true
	p.mu.Unlock()

	s.wg.Add(1)
	go s.work(p, item)
	return nil
}

// work waits for a pool slot, runs one attempt and records its outcome.
func (s *Scheduler) work(p *pool, item models.QueueItem) {
	defer s.wg.Done()
	defer p.forget(item.WorldID)

	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		return
	}
	defer p.sem.Release(1)
	if p.ctx.Err() != nil {
		return
	}

	l := logger.ForWorld(s.logger, item.WorldID, item.Type)
	if err := s.db.WithContext(p.ctx).Model(&models.QueueItem{}).
		Where("id = ?", item.ID).Update("active", true).Error; err != nil {
		l.Error("Failed to mark sync active", zap.Error(err))
		return
	}
	p.start(item.WorldID)

	started := s.now()
	l.Info("Sync started")
	err := s.attempt(p, item.WorldID, l)

	if p.ctx.Err() != nil {
		l.Info("Sync dropped", zap.Error(err))
		return
	}
	s.finish(p.typ, item, err, l)

	fields := []zap.Field{zap.String("status", statusOf(err)), zap.Duration("elapsed", s.now().Sub(started))}
	if err != nil {
		l.Warn("Sync finished", append(fields, zap.Error(err))...)
	} else {
		l.Info("Sync finished", fields...)
	}
}

// finish records the terminal status on the world and removes the queue item.
func (s *Scheduler) finish(typ SyncType, item models.QueueItem, err error, l *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statusCol, atCol := statusColumns(typ)
	if err := s.db.WithContext(ctx).Model(&models.World{}).Where("id = ?", item.WorldID).
		Updates(map[string]any{statusCol: statusOf(err), atCol: s.now()}).Error; err != nil {
		l.Error("Failed to record sync status", zap.Error(err))
	}
	if err := s.db.WithContext(ctx).Delete(&models.QueueItem{}, item.ID).Error; err != nil {
		l.Error("Failed to remove queue item", zap.Error(err))
	}
}

func (p *pool) start(worldID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.queued, worldID)
	p.active[worldID] = true
}

func (p *pool) forget(worldID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.queued, worldID)
	delete(p.active, worldID)
}

// snapshot returns the sorted queued and active worlds of the pool.
func (p *pool) snapshot() ([]string, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sortedSet(p.queued), sortedSet(p.active)
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
