package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"world-sync/core/database"
	"world-sync/core/models"
	"world-sync/core/session"
	"world-sync/core/session/sessiontest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gameDialer connects every session to an in-memory game.
type gameDialer struct {
	game *sessiontest.Game
}

func (d gameDialer) Dial(ctx context.Context, market string) (session.Transport, error) {
	return d.game.Connect(true), nil
}

// blockingDialer holds every dial until released, then refuses it.
type blockingDialer struct {
	entered chan string
	release chan struct{}

	mu      sync.Mutex
	current int
	peak    int
}

func newBlockingDialer() *blockingDialer {
	return &blockingDialer{entered: make(chan string, 16), release: make(chan struct{})}
}

func (d *blockingDialer) Dial(ctx context.Context, market string) (session.Transport, error) {
	d.mu.Lock()
	d.current++
	d.peak = max(d.peak, d.current)
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.current--
		d.mu.Unlock()
	}()

	d.entered <- market
	select {
	case <-d.release:
		return nil, errors.New("connection refused")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *blockingDialer) Current() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *blockingDialer) Peak() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.peak
}

// stallingDialer holds every dial until its context ends.
type stallingDialer struct{}

func (stallingDialer) Dial(ctx context.Context, market string) (session.Transport, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// refusingDialer fails every dial and counts them.
type refusingDialer struct {
	mu    sync.Mutex
	calls int
}

func (d *refusingDialer) Dial(ctx context.Context, market string) (session.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return nil, errors.New("connection refused")
}

func (d *refusingDialer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestScheduler(t *testing.T, db *gorm.DB, cfg Config, dialer session.Dialer) *Scheduler {
	t.Helper()
	s := New(db, cfg, Options{
		Dialer: dialer,
		Session: session.Config{
			RequestTimeoutSeconds:   2,
			HandshakeTimeoutSeconds: 2,
		},
		Logger: zap.NewNop(),
	})
	t.Cleanup(s.Close)
	return s
}

// seedMarket stores market br with one account.
func seedMarket(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Market{ID: "br", Enabled: true, TimeOffsetMinutes: -180}).Error)
	require.NoError(t, db.Create(&models.Account{MarketID: "br", Name: "crawler", Password: "secret"}).Error)
}

// seedWorld stores an open world with both sync types enabled.
func seedWorld(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	market, number, err := models.ParseWorldID(id)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.World{
		ID:                      id,
		MarketID:                market,
		Number:                  number,
		Open:                    true,
		SyncDataEnabled:         true,
		SyncAchievementsEnabled: true,
	}).Error)
}

func loadWorld(t *testing.T, db *gorm.DB, id string) models.World {
	t.Helper()
	var w models.World
	require.NoError(t, db.Where("id = ?", id).First(&w).Error)
	return w
}

func queueLen(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.QueueItem{}).Count(&n).Error)
	return n
}

func waitIdle(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.Eventually(t, func() bool { return queueLen(t, db) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func waitEntered(t *testing.T, d *blockingDialer) {
	t.Helper()
	select {
	case <-d.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("no attempt reached the dialer")
	}
}

func TestEnqueue_Dedupe(t *testing.T) {
	db := newTestDB(t)
	seedMarket(t, db)
	seedWorld(t, db, "br52")
	dialer := newBlockingDialer()
	s := newTestScheduler(t, db, Config{}, dialer)
	ctx := context.Background()

	n, err := s.Enqueue(ctx, TypeData, "br52")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	waitEntered(t, dialer)

	n, err = s.Enqueue(ctx, TypeData, "br52", "br52")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "active world is not queued twice")

	queued, err := s.SyncWorld(ctx, TypeData, "br52")
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Equal(t, int64(1), queueLen(t, db))

	// the other type has its own queue
	n, err = s.Enqueue(ctx, TypeAchievements, "br52")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var active []models.QueueItem
	require.NoError(t, db.Where("active = ?", true).Find(&active).Error)
	assert.NotEmpty(t, active)

	close(dialer.release)
	waitIdle(t, db)

	w := loadWorld(t, db, "br52")
	assert.Equal(t, models.StatusFail, w.LastDataSyncStatus)
	assert.NotNil(t, w.LastDataSyncAt)
	assert.Equal(t, models.StatusFail, w.LastAchievementsSyncStatus)
}

func TestEnqueue_UnknownType(t *testing.T) {
	s := newTestScheduler(t, newTestDB(t), Config{}, &refusingDialer{})
	_, err := s.Enqueue(context.Background(), SyncType("maps"), "br52")
	assert.ErrorIs(t, err, ErrUnknownSyncType)
}

func TestPool_ConcurrencyLimit(t *testing.T) {
	db := newTestDB(t)
	seedMarket(t, db)
	for _, id := range []string{"br1", "br2", "br3"} {
		seedWorld(t, db, id)
	}
	dialer := newBlockingDialer()
	s := newTestScheduler(t, db, Config{DataConcurrency: 2}, dialer)
	ctx := context.Background()

	n, err := s.Enqueue(ctx, TypeData, "br1", "br2", "br3")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	waitEntered(t, dialer)
	waitEntered(t, dialer)
	select {
	case <-dialer.entered:
		t.Fatal("third attempt started while two are running")
	case <-time.After(100 * time.Millisecond):
	}

	status, err := s.Status(ctx)
	require.NoError(t, err)
	data := status.Pools[0]
	assert.Equal(t, TypeData, data.Type)
	assert.Equal(t, 2, data.Concurrency)
	assert.Len(t, data.Active, 2)
	assert.Len(t, data.Queued, 1)
	assert.Len(t, data.Running, 2)

	// one terminal state frees exactly one slot
	dialer.release <- struct{}{}
	waitEntered(t, dialer)

	dialer.release <- struct{}{}
	dialer.release <- struct{}{}
	waitIdle(t, db)
	assert.Equal(t, 2, dialer.Peak())
}

func TestRestore(t *testing.T) {
	db := newTestDB(t)
	seedMarket(t, db)
	seedWorld(t, db, "br52")
	seedWorld(t, db, "br53")
	require.NoError(t, db.Create(&[]models.QueueItem{
		{WorldID: "br52", Type: string(TypeData), Active: true, CreatedAt: time.Now()},
		{WorldID: "br53", Type: string(TypeAchievements), CreatedAt: time.Now()},
		{WorldID: "br53", Type: "maps", CreatedAt: time.Now()},
	}).Error)

	dialer := &refusingDialer{}
	s := newTestScheduler(t, db, Config{}, dialer)

	n, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	waitIdle(t, db)
	assert.Equal(t, 2, dialer.Calls())
	assert.Equal(t, models.StatusFail, loadWorld(t, db, "br52").LastDataSyncStatus)
	assert.Equal(t, models.StatusFail, loadWorld(t, db, "br53").LastAchievementsSyncStatus)
}

func TestResetQueue(t *testing.T) {
	db := newTestDB(t)
	seedMarket(t, db)
	seedWorld(t, db, "br52")
	seedWorld(t, db, "br53")
	dialer := newBlockingDialer()
	s := newTestScheduler(t, db, Config{DataConcurrency: 1}, dialer)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, TypeData, "br52", "br53")
	require.NoError(t, err)
	waitEntered(t, dialer)

	require.NoError(t, s.ResetQueue(ctx, TypeData))
	assert.Equal(t, int64(0), queueLen(t, db))

	// the dropped attempt records nothing
	require.Eventually(t, func() bool { return dialer.Current() == 0 }, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, loadWorld(t, db, "br52").LastDataSyncStatus)

	// the new pool keeps the concurrency and accepts work
	n, err := s.Enqueue(ctx, TypeData, "br52")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	waitEntered(t, dialer)
	dialer.release <- struct{}{}
	waitIdle(t, db)
	assert.Equal(t, models.StatusFail, loadWorld(t, db, "br52").LastDataSyncStatus)
	assert.Equal(t, 1, dialer.Peak())
}

func TestResetQueue_ConcurrentEnqueue(t *testing.T) {
	db := newTestDB(t)
	seedMarket(t, db)
	worlds := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		id := fmt.Sprintf("br%d", i)
		seedWorld(t, db, id)
		worlds = append(worlds, id)
	}
	s := newTestScheduler(t, db, Config{DataConcurrency: 2}, stallingDialer{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range worlds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Enqueue(ctx, TypeData, id)
			assert.NoError(t, err)
		}()
	}
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.ResetQueue(ctx, TypeData))
		}()
	}
	wg.Wait()

	// every world the live pool holds still has its queue row
	queued, active := s.pool(TypeData).snapshot()
	for _, id := range append(queued, active...) {
		var n int64
		require.NoError(t, db.Model(&models.QueueItem{}).
			Where("world_id = ? AND type = ?", id, string(TypeData)).Count(&n).Error)
		assert.Equal(t, int64(1), n, "queue row of %s", id)
	}

	// and a world enqueued after a reset stays queued while it runs
	require.NoError(t, s.ResetQueue(ctx, TypeData))
	n, err := s.Enqueue(ctx, TypeData, "br1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Eventually(t, func() bool {
		_, active := s.pool(TypeData).snapshot()
		return len(active) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), queueLen(t, db))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, models.StatusSuccess},
		{ErrSyncTimeout, models.StatusTimeout},
		{ErrWorldClosed, models.StatusClosed},
		{ErrNoAccounts, models.StatusNoAccounts},
		{ErrWorldNotEnabled, models.StatusNotEnabled},
		{session.ErrAuthenticationFailed, models.StatusFail},
		{errors.New("boom"), models.StatusFail},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err))
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, 1, cfg.Concurrency(TypeData))
	assert.Equal(t, 20*time.Minute, cfg.MaxRunning(TypeData))
	assert.Equal(t, time.Hour, cfg.MaxRunning(TypeAchievements))
	assert.Equal(t, time.Minute, cfg.Tick())

	cfg = Config{DataConcurrency: 3, AchievementsConcurrency: 2, DataMaxRunningMinutes: 5}
	assert.Equal(t, 3, cfg.Concurrency(TypeData))
	assert.Equal(t, 2, cfg.Concurrency(TypeAchievements))
	assert.Equal(t, 5*time.Minute, cfg.MaxRunning(TypeData))
}
