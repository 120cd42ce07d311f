package crawler

import (
	"context"
	"time"

	"world-sync/core/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Emitter sends one correlated request. *session.Client implements it.
type Emitter interface {
	Emit(ctx context.Context, msgType string, data any) (*session.Message, error)
}

// Options tunes the crawl geometry and request fan-out.
type Options struct {
	// GridSize is the width and height of the coordinate grid.
	GridSize int
	// ChunkSize is the side of one map area request.
	ChunkSize int
	// PageSize is the number of ranking rows per request.
	PageSize int
	// BatchSize is the number of concurrent requests per batch.
	BatchSize int
}

// DefaultOptions returns the geometry of the game client.
func DefaultOptions() Options {
	return Options{
		GridSize:  1000,
		ChunkSize: 50,
		PageSize:  25,
		BatchSize: 4,
	}
}

// Crawler reads one world through an authenticated session.
type Crawler struct {
	emitter     Emitter
	worldID     string
	characterID int
	opts        Options
	logger      *zap.Logger
	now         func() time.Time
}

// New creates a crawler for worldID acting as characterID.
func New(emitter Emitter, worldID string, characterID int, opts Options, logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.GridSize <= 0 {
		opts.GridSize = def.GridSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	return &Crawler{
		emitter:     emitter,
		worldID:     worldID,
		characterID: characterID,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// batches runs fn for every index in [0, n), BatchSize at a time. A batch is
// awaited before the next starts and the first error aborts the run.
func (c *Crawler) batches(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for start := 0; start < n; start += c.opts.BatchSize {
		end := min(start+c.opts.BatchSize, n)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error { return fn(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
