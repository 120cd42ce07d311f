package crawler

import (
	"context"
	"fmt"
	"sync"

	"world-sync/core/utils"

	"go.uber.org/zap"
)

type chunk struct {
	x int
	y int
}

// rect is the half-open occupied area [minX, maxX) x [minY, maxY).
type rect struct {
	minX, minY, maxX, maxY int
}

// mapCollector merges chunk responses into a snapshot.
type mapCollector struct {
	mu      sync.Mutex
	snap    *Snapshot
	visited map[chunk]bool
}

func (m *mapCollector) add(at chunk, villages []Village, provinces []Province) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.visited[at] = true
	for _, v := range villages {
		m.snap.Villages[v.ID] = v
	}
	for _, p := range provinces {
		m.snap.Provinces[p.ID] = p
	}
}

func (m *mapCollector) seen(at chunk) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visited[at]
}

// Data crawls the map and both rankings into a snapshot.
func (c *Crawler) Data(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot(c.worldID, c.now())
	col := &mapCollector{snap: snap, visited: make(map[chunk]bool)}

	area, err := c.probe(ctx, col)
	if err != nil {
		return nil, fmt.Errorf("failed to probe map of %s: %w", c.worldID, err)
	}

	var pending []chunk
	for x := area.minX; x < area.maxX; x += c.opts.ChunkSize {
		for y := area.minY; y < area.maxY; y += c.opts.ChunkSize {
			if at := (chunk{x, y}); !col.seen(at) {
				pending = append(pending, at)
			}
		}
	}

	c.logger.Debug("Crawling map",
		zap.Int("min_x", area.minX), zap.Int("max_x", area.maxX),
		zap.Int("min_y", area.minY), zap.Int("max_y", area.maxY),
		zap.Int("chunks", len(pending)))

	err = c.batches(ctx, len(pending), func(ctx context.Context, i int) error {
		_, err := c.fetchChunk(ctx, pending[i], col)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to crawl map of %s: %w", c.worldID, err)
	}

	if err := c.crawlTribes(ctx, snap); err != nil {
		return nil, err
	}
	if err := c.crawlPlayers(ctx, snap); err != nil {
		return nil, err
	}

	snap.Index()
	c.logger.Info("Data crawl finished",
		zap.Int("villages", len(snap.Villages)),
		zap.Int("players", len(snap.Players)),
		zap.Int("tribes", len(snap.Tribes)))
	return snap, nil
}

// probeGap is the number of consecutive empty chunks that ends an edge walk.
const probeGap = 2

// probe finds the occupied rectangle. The centre chunk is fetched first, then
// one walk follows each centre line toward its edge until probeGap empty
// chunks in a row or the edge. A single empty chunk on a centre line does not
// truncate the rectangle; an occupied area cut off from both centre lines by
// a wider gap is still missed.
func (c *Crawler) probe(ctx context.Context, col *mapCollector) (rect, error) {
	size := c.opts.ChunkSize
	mid := c.opts.GridSize / 2 / size * size

	if _, err := c.fetchChunk(ctx, chunk{mid, mid}, col); err != nil {
		return rect{}, err
	}

	area := rect{minX: mid, minY: mid, maxX: mid + size, maxY: mid + size}
	walks := []struct {
		dx, dy int
		bound  *int
		far    bool
	}{
		{dx: -size, bound: &area.minX},
		{dx: size, bound: &area.maxX, far: true},
		{dy: -size, bound: &area.minY},
		{dy: size, bound: &area.maxY, far: true},
	}

	var mu sync.Mutex
	err := c.batches(ctx, len(walks), func(ctx context.Context, i int) error {
		w := walks[i]
		at := chunk{mid + w.dx, mid + w.dy}
		empty := 0
		for ; at.x >= 0 && at.y >= 0 && at.x < c.opts.GridSize && at.y < c.opts.GridSize; at.x, at.y = at.x+w.dx, at.y+w.dy {
			n, err := c.fetchChunk(ctx, at, col)
			if err != nil {
				return err
			}
			if n == 0 {
				if empty++; empty >= probeGap {
					return nil
				}
				continue
			}
			empty = 0

			edge := at.x
			if w.dy != 0 {
				edge = at.y
			}
			if w.far {
				edge += size
			}
			mu.Lock()
			*w.bound = edge
			mu.Unlock()
		}
		return nil
	})
	return area, err
}

func (c *Crawler) fetchChunk(ctx context.Context, at chunk, col *mapCollector) (int, error) {
	width := min(c.opts.ChunkSize, c.opts.GridSize-at.x)
	height := min(c.opts.ChunkSize, c.opts.GridSize-at.y)

	msg, err := c.emitter.Emit(ctx, "Map/getVillagesByArea", map[string]any{
		"x":            at.x,
		"y":            at.y,
		"width":        width,
		"height":       height,
		"character_id": c.characterID,
	})
	if err != nil {
		return 0, fmt.Errorf("chunk %d|%d: %w", at.x, at.y, err)
	}

	rows := utils.ToSlice(msg.Data["villages"])
	villages := make([]Village, 0, len(rows))
	var provinces []Province
	for _, raw := range rows {
		row := utils.ToMap(raw)
		v := Village{
			ID:          utils.ToInt(row["id"]),
			X:           utils.ToInt(row["x"]),
			Y:           utils.ToInt(row["y"]),
			Name:        utils.ToString(row["name"]),
			Points:      utils.ToInt(row["points"]),
			CharacterID: utils.ToIntPtr(row["character_id"]),
			ProvinceID:  utils.ToInt(row["province_id"]),
		}
		if v.ID == 0 {
			continue
		}
		villages = append(villages, v)
		if name := utils.ToString(row["province_name"]); v.ProvinceID != 0 && name != "" {
			provinces = append(provinces, Province{ID: v.ProvinceID, Name: name})
		}
	}

	col.add(at, villages, provinces)
	return len(villages), nil
}
