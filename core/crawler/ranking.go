package crawler

import (
	"context"
	"fmt"
	"sync"

	"world-sync/core/models"
	"world-sync/core/utils"
)

const (
	tribeRanking  = "Ranking/getTribeRanking"
	playerRanking = "Ranking/getCharacterRanking"
)

// ranking pages through msgType until the reported total is reached and calls
// visit for every row. visit is serialized.
func (c *Crawler) ranking(ctx context.Context, msgType string, visit func(row map[string]any)) error {
	var mu sync.Mutex
	page := func(ctx context.Context, offset int) (int, error) {
		msg, err := c.emitter.Emit(ctx, msgType, map[string]any{
			"area_type": "world",
			"offset":    offset,
			"count":     c.opts.PageSize,
			"order_by":  "rank",
			"order_dir": 0,
			"query":     "",
		})
		if err != nil {
			return 0, fmt.Errorf("%s offset %d: %w", msgType, offset, err)
		}

		mu.Lock()
		for _, raw := range utils.ToSlice(msg.Data["ranking"]) {
			visit(utils.ToMap(raw))
		}
		mu.Unlock()
		return utils.ToInt(msg.Data["total"]), nil
	}

	total, err := page(ctx, 0)
	if err != nil {
		return err
	}

	var offsets []int
	for offset := c.opts.PageSize; offset < total; offset += c.opts.PageSize {
		offsets = append(offsets, offset)
	}
	return c.batches(ctx, len(offsets), func(ctx context.Context, i int) error {
		_, err := page(ctx, offsets[i])
		return err
	})
}

func rankingStats(row map[string]any) models.Stats {
	return models.Stats{
		Points:          utils.ToInt(row["points"]),
		Villages:        utils.ToInt(row["villages"]),
		Rank:            utils.ToInt(row["rank"]),
		VictoryPoints:   utils.ToInt(row["victory_points"]),
		BashPointsOff:   utils.ToInt(row["bash_points_off"]),
		BashPointsDef:   utils.ToInt(row["bash_points_def"]),
		BashPointsTotal: utils.ToInt(row["bash_points_total"]),
	}
}

func (c *Crawler) crawlTribes(ctx context.Context, snap *Snapshot) error {
	err := c.ranking(ctx, tribeRanking, func(row map[string]any) {
		t := Tribe{
			ID:      utils.ToInt(row["tribe_id"]),
			Name:    utils.ToString(row["name"]),
			Tag:     utils.ToString(row["tag"]),
			Members: utils.ToInt(row["members"]),
			Level:   utils.ToInt(row["level"]),
			Stats:   rankingStats(row),
		}
		if t.ID != 0 {
			snap.Tribes[t.ID] = t
		}
	})
	if err != nil {
		return fmt.Errorf("failed to crawl tribes of %s: %w", c.worldID, err)
	}
	return nil
}

func (c *Crawler) crawlPlayers(ctx context.Context, snap *Snapshot) error {
	err := c.ranking(ctx, playerRanking, func(row map[string]any) {
		p := Player{
			ID:      utils.ToInt(row["character_id"]),
			Name:    utils.ToString(row["name"]),
			TribeID: utils.ToIntPtr(row["tribe_id"]),
			Stats:   rankingStats(row),
		}
		if p.ID != 0 {
			snap.Players[p.ID] = p
		}
	})
	if err != nil {
		return fmt.Errorf("failed to crawl players of %s: %w", c.worldID, err)
	}
	return nil
}
