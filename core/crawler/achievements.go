package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"world-sync/core/models"
	"world-sync/core/utils"

	"go.uber.org/zap"
)

// Achievements discovers every ranked subject and fetches its achievements.
// Entries without a reached level are dropped.
func (c *Crawler) Achievements(ctx context.Context) (*AchievementSnapshot, error) {
	snap := &AchievementSnapshot{
		WorldID: c.worldID,
		TakenAt: c.now(),
		Players: make(map[int][]Achievement),
		Tribes:  make(map[int][]Achievement),
	}

	type subject struct {
		kind string
		id   int
	}
	var subjects []subject

	if err := c.ranking(ctx, tribeRanking, func(row map[string]any) {
		if id := utils.ToInt(row["tribe_id"]); id != 0 {
			subjects = append(subjects, subject{models.SubjectTribe, id})
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to list tribes of %s: %w", c.worldID, err)
	}
	if err := c.ranking(ctx, playerRanking, func(row map[string]any) {
		if id := utils.ToInt(row["character_id"]); id != 0 {
			subjects = append(subjects, subject{models.SubjectPlayer, id})
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to list players of %s: %w", c.worldID, err)
	}

	var mu sync.Mutex
	err := c.batches(ctx, len(subjects), func(ctx context.Context, i int) error {
		s := subjects[i]
		msgType, key := "Achievement/getCharacterAchievements", "character_id"
		if s.kind == models.SubjectTribe {
			msgType, key = "Achievement/getTribeAchievements", "tribe_id"
		}

		msg, err := c.emitter.Emit(ctx, msgType, map[string]any{key: s.id})
		if err != nil {
			return fmt.Errorf("%s %d: %w", s.kind, s.id, err)
		}
		list := parseAchievements(msg.Data["achievements"])

		mu.Lock()
		defer mu.Unlock()
		if s.kind == models.SubjectTribe {
			snap.Tribes[s.id] = list
		} else {
			snap.Players[s.id] = list
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to crawl achievements of %s: %w", c.worldID, err)
	}

	c.logger.Info("Achievements crawl finished",
		zap.Int("players", len(snap.Players)),
		zap.Int("tribes", len(snap.Tribes)))
	return snap, nil
}

func parseAchievements(raw any) []Achievement {
	var out []Achievement
	for _, item := range utils.ToSlice(raw) {
		row := utils.ToMap(item)
		level := utils.ToInt(row["level"])
		if level <= 0 {
			continue
		}

		a := Achievement{
			Type:     utils.ToString(row["type"]),
			Category: utils.ToString(row["category"]),
			Level:    level,
		}
		if period := utils.ToString(row["period"]); period != "" {
			a.Period = &period
		}
		if ts := utils.ToInt(row["time_last_level"]); ts > 0 {
			a.TimeLastLevel = time.Unix(int64(ts), 0).UTC()
		}
		out = append(out, a)
	}
	return out
}
