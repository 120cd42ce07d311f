package reconcile

import (
	"fmt"
	"sort"
	"time"

	"world-sync/core/crawler"
	"world-sync/core/models"
)

// PlanData diffs snap against prior. It does not touch storage.
func PlanData(prior *State, snap *crawler.Snapshot) *Plan {
	plan := &Plan{WorldID: snap.WorldID, TakenAt: snap.TakenAt}
	at := snap.TakenAt

	for _, id := range sortedKeys(snap.Villages) {
		v := snap.Villages[id]
		plan.Villages = append(plan.Villages, models.Village{
			WorldID:     snap.WorldID,
			ID:          v.ID,
			X:           v.X,
			Y:           v.Y,
			Name:        v.Name,
			Points:      v.Points,
			CharacterID: v.CharacterID,
			ProvinceID:  v.ProvinceID,
		})

		prev, known := prior.Villages[id]
		if !known || v.CharacterID == nil || equalID(prev.CharacterID, v.CharacterID) {
			continue
		}

		c := models.Conquest{
			WorldID:           snap.WorldID,
			VillageID:         id,
			OldOwner:          prev.CharacterID,
			NewOwner:          *v.CharacterID,
			NewOwnerTribeID:   snap.Players[*v.CharacterID].TribeID,
			VillagePointsThen: v.Points,
			Date:              at,
		}
		c.NewOwnerTribeTag = snap.TribeTag(c.NewOwnerTribeID)
		if prev.CharacterID != nil {
			if owner, ok := prior.Players[*prev.CharacterID]; ok {
				c.OldOwnerTribeID = owner.TribeID
				c.OldOwnerTribeTag = prior.tribeTag(owner.TribeID)
			}
		}

		plan.Conquests = append(plan.Conquests, c)
		plan.add(ActionConquest, fmt.Sprintf("village:%d", id),
			fmt.Sprintf("owner %s -> %d", formatID(prev.CharacterID), *v.CharacterID))
	}

	for _, id := range sortedKeys(snap.Tribes) {
		t := snap.Tribes[id]
		prev, known := prior.Tribes[id]
		row := models.Tribe{
			WorldID:  snap.WorldID,
			ID:       id,
			Name:     t.Name,
			Tag:      t.Tag,
			Members:  t.Members,
			Level:    t.Level,
			Stats:    t.Stats,
			Bests:    prev.Bests,
			LastSeen: at,
		}
		key := subjectKey{models.SubjectTribe, id}
		plan.Summary.Records += plan.records(key, &row.Bests, t.Stats, at)
		if known && prev.Archived {
			plan.Summary.Unarchived++
			plan.add(ActionUnarchive, key.String(), "present again")
		}
		plan.Tribes = append(plan.Tribes, row)
	}

	for _, id := range sortedKeys(snap.Players) {
		p := snap.Players[id]
		prev, known := prior.Players[id]
		row := models.Player{
			WorldID:  snap.WorldID,
			ID:       id,
			Name:     p.Name,
			TribeID:  p.TribeID,
			Stats:    p.Stats,
			Bests:    prev.Bests,
			LastSeen: at,
		}
		key := subjectKey{models.SubjectPlayer, id}
		plan.Summary.Records += plan.records(key, &row.Bests, p.Stats, at)
		if known && prev.Archived {
			plan.Summary.Unarchived++
			plan.add(ActionUnarchive, key.String(), "present again")
		}

		if known && !equalID(prev.TribeID, p.TribeID) {
			plan.TribeChanges = append(plan.TribeChanges, models.TribeChange{
				WorldID:     snap.WorldID,
				CharacterID: id,
				OldTribe:    prev.TribeID,
				OldTribeTag: prior.tribeTag(prev.TribeID),
				NewTribe:    p.TribeID,
				NewTribeTag: snap.TribeTag(p.TribeID),
				Date:        at,
			})
			plan.add(ActionTribeChange, key.String(),
				fmt.Sprintf("tribe %s -> %s", formatID(prev.TribeID), formatID(p.TribeID)))
		}
		plan.Players = append(plan.Players, row)
	}

	for _, id := range sortedKeys(snap.Provinces) {
		plan.Provinces = append(plan.Provinces, models.Province{
			WorldID: snap.WorldID,
			ID:      id,
			Name:    snap.Provinces[id].Name,
		})
	}

	for _, id := range sortedKeys(prior.Players) {
		if _, ok := snap.Players[id]; !ok && !prior.Players[id].Archived {
			plan.ArchivePlayers = append(plan.ArchivePlayers, id)
			plan.add(ActionArchive, subjectKey{models.SubjectPlayer, id}.String(), "missing from snapshot")
		}
	}
	for _, id := range sortedKeys(prior.Tribes) {
		if _, ok := snap.Tribes[id]; !ok && !prior.Tribes[id].Archived {
			plan.ArchiveTribes = append(plan.ArchiveTribes, id)
			plan.add(ActionArchive, subjectKey{models.SubjectTribe, id}.String(), "missing from snapshot")
		}
	}

	plan.Summary.Villages = len(plan.Villages)
	plan.Summary.Players = len(plan.Players)
	plan.Summary.Tribes = len(plan.Tribes)
	plan.Summary.Conquests = len(plan.Conquests)
	plan.Summary.TribeChanges = len(plan.TribeChanges)
	plan.Summary.Archived = len(plan.ArchivePlayers) + len(plan.ArchiveTribes)
	return plan
}

// records merges stats into bests and returns the number of improved fields.
// A smaller rank is better; zero ranks are unranked and never a record.
func (p *Plan) records(key subjectKey, bests *models.Bests, stats models.Stats, at time.Time) int {
	n := 0
	if stats.Rank > 0 && (bests.BestRank == 0 || stats.Rank < bests.BestRank) {
		bests.BestRank, bests.BestRankAt = stats.Rank, &at
		n++
	}
	if stats.Points > bests.BestPoints {
		bests.BestPoints, bests.BestPointsAt = stats.Points, &at
		n++
	}
	if stats.Villages > bests.BestVillages {
		bests.BestVillages, bests.BestVillagesAt = stats.Villages, &at
		n++
	}
	if n > 0 {
		p.add(ActionRecord, key.String(), fmt.Sprintf("rank %d points %d villages %d",
			bests.BestRank, bests.BestPoints, bests.BestVillages))
	}
	return n
}

func (s *State) tribeTag(id *int) string {
	if id == nil {
		return ""
	}
	return s.Tribes[*id].Tag
}

func equalID(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatID(id *int) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *id)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
