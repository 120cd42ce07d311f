package reconcile

import (
	"fmt"
	"sort"

	"world-sync/core/crawler"
	"world-sync/core/models"
)

// PlanAchievements classifies the achievements of snap against prior.
func PlanAchievements(prior *AchievementState, snap *crawler.AchievementSnapshot) *AchievementPlan {
	plan := &AchievementPlan{WorldID: snap.WorldID}

	for _, id := range sortedKeys(snap.Tribes) {
		plan.subject(prior, subjectKey{models.SubjectTribe, id}, snap.Tribes[id])
	}
	for _, id := range sortedKeys(snap.Players) {
		plan.subject(prior, subjectKey{models.SubjectPlayer, id}, snap.Players[id])
	}

	plan.Summary.AchievementsAdded = len(plan.Add)
	plan.Summary.AchievementsUpdated = len(plan.Update)
	return plan
}

func (p *AchievementPlan) subject(prior *AchievementState, key subjectKey, observed []crawler.Achievement) {
	unique := make(map[string]models.Achievement)
	repeatCount := make(map[string]int)
	for _, row := range prior.rows[key] {
		if row.Repeatable() {
			repeatCount[row.Type]++
		} else {
			unique[row.Type] = row
		}
	}

	// pending maps a unique type first seen in this snapshot to its row in p.Add.
	pending := make(map[string]int)
	instances := make(map[string][]crawler.Achievement)
	var types []string
	for _, a := range observed {
		if a.Period != nil {
			if _, ok := instances[a.Type]; !ok {
				types = append(types, a.Type)
			}
			instances[a.Type] = append(instances[a.Type], a)
			continue
		}

		if i, ok := pending[a.Type]; ok {
			if a.Level > p.Add[i].Level {
				p.Add[i].Level = a.Level
				p.Add[i].TimeLastLevel = a.TimeLastLevel
			}
			continue
		}

		stored, ok := unique[a.Type]
		switch {
		case !ok:
			pending[a.Type] = len(p.Add)
			p.Add = append(p.Add, p.row(key, a))
			p.Actions = append(p.Actions, Action{Type: ActionAchievementAdd, Key: key.String(),
				Reason: fmt.Sprintf("%s level %d", a.Type, a.Level)})
		case a.Level > stored.Level:
			stored.Level = a.Level
			stored.TimeLastLevel = a.TimeLastLevel
			p.Update = append(p.Update, stored)
			p.Actions = append(p.Actions, Action{Type: ActionAchievementUpdate, Key: key.String(),
				Reason: fmt.Sprintf("%s level %d", a.Type, a.Level)})
		}
		// Lower or equal levels keep the stored row; levels only grow.
	}

	for _, t := range types {
		list := instances[t]
		sort.SliceStable(list, func(i, j int) bool {
			if *list[i].Period != *list[j].Period {
				return *list[i].Period < *list[j].Period
			}
			return list[i].TimeLastLevel.Before(list[j].TimeLastLevel)
		})
		for _, a := range list[min(repeatCount[t], len(list)):] {
			p.Add = append(p.Add, p.row(key, a))
			p.Actions = append(p.Actions, Action{Type: ActionAchievementAdd, Key: key.String(),
				Reason: fmt.Sprintf("%s period %s", a.Type, *a.Period)})
		}
	}
}

func (p *AchievementPlan) row(key subjectKey, a crawler.Achievement) models.Achievement {
	return models.Achievement{
		WorldID:       p.WorldID,
		SubjectType:   key.kind,
		SubjectID:     key.id,
		Type:          a.Type,
		Category:      a.Category,
		Level:         a.Level,
		Period:        a.Period,
		TimeLastLevel: a.TimeLastLevel,
	}
}
