package reconcile

import (
	"errors"
	"fmt"
	"time"

	"world-sync/core/models"
)

// ErrCommitFailure wraps storage errors raised while applying a plan.
var ErrCommitFailure = errors.New("commit failure")

// ActionType is the kind of mutation a plan performs.
type ActionType string

const (
	ActionConquest          ActionType = "conquest"
	ActionTribeChange       ActionType = "tribe_change"
	ActionRecord            ActionType = "record"
	ActionArchive           ActionType = "archive"
	ActionUnarchive         ActionType = "unarchive"
	ActionAchievementAdd    ActionType = "achievement_add"
	ActionAchievementUpdate ActionType = "achievement_update"
)

// Action describes one planned mutation.
type Action struct {
	// Type specifies the mutation.
	Type ActionType `json:"type"`

	// Key identifies the subject or village, e.g. "player:5" or "village:1001".
	Key string `json:"key"`

	// Reason explains the mutation.
	Reason string `json:"reason"`
}

// Summary provides aggregate counts of a plan.
type Summary struct {
	Villages            int `json:"villages"`
	Players             int `json:"players"`
	Tribes              int `json:"tribes"`
	Conquests           int `json:"conquests"`
	TribeChanges        int `json:"tribe_changes"`
	Records             int `json:"records"`
	Archived            int `json:"archived"`
	Unarchived          int `json:"unarchived"`
	AchievementsAdded   int `json:"achievements_added"`
	AchievementsUpdated int `json:"achievements_updated"`
}

// State is the stored data of one world, indexed by id. It includes
// archived subjects.
type State struct {
	WorldID  string
	Villages map[int]models.Village
	Players  map[int]models.Player
	Tribes   map[int]models.Tribe
}

// NewState returns an empty state of worldID.
func NewState(worldID string) *State {
	return &State{
		WorldID:  worldID,
		Villages: make(map[int]models.Village),
		Players:  make(map[int]models.Player),
		Tribes:   make(map[int]models.Tribe),
	}
}

// Plan is the set of mutations derived from one data snapshot.
type Plan struct {
	WorldID string
	TakenAt time.Time

	Conquests    []models.Conquest
	TribeChanges []models.TribeChange

	// Current rows to upsert. Bests are already merged.
	Villages  []models.Village
	Players   []models.Player
	Tribes    []models.Tribe
	Provinces []models.Province

	ArchivePlayers []int
	ArchiveTribes  []int

	Actions []Action
	Summary Summary
}

func (p *Plan) add(t ActionType, key, reason string) {
	p.Actions = append(p.Actions, Action{Type: t, Key: key, Reason: reason})
}

type subjectKey struct {
	kind string
	id   int
}

func (k subjectKey) String() string {
	return fmt.Sprintf("%s:%d", k.kind, k.id)
}

// AchievementState is the stored achievement ledger of one world.
type AchievementState struct {
	WorldID string
	rows    map[subjectKey][]models.Achievement
}

// NewAchievementState builds a ledger index from stored rows.
func NewAchievementState(worldID string, rows []models.Achievement) *AchievementState {
	s := &AchievementState{WorldID: worldID, rows: make(map[subjectKey][]models.Achievement)}
	for _, row := range rows {
		key := subjectKey{row.SubjectType, row.SubjectID}
		s.rows[key] = append(s.rows[key], row)
	}
	return s
}

// AchievementPlan is the set of ledger mutations derived from one
// achievements snapshot.
type AchievementPlan struct {
	WorldID string
	Add     []models.Achievement
	// Update rows carry the stored ID with the new level.
	Update  []models.Achievement
	Actions []Action
	Summary Summary
}
