package crawler

import (
	"sort"
	"time"

	"world-sync/core/models"
)

// Village is a village as seen in one crawl.
type Village struct {
	ID          int
	X           int
	Y           int
	Name        string
	Points      int
	CharacterID *int
	ProvinceID  int
}

// Player is a ranked character as seen in one crawl.
type Player struct {
	ID      int
	Name    string
	TribeID *int
	models.Stats
}

// Tribe is a ranked tribe as seen in one crawl.
type Tribe struct {
	ID      int
	Name    string
	Tag     string
	Members int
	Level   int
	models.Stats
}

// Province is a named map region.
type Province struct {
	ID   int
	Name string
}

// Snapshot is the complete result of one data crawl.
type Snapshot struct {
	WorldID string
	TakenAt time.Time
	// Config holds the world ruleset constants captured on selection.
	Config map[string]any

	Villages  map[int]Village
	Players   map[int]Player
	Tribes    map[int]Tribe
	Provinces map[int]Province

	// VillagesByPlayer lists the village ids of each player, ascending.
	VillagesByPlayer map[int][]int
	// PlayersByTribe lists the player ids of each tribe, ascending.
	PlayersByTribe map[int][]int
}

// NewSnapshot returns an empty snapshot of worldID.
func NewSnapshot(worldID string, takenAt time.Time) *Snapshot {
	return &Snapshot{
		WorldID:          worldID,
		TakenAt:          takenAt,
		Villages:         make(map[int]Village),
		Players:          make(map[int]Player),
		Tribes:           make(map[int]Tribe),
		Provinces:        make(map[int]Province),
		VillagesByPlayer: make(map[int][]int),
		PlayersByTribe:   make(map[int][]int),
	}
}

// Index rebuilds VillagesByPlayer and PlayersByTribe.
func (s *Snapshot) Index() {
	s.VillagesByPlayer = make(map[int][]int)
	s.PlayersByTribe = make(map[int][]int)

	for id, v := range s.Villages {
		if v.CharacterID != nil {
			s.VillagesByPlayer[*v.CharacterID] = append(s.VillagesByPlayer[*v.CharacterID], id)
		}
	}
	for id, p := range s.Players {
		if p.TribeID != nil {
			s.PlayersByTribe[*p.TribeID] = append(s.PlayersByTribe[*p.TribeID], id)
		}
	}

	for _, ids := range s.VillagesByPlayer {
		sort.Ints(ids)
	}
	for _, ids := range s.PlayersByTribe {
		sort.Ints(ids)
	}
}

// TribeTag returns the tag of tribe id, or "" when unknown or nil.
func (s *Snapshot) TribeTag(id *int) string {
	if id == nil {
		return ""
	}
	return s.Tribes[*id].Tag
}

// Achievement is one achievement entry of a subject.
type Achievement struct {
	Type          string
	Category      string
	Level         int
	Period        *string
	TimeLastLevel time.Time
}

// AchievementSnapshot is the result of one achievements crawl.
type AchievementSnapshot struct {
	WorldID string
	TakenAt time.Time
	Players map[int][]Achievement
	Tribes  map[int][]Achievement
}
