package models

import "time"

// Subject types, used where logic applies to players and tribes alike.
const (
	SubjectPlayer = "player"
	SubjectTribe  = "tribe"
)

// Stats are the point-in-time figures shared by players and tribes.
type Stats struct {
	Points          int `gorm:"column:points"`
	Villages        int `gorm:"column:villages"`
	Rank            int `gorm:"column:rank"`
	VictoryPoints   int `gorm:"column:victory_points"`
	BashPointsOff   int `gorm:"column:bash_points_off"`
	BashPointsDef   int `gorm:"column:bash_points_def"`
	BashPointsTotal int `gorm:"column:bash_points_total"`
}

// Bests are the best-ever figures of a subject. A zero BestRank means unset.
type Bests struct {
	BestRank       int        `gorm:"column:best_rank"`
	BestRankAt     *time.Time `gorm:"column:best_rank_at"`
	BestPoints     int        `gorm:"column:best_points"`
	BestPointsAt   *time.Time `gorm:"column:best_points_at"`
	BestVillages   int        `gorm:"column:best_villages"`
	BestVillagesAt *time.Time `gorm:"column:best_villages_at"`
}

// Player is a character of a world.
type Player struct {
	WorldID  string `gorm:"column:world_id;primaryKey;size:16"`
	ID       int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name     string `gorm:"column:name"`
	TribeID  *int   `gorm:"column:tribe_id"`
	Stats    `gorm:"embedded"`
	Bests    `gorm:"embedded"`
	Archived bool      `gorm:"column:archived;index"`
	LastSeen time.Time `gorm:"column:last_seen_at"`
}

// TableName overrides the table name.
func (Player) TableName() string { return "players" }

// Tribe is a player group of a world.
type Tribe struct {
	WorldID  string `gorm:"column:world_id;primaryKey;size:16"`
	ID       int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name     string `gorm:"column:name"`
	Tag      string `gorm:"column:tag"`
	Members  int    `gorm:"column:members"`
	Level    int    `gorm:"column:level"`
	Stats    `gorm:"embedded"`
	Bests    `gorm:"embedded"`
	Archived bool      `gorm:"column:archived;index"`
	LastSeen time.Time `gorm:"column:last_seen_at"`
}

// TableName overrides the table name.
func (Tribe) TableName() string { return "tribes" }

// Village is a map position owned by a character or abandoned.
type Village struct {
	WorldID     string `gorm:"column:world_id;primaryKey;size:16"`
	ID          int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	X           int    `gorm:"column:x"`
	Y           int    `gorm:"column:y"`
	Name        string `gorm:"column:name"`
	Points      int    `gorm:"column:points"`
	CharacterID *int   `gorm:"column:character_id;index"`
	ProvinceID  int    `gorm:"column:province_id"`
}

// TableName overrides the table name.
func (Village) TableName() string { return "villages" }

// Province is a named map region.
type Province struct {
	WorldID string `gorm:"column:world_id;primaryKey;size:16"`
	ID      int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name    string `gorm:"column:name"`
}

// TableName overrides the table name.
func (Province) TableName() string { return "provinces" }
