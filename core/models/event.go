package models

import "time"

// Conquest is an immutable ownership transfer of a village. Tribe ids and tags
// are captured at event time.
type Conquest struct {
	ID                uint      `gorm:"column:id;primaryKey"`
	WorldID           string    `gorm:"column:world_id;size:16;index"`
	VillageID         int       `gorm:"column:village_id;index"`
	OldOwner          *int      `gorm:"column:old_owner"`
	NewOwner          int       `gorm:"column:new_owner"`
	OldOwnerTribeID   *int      `gorm:"column:old_owner_tribe_id"`
	OldOwnerTribeTag  string    `gorm:"column:old_owner_tribe_tag"`
	NewOwnerTribeID   *int      `gorm:"column:new_owner_tribe_id"`
	NewOwnerTribeTag  string    `gorm:"column:new_owner_tribe_tag"`
	VillagePointsThen int       `gorm:"column:village_points_then"`
	Date              time.Time `gorm:"column:date;index"`
}

// TableName overrides the table name.
func (Conquest) TableName() string { return "conquests" }

// TribeChange is an immutable membership change of a player.
type TribeChange struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	WorldID     string    `gorm:"column:world_id;size:16;index"`
	CharacterID int       `gorm:"column:character_id;index"`
	OldTribe    *int      `gorm:"column:old_tribe"`
	OldTribeTag string    `gorm:"column:old_tribe_tag"`
	NewTribe    *int      `gorm:"column:new_tribe"`
	NewTribeTag string    `gorm:"column:new_tribe_tag"`
	Date        time.Time `gorm:"column:date;index"`
}

// TableName overrides the table name.
func (TribeChange) TableName() string { return "tribe_changes" }

// Achievement is one ledger row. Period is set only for repeatable
// achievements, which get one row per earned instance.
type Achievement struct {
	ID            uint      `gorm:"column:id;primaryKey"`
	WorldID       string    `gorm:"column:world_id;size:16;index:idx_achievement_subject"`
	SubjectType   string    `gorm:"column:subject_type;size:8;index:idx_achievement_subject"`
	SubjectID     int       `gorm:"column:subject_id;index:idx_achievement_subject"`
	Type          string    `gorm:"column:type;size:64"`
	Category      string    `gorm:"column:category;size:32"`
	Level         int       `gorm:"column:level"`
	Period        *string   `gorm:"column:period;size:32"`
	TimeLastLevel time.Time `gorm:"column:time_last_level"`
}

// TableName overrides the table name.
func (Achievement) TableName() string { return "achievements" }

// Repeatable reports whether the row is one instance of a repeatable achievement.
func (a Achievement) Repeatable() bool {
	return a.Period != nil
}

// PlayerHistory is one daily point-in-time row of a player.
type PlayerHistory struct {
	ID       uint      `gorm:"column:id;primaryKey"`
	WorldID  string    `gorm:"column:world_id;size:16;index:idx_player_history"`
	PlayerID int       `gorm:"column:player_id;index:idx_player_history"`
	Date     time.Time `gorm:"column:date;index"`
	TribeID  *int      `gorm:"column:tribe_id"`
	Stats    `gorm:"embedded"`
}

// TableName overrides the table name.
func (PlayerHistory) TableName() string { return "player_history" }

// TribeHistory is one daily point-in-time row of a tribe.
type TribeHistory struct {
	ID      uint      `gorm:"column:id;primaryKey"`
	WorldID string    `gorm:"column:world_id;size:16;index:idx_tribe_history"`
	TribeID int       `gorm:"column:tribe_id;index:idx_tribe_history"`
	Date    time.Time `gorm:"column:date;index"`
	Members int       `gorm:"column:members"`
	Stats   `gorm:"embedded"`
}

// TableName overrides the table name.
func (TribeHistory) TableName() string { return "tribe_history" }
