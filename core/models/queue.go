package models

import "time"

// QueueItem is a persisted unit of sync work. The unique index keeps at most
// one item per (world, type).
type QueueItem struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	WorldID   string    `gorm:"column:world_id;size:16;uniqueIndex:idx_queue_world_type"`
	Type      string    `gorm:"column:type;size:16;uniqueIndex:idx_queue_world_type"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (QueueItem) TableName() string { return "sync_queue" }

// Task records the last run of a background task.
type Task struct {
	Name      string    `gorm:"column:name;primaryKey;size:32"`
	LastRunAt time.Time `gorm:"column:last_run_at"`
}

// TableName overrides the table name.
func (Task) TableName() string { return "tasks" }

// MapShare is a shared map view created by the web layer.
type MapShare struct {
	ID           uint      `gorm:"column:id;primaryKey"`
	WorldID      string    `gorm:"column:world_id;size:16"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	LastAccessAt time.Time `gorm:"column:last_access_at;index"`
}

// TableName overrides the table name.
func (MapShare) TableName() string { return "map_shares" }

// All returns every model, in migration order.
func All() []any {
	return []any{
		&Market{}, &Account{}, &World{},
		&Player{}, &Tribe{}, &Village{}, &Province{},
		&Conquest{}, &TribeChange{}, &Achievement{},
		&PlayerHistory{}, &TribeHistory{},
		&QueueItem{}, &Task{}, &MapShare{},
	}
}
