package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Sync status values recorded on a world after an attempt terminates.
const (
	StatusSuccess    = "success"
	StatusFail       = "fail"
	StatusTimeout    = "timeout"
	StatusClosed     = "closed"
	StatusNoAccounts = "no_accounts"
	StatusNotEnabled = "not_enabled"
)

var worldIDPattern = regexp.MustCompile(`^([a-z]+)(\d+)$`)

// World is one game server instance identified by market and number.
type World struct {
	ID       string `gorm:"column:id;primaryKey;size:16"`
	MarketID string `gorm:"column:market_id;size:8;index"`
	Number   int    `gorm:"column:number"`
	Name     string `gorm:"column:name"`
	Open     bool   `gorm:"column:open"`

	SyncDataEnabled         bool `gorm:"column:sync_data_enabled"`
	SyncAchievementsEnabled bool `gorm:"column:sync_achievements_enabled"`

	LastDataSyncStatus         string     `gorm:"column:last_data_sync_status"`
	LastDataSyncAt             *time.Time `gorm:"column:last_data_sync_at"`
	LastAchievementsSyncStatus string     `gorm:"column:last_achievements_sync_status"`
	LastAchievementsSyncAt     *time.Time `gorm:"column:last_achievements_sync_at"`

	// Config holds the world ruleset constants as returned by the game, JSON encoded.
	Config       string `gorm:"column:config;type:text"`
	MapAvailable bool   `gorm:"column:map_available"`

	CreatedAt time.Time  `gorm:"column:created_at"`
	ClosedAt  *time.Time `gorm:"column:closed_at"`
}

// TableName overrides the table name.
func (World) TableName() string { return "worlds" }

// ParseWorldID splits a world id such as "br52" into market and number.
func ParseWorldID(id string) (string, int, error) {
	m := worldIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, fmt.Errorf("invalid world id %q", id)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid world number in %q: %w", id, err)
	}
	return m[1], n, nil
}

// WorldID builds the world id from market and number.
func WorldID(market string, number int) string {
	return market + strconv.Itoa(number)
}
