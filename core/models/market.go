package models

import "time"

// Market is a regional deployment of the game.
type Market struct {
	ID string `gorm:"column:id;primaryKey;size:8"`
	// TimeOffsetMinutes is the market's UTC offset, used for the daily history cutover.
	TimeOffsetMinutes int        `gorm:"column:time_offset_minutes"`
	Enabled           bool       `gorm:"column:enabled"`
	LastHistoryAt     *time.Time `gorm:"column:last_history_at"`
	Accounts          []Account  `gorm:"foreignKey:MarketID"`
}

// TableName overrides the table name.
func (Market) TableName() string { return "markets" }

// Location returns the fixed zone of the market.
func (m Market) Location() *time.Location {
	return time.FixedZone(m.ID, m.TimeOffsetMinutes*60)
}

// Account is one crawl credential of a market. Lower Position is tried first.
type Account struct {
	ID       uint   `gorm:"column:id;primaryKey"`
	MarketID string `gorm:"column:market_id;size:8;index"`
	Name     string `gorm:"column:name"`
	Password string `gorm:"column:password"`
	Position int    `gorm:"column:position"`
}

// TableName overrides the table name.
func (Account) TableName() string { return "accounts" }
