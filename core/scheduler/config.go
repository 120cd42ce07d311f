package scheduler

import "time"

// Config holds configuration for the sync pools and background tasks.
type Config struct {
	// DataConcurrency is the number of data syncs running at once.
	DataConcurrency int `mapstructure:"data_concurrency" default:"3"`
	// AchievementsConcurrency is the number of achievement syncs running at once.
	AchievementsConcurrency int `mapstructure:"achievements_concurrency" default:"1"`
	// DataMaxRunningMinutes aborts a data sync running longer than this.
	DataMaxRunningMinutes int `mapstructure:"data_max_running_minutes" default:"20"`
	// AchievementsMaxRunningMinutes aborts an achievements sync running longer than this.
	AchievementsMaxRunningMinutes int `mapstructure:"achievements_max_running_minutes" default:"60"`

	DataIntervalMinutes         int `mapstructure:"data_interval_minutes" default:"60"`
	AchievementsIntervalMinutes int `mapstructure:"achievements_interval_minutes" default:"360"`
	DiscoveryIntervalMinutes    int `mapstructure:"discovery_interval_minutes" default:"1440"`
	CleanSharesIntervalMinutes  int `mapstructure:"clean_shares_interval_minutes" default:"1440"`

	// ShareMaxAgeDays is the idle time after which a map share is deleted.
	ShareMaxAgeDays int `mapstructure:"share_max_age_days" default:"30"`
	// HistoryRetentionDays is how long daily history rows are kept.
	HistoryRetentionDays int `mapstructure:"history_retention_days" default:"30"`
	// TickSeconds is the period of the background task check.
	TickSeconds int `mapstructure:"tick_seconds" default:"60"`
}

// Concurrency returns the pool size of typ, at least 1.
func (c Config) Concurrency(typ SyncType) int {
	n := c.DataConcurrency
	if typ == TypeAchievements {
		n = c.AchievementsConcurrency
	}
	return max(n, 1)
}

// MaxRunning returns the time budget of one attempt of typ.
func (c Config) MaxRunning(typ SyncType) time.Duration {
	minutes, fallback := c.DataMaxRunningMinutes, 20
	if typ == TypeAchievements {
		minutes, fallback = c.AchievementsMaxRunningMinutes, 60
	}
	if minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes) * time.Minute
}

// Tick returns the period of the background task check.
func (c Config) Tick() time.Duration {
	if c.TickSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.TickSeconds) * time.Second
}

func minutes(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Minute
}
