package scheduler

import (
	"errors"
	"fmt"

	"world-sync/core/models"
)

var (
	// ErrNoAccounts is returned when the market of a world has no credentials.
	ErrNoAccounts = errors.New("no accounts")
	// ErrWorldClosed is returned for a world that no longer accepts logins.
	ErrWorldClosed = errors.New("world closed")
	// ErrWorldNotEnabled is returned when sync of the requested type is disabled.
	ErrWorldNotEnabled = errors.New("world not enabled")
	// ErrSyncTimeout is returned when an attempt exceeds its time budget.
	ErrSyncTimeout = errors.New("sync timeout")
	// ErrWorldNotFound is returned for an unknown world id.
	ErrWorldNotFound = errors.New("world not found")
	// ErrUnknownSyncType is returned by ParseSyncType.
	ErrUnknownSyncType = errors.New("unknown sync type")
)

// SyncType selects what an attempt crawls. Each type has its own pool.
type SyncType string

const (
	TypeData         SyncType = "data"
	TypeAchievements SyncType = "achievements"
)

// Types lists every sync type.
func Types() []SyncType {
	return []SyncType{TypeData, TypeAchievements}
}

// ParseSyncType validates s.
func ParseSyncType(s string) (SyncType, error) {
	switch SyncType(s) {
	case TypeData, TypeAchievements:
		return SyncType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSyncType, s)
}

// statusOf maps the outcome of an attempt to the status recorded on the world.
func statusOf(err error) string {
	switch {
	case err == nil:
		return models.StatusSuccess
	case errors.Is(err, ErrSyncTimeout):
		return models.StatusTimeout
	case errors.Is(err, ErrWorldClosed):
		return models.StatusClosed
	case errors.Is(err, ErrNoAccounts):
		return models.StatusNoAccounts
	case errors.Is(err, ErrWorldNotEnabled):
		return models.StatusNotEnabled
	default:
		return models.StatusFail
	}
}

// statusColumns returns the status and timestamp columns of typ on worlds.
func statusColumns(typ SyncType) (string, string) {
	if typ == TypeAchievements {
		return "last_achievements_sync_status", "last_achievements_sync_at"
	}
	return "last_data_sync_status", "last_data_sync_at"
}

// enabledColumn returns the sync switch column of typ on worlds.
func enabledColumn(typ SyncType) string {
	if typ == TypeAchievements {
		return "sync_achievements_enabled"
	}
	return "sync_data_enabled"
}
