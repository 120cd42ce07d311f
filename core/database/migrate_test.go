package database

import (
	"testing"

	"world-sync/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	columns, err := GetTableColumns(db, "sync_queue")
	require.NoError(t, err)

	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Field)
	}
	assert.ElementsMatch(t, []string{"id", "world_id", "type", "active", "created_at"}, names)

	// Running twice is a no-op
	assert.NoError(t, Migrate(db))
}

func TestMigrate_UniqueAchievements(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasIndex(&models.Achievement{}, "idx_achievement_unique"))

	unique := func() *models.Achievement {
		return &models.Achievement{WorldID: "br52", SubjectType: models.SubjectPlayer, SubjectID: 5, Type: "loot", Level: 1}
	}
	require.NoError(t, db.Create(unique()).Error)
	assert.Error(t, db.Create(unique()).Error, "second non-repeatable row")

	// Repeatable instances share a type and may share a period.
	period := "2024-03-09"
	for range 2 {
		row := unique()
		row.Period = &period
		require.NoError(t, db.Create(row).Error)
	}

	var n int64
	require.NoError(t, db.Model(&models.Achievement{}).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func TestVerify_MissingTables(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = Verify(db)
	assert.ErrorContains(t, err, "is missing")
}
