package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"world-sync/core/crawler"
	"world-sync/core/database"
	"world-sync/core/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// commitSnapshot loads the stored state, plans snap against it and applies the plan.
func commitSnapshot(t *testing.T, db *gorm.DB, snap *crawler.Snapshot) *Plan {
	t.Helper()
	ctx := context.Background()
	prior, err := LoadState(ctx, db, snap.WorldID)
	require.NoError(t, err)
	plan := PlanData(prior, snap)
	require.NoError(t, Apply(ctx, db, plan))
	return plan
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestApply_Br52Scenario(t *testing.T) {
	db := newTestDB(t)

	first := snapshotOf(
		[]crawler.Village{{ID: 1001, X: 500, Y: 500, Points: 800, CharacterID: ptr(5), ProvinceID: 1}},
		[]crawler.Player{{ID: 5, Name: "five", TribeID: ptr(10)}, {ID: 7, Name: "seven", TribeID: ptr(20)}},
		[]crawler.Tribe{{ID: 10, Tag: "TEN"}, {ID: 20, Tag: "TWY"}},
	)
	first.Provinces[1] = crawler.Province{ID: 1, Name: "Centre"}
	plan := commitSnapshot(t, db, first)
	assert.Empty(t, plan.Conquests, "first sync has no prior owners")

	second := snapshotOf(
		[]crawler.Village{{ID: 1001, X: 500, Y: 500, Points: 800, CharacterID: ptr(7), ProvinceID: 1}},
		[]crawler.Player{{ID: 5, Name: "five", TribeID: ptr(10)}, {ID: 7, Name: "seven", TribeID: ptr(20)}},
		[]crawler.Tribe{{ID: 10, Tag: "TEN"}, {ID: 20, Tag: "TWY"}},
	)
	commitSnapshot(t, db, second)

	var conquests []models.Conquest
	require.NoError(t, db.Find(&conquests).Error)
	require.Len(t, conquests, 1)
	c := conquests[0]
	assert.Equal(t, "br52", c.WorldID)
	assert.Equal(t, 1001, c.VillageID)
	require.NotNil(t, c.OldOwner)
	assert.Equal(t, 5, *c.OldOwner)
	assert.Equal(t, 7, c.NewOwner)
	require.NotNil(t, c.OldOwnerTribeID)
	assert.Equal(t, 10, *c.OldOwnerTribeID)
	require.NotNil(t, c.NewOwnerTribeID)
	assert.Equal(t, 20, *c.NewOwnerTribeID)
	assert.Equal(t, 800, c.VillagePointsThen)

	var village models.Village
	require.NoError(t, db.First(&village, "world_id = ? AND id = ?", "br52", 1001).Error)
	assert.Equal(t, 7, *village.CharacterID)

	var province models.Province
	require.NoError(t, db.First(&province, "world_id = ? AND id = ?", "br52", 1).Error)
	assert.Equal(t, "Centre", province.Name)
}

func TestApply_Idempotent(t *testing.T) {
	db := newTestDB(t)

	commitSnapshot(t, db, snapshotOf(
		[]crawler.Village{{ID: 1, CharacterID: ptr(5)}, {ID: 2}},
		[]crawler.Player{{ID: 5, TribeID: ptr(10), Stats: models.Stats{Rank: 1, Points: 100, Villages: 1}}},
		[]crawler.Tribe{{ID: 10, Tag: "TEN"}},
	))

	next := snapshotOf(
		[]crawler.Village{{ID: 1, CharacterID: ptr(6)}, {ID: 2, CharacterID: ptr(5)}},
		[]crawler.Player{{ID: 5}, {ID: 6, TribeID: ptr(10), Stats: models.Stats{Rank: 2, Points: 50}}},
		[]crawler.Tribe{{ID: 10, Tag: "TEN"}},
	)
	plan := commitSnapshot(t, db, next)
	assert.Len(t, plan.Conquests, 2)
	assert.Len(t, plan.TribeChanges, 1)

	conquests, changes := count(t, db, &models.Conquest{}), count(t, db, &models.TribeChange{})

	again := commitSnapshot(t, db, next)
	assert.Empty(t, again.Conquests)
	assert.Empty(t, again.TribeChanges)
	assert.Zero(t, again.Summary.Records)
	assert.Zero(t, again.Summary.Archived)
	assert.Equal(t, conquests, count(t, db, &models.Conquest{}))
	assert.Equal(t, changes, count(t, db, &models.TribeChange{}))
}

func TestApply_NullOwnerConquest(t *testing.T) {
	db := newTestDB(t)

	commitSnapshot(t, db, snapshotOf([]crawler.Village{{ID: 42, Points: 300}}, nil, nil))
	commitSnapshot(t, db, snapshotOf(
		[]crawler.Village{{ID: 42, Points: 300, CharacterID: ptr(7)}},
		[]crawler.Player{{ID: 7}},
		nil,
	))

	var conquests []models.Conquest
	require.NoError(t, db.Find(&conquests).Error)
	require.Len(t, conquests, 1)
	assert.Nil(t, conquests[0].OldOwner)
	assert.Equal(t, 7, conquests[0].NewOwner)
}

func TestApply_ArchiveKeepsHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	commitSnapshot(t, db, snapshotOf(nil,
		[]crawler.Player{{ID: 5, Stats: models.Stats{Points: 100}}, {ID: 6}},
		[]crawler.Tribe{{ID: 10}},
	))
	_, err := AppendHistory(ctx, db, []string{"br52"}, day, 30)
	require.NoError(t, err)

	commitSnapshot(t, db, snapshotOf(nil, []crawler.Player{{ID: 6}}, nil))

	var player models.Player
	require.NoError(t, db.First(&player, "world_id = ? AND id = ?", "br52", 5).Error)
	assert.True(t, player.Archived)

	var tribe models.Tribe
	require.NoError(t, db.First(&tribe, "world_id = ? AND id = ?", "br52", 10).Error)
	assert.True(t, tribe.Archived)

	var history []models.PlayerHistory
	require.NoError(t, db.Where("world_id = ? AND player_id = ?", "br52", 5).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, 100, history[0].Points)

	// coming back un-archives
	commitSnapshot(t, db, snapshotOf(nil, []crawler.Player{{ID: 5}, {ID: 6}}, nil))
	require.NoError(t, db.First(&player, "world_id = ? AND id = ?", "br52", 5).Error)
	assert.False(t, player.Archived)
}

func TestApplyAchievements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	commit := func(snap *crawler.AchievementSnapshot) *AchievementPlan {
		prior, err := LoadAchievementState(ctx, db, "br52")
		require.NoError(t, err)
		plan := PlanAchievements(prior, snap)
		require.NoError(t, ApplyAchievements(ctx, db, plan))
		return plan
	}

	day1, day2 := "2024-01-01", "2024-01-02"
	commit(&crawler.AchievementSnapshot{WorldID: "br52", Players: map[int][]crawler.Achievement{
		5: {{Type: "conqueror", Level: 4}, {Type: "daily_loot", Level: 1, Period: &day1}},
	}})

	lower := &crawler.AchievementSnapshot{WorldID: "br52", Players: map[int][]crawler.Achievement{
		5: {{Type: "conqueror", Level: 2}, {Type: "daily_loot", Level: 1, Period: &day1}},
	}}
	plan := commit(lower)
	assert.Empty(t, plan.Update)
	assert.Empty(t, plan.Add)

	var row models.Achievement
	require.NoError(t, db.First(&row, "type = ?", "conqueror").Error)
	assert.Equal(t, 4, row.Level)

	higher := &crawler.AchievementSnapshot{WorldID: "br52", Players: map[int][]crawler.Achievement{
		5: {
			{Type: "conqueror", Level: 5},
			{Type: "daily_loot", Level: 1, Period: &day1},
			{Type: "daily_loot", Level: 1, Period: &day2},
		},
	}}
	plan = commit(higher)
	assert.Len(t, plan.Update, 1)
	assert.Len(t, plan.Add, 1)

	require.NoError(t, db.First(&row, "type = ?", "conqueror").Error)
	assert.Equal(t, 5, row.Level)
	assert.Equal(t, int64(3), count(t, db, &models.Achievement{}))

	again := commit(higher)
	assert.Empty(t, again.Add)
	assert.Empty(t, again.Update)
	assert.Equal(t, int64(3), count(t, db, &models.Achievement{}))
}

func TestApply_CommitFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `conquests`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	plan := &Plan{WorldID: "br52", Conquests: []models.Conquest{{WorldID: "br52", VillageID: 1, NewOwner: 7}}}
	err = Apply(context.Background(), db, plan)
	assert.ErrorIs(t, err, ErrCommitFailure)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
