package database

import (
	"fmt"

	"world-sync/core/models"

	"gorm.io/gorm"
)

// Migrate creates or updates every table of the sync engine and verifies
// that each one is readable afterwards.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := uniqueAchievements(db); err != nil {
		return fmt.Errorf("failed to create achievement index: %w", err)
	}
	return Verify(db)
}

// uniqueAchievements allows one row per (world, subject, type) for
// non-repeatable achievements. Repeatable rows carry a period and are exempt.
// MySQL has no partial indexes, so it indexes an expression that is NULL
// for repeatable rows (functional key parts, MySQL 8.0.13+).
func uniqueAchievements(db *gorm.DB) error {
	const name = "idx_achievement_unique"
	if db.Migrator().HasIndex(&models.Achievement{}, name) {
		return nil
	}
	switch db.Dialector.Name() {
	case "sqlite":
		return db.Exec("CREATE UNIQUE INDEX " + name +
			" ON achievements (world_id, subject_type, subject_id, type) WHERE period IS NULL").Error
	case "mysql":
		return db.Exec("CREATE UNIQUE INDEX " + name +
			" ON achievements (world_id, subject_type, subject_id, (CASE WHEN period IS NULL THEN type END))").Error
	}
	return nil
}

// Verify checks that every model table exists with at least its primary key column.
func Verify(db *gorm.DB) error {
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		columns, err := GetTableColumns(db, table)
		if err != nil {
			return err
		}
		if len(columns) == 0 {
			return fmt.Errorf("table %s is missing", table)
		}

		present := make(map[string]struct{}, len(columns))
		for _, col := range columns {
			present[col.Field] = struct{}{}
		}
		for _, pk := range stmt.Schema.PrimaryFieldDBNames {
			if _, ok := present[pk]; !ok {
				return fmt.Errorf("table %s is missing primary key column %s", table, pk)
			}
		}
	}
	return nil
}
