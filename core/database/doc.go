// Package database handles database connections, migrations and schema inspection.
//
// It wraps GORM to configure MySQL (production) or SQLite (single node, tests)
// connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the
// database before returning.
//
// # Migrate
//
// Migrate runs AutoMigrate for every model in core/models and then Verify,
// which uses the schema inspector to confirm that every table and primary key
// column exists.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	if err := database.Migrate(db); err != nil {
//	    log.Fatal(err)
//	}
package database
