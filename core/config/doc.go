// Package config provides configuration management for the world sync engine.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (loaded with godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: control API settings (port, API key)
//   - Database: MySQL or SQLite connection details
//   - Storage: optional S3/MinIO mirror for snapshot files
//   - Log: logging level and format
//   - Sync: pool sizes, per-type time limits and background task intervals
//   - Session: remote endpoint template and request timeout
//   - Snapshot: directory of the compressed snapshot cache
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.DataConcurrency)
package config
