// Package logger builds the zap logger used across the engine.
//
// A debug level selects zap's development config, anything else the
// production one. Format picks the json or console encoder.
//
// Two helpers derive scoped loggers:
//
//   - WithRayID attaches the ray_id of a control API request.
//   - ForWorld attaches the world and sync type of a sync attempt, so every
//     line written by the session, crawler and reconcile steps of one attempt
//     can be filtered together.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.ForWorld(log, "br52", "data")
//	l.Info("Sync started")
package logger
