// Package integrity checks that the stored world data is consistent with
// what the sync engine expects.
//
// # Checks Provided
//
//   - Schema: compares every table against the GORM models (missing columns, declared types).
//   - Snapshots: worlds flagged map_available whose snapshot info file is missing on disk.
//   - Mirror: worlds with local snapshot files that are absent from the object storage bucket.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/snapshots : Runs the snapshot check (supports ?fix=true, which clears map_available).
//   - GET /integrity/mirror : Runs the mirror check (supports ?fix=true, which re-uploads local files).
package integrity
