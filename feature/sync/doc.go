// Package sync implements the operator control channel of the scheduler.
//
// # Components
//
//   - Service: Validates sync types and delegates to the scheduler.
//   - Handler: Exposes the HTTP endpoints.
//   - Loader: Registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST /sync/:type/:world : Queue one world (type is data or achievements).
//   - POST /sync/:type : Queue every open world with the type enabled.
//   - POST /sync/toggle/:world?type= : Flip the sync switch of a world.
//   - POST /sync/reset/:type : Drop the queue of a pool and recreate it.
//   - GET /sync/status : Pools and per-world sync state.
package sync
