// Package middleware groups the Fiber middleware of the control API.
//
// # Components
//
//   - auth: rejects requests without the configured X-API-Key. An empty key
//     disables the check for local setups.
//   - rayid: tags every request with an X-Ray-ID, reusing the caller's value
//     when present, so handler logs can be correlated.
//
// Both are registered globally in cmd/start, rayid first.
package middleware
