// Package server holds the control HTTP server configuration.
//
// The control server is the operator channel of the sync engine: it exposes the
// scheduler commands (sync one world, sync all worlds, toggle, reset queue) and
// the queue status. The entry point in cmd/start.go builds the Fiber app; this
// package only defines the settings.
package server
