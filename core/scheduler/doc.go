// Package scheduler decides what to crawl and when.
//
// Work is persisted in the sync_queue table, one row per (world, sync type),
// and executed by one bounded pool per sync type. A row is inserted when a
// sync is requested, flagged active once a pool slot is acquired and deleted
// after the terminal status has been written to the world. On boot Restore
// re-seeds the pools from the rows left by the previous process.
//
// An attempt verifies the world, authenticates with the market accounts,
// selects or creates the crawl character, crawls and commits the result.
// Each sync type has a time budget; an attempt exceeding it has its session
// killed and is recorded as timeout.
//
// Run drives the background tasks (full resyncs, world discovery, share
// cleanup) and the daily history cutover of each market.
package scheduler
