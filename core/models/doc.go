// Package models defines the relational rows written by the sync engine.
//
// Every table the presentation layer reads is declared here as a GORM model:
// markets and their crawl accounts, worlds with per-type sync status, the
// current subject tables (players, tribes, villages, provinces), the event
// logs (conquests, tribe changes), the achievement ledger, daily history and
// the persisted sync queue.
//
// Subjects are never deleted. A subject missing from a new snapshot is marked
// Archived and keeps its history rows.
package models
