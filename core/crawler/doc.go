// Package crawler turns an authenticated game session into a complete world
// snapshot.
//
// Data crawls the village map, the tribe and player rankings and the province
// names. To avoid scanning the whole 1000x1000 grid it first walks outward
// from the grid centre along each axis, one chunk at a time, until two chunks
// in a row come back empty; only the chunks inside the discovered rectangle
// are crawled afterwards. Chunks, ranking pages and achievement lookups are
// requested in batches of BatchSize concurrent requests, and each batch
// completes before the next one starts.
//
// Achievements reuses the ranking crawl to discover subject ids and fetches
// the achievement list of each subject, keeping levels above zero.
//
// The crawler never retries. The first failed request cancels its batch and
// the error is returned to the caller, which retries whole attempts.
package crawler
