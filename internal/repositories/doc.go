// Package repositories implements SQLite persistence for destination track matches.
//
// [MatchRepository] stores one row per (service, artist, title), where artist and title are the
// normalized values a search was issued with. [MatchCacheAdapter] exposes it to the migration
// engine so repeated runs skip searches that already succeeded. Only positive matches are stored.
//
// The schema lives in the shared package's embedded migrations; run `heard setup database` first.
package repositories
