// Package models defines the values that flow through a playlist migration.
//
//   - [PlaylistDescriptor] : id and name of a playlist on either platform
//   - [SourceItem] : one playlist entry as reported by the source, artist and title possibly absent
//   - [TrackRecord] : a source item with normalized artist and title
//   - [TrackCollection] : records keyed by source item id, built once per run
//   - [Track] : a destination catalog hit
//   - [MatchResult] : a record paired with a destination track id or a no-match marker
//
// None of these values are persisted; the destination playlist is the only durable output of a run.
package models
