// Package tasks runs a playlist migration from a source catalog to a destination catalog with progress reporting.
//
// # State Machine
//
// [MigrationEngine] moves through these states:
//
//	Idle → PlaylistResolved → Gathering → Gathered → Resolving → Resolved → Exporting → Done
//
// Any fatal error moves it to Failed and is returned as a [*PhaseError] naming the operation.
// A playlist that cannot be found is not fatal: the engine stays Idle and the caller may retry
// [MigrationEngine.ResolvePlaylist] with another name.
//
// # Phases
//
//  1. [MigrationEngine.ResolvePlaylist] : case-insensitive title lookup on the source
//  2. [MigrationEngine.Gather] : reads one page of items, normalizes artist and title, and
//     keys records by source item id. Items missing either field are skipped and counted.
//  3. [MigrationEngine.Resolve] : searches the destination for every record. Searches run
//     concurrently (errgroup with a limit, rate limiter) but the id list follows collection order.
//     A miss is counted, any other error is fatal.
//  4. [MigrationEngine.Export] : creates the destination playlist and appends all ids in one call.
//     A failed append leaves the created playlist in place.
//
// [MigrationEngine.Run] drives all four for non-interactive callers.
//
// # Progress Reporting
//
// Updates are sent on an optional channel with select/default so a slow reader never stalls a run.
//
// # Match Caching
//
// The optional [MatchCacher] is consulted before each search and fed every new match.
// Cache errors are logged and ignored.
package tasks
