package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/services"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultConcurrency = 4
	lowConfidence      = 0.6
)

// State is a stage of a migration run.
type State int

const (
	Idle State = iota
	PlaylistResolved
	Gathering
	Gathered
	Resolving
	Resolved
	Exporting
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlaylistResolved:
		return "playlist_resolved"
	case Gathering:
		return "gathering"
	case Gathered:
		return "gathered"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case Exporting:
		return "exporting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// PhaseError records which step of a run failed. The wrapped error keeps its kind.
type PhaseError struct {
	State State  // state the engine was in
	Op    string // operation that failed
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed while %s: %v", e.Op, e.State, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// MatchCacher stores destination matches between runs.
//
// GetMatch returns (nil, nil) on a miss. Errors are logged by the engine and never fail a run.
type MatchCacher interface {
	GetMatch(ctx context.Context, service, artist, title string) (*models.Track, error)
	PutMatch(ctx context.Context, service string, record models.TrackRecord, track models.Track) error
}

// EngineOpts configures a [MigrationEngine].
type EngineOpts struct {
	Source      services.SourceCatalog
	Destination services.DestinationCatalog
	Logger      *log.Logger
	Cache       MatchCacher           // optional
	Progress    chan<- ProgressUpdate // optional, never blocks the run
	Concurrency int                   // concurrent searches (default: 4)
	RateLimit   float64               // searches per second, 0 for unlimited
	CallTimeout time.Duration         // per catalog call, 0 for none
	PageSize    int                   // source item page size, used to flag truncated reads
}

// RunOpts are the inputs of a non-interactive run.
type RunOpts struct {
	PlaylistName    string // source playlist title
	Owner           string // destination user id
	DestinationName string // defaults to the source title
}

// MigrationResult summarizes a run for display and reports.
type MigrationResult struct {
	RunID              string                     `json:"run_id" yaml:"run_id"`
	SourceService      string                     `json:"source_service" yaml:"source_service"`
	DestinationService string                     `json:"destination_service" yaml:"destination_service"`
	Source             *models.PlaylistDescriptor `json:"source,omitempty" yaml:"source,omitempty"`
	Destination        *models.PlaylistDescriptor `json:"destination,omitempty" yaml:"destination,omitempty"`
	State              string                     `json:"state" yaml:"state"`
	Gathered           int                        `json:"gathered" yaml:"gathered"`
	SkippedMissing     int                        `json:"skipped_missing" yaml:"skipped_missing"`
	Matched            int                        `json:"matched" yaml:"matched"`
	NoMatch            int                        `json:"no_match" yaml:"no_match"`
	CacheHits          int                        `json:"cache_hits" yaml:"cache_hits"`
	MatchPercentage    float64                    `json:"match_percentage" yaml:"match_percentage"`
	TrackIDs           []string                   `json:"track_ids" yaml:"track_ids"`
	Matches            []models.MatchResult       `json:"matches" yaml:"matches"`
	StartedAt          time.Time                  `json:"started_at" yaml:"started_at"`
	FinishedAt         time.Time                  `json:"finished_at,omitzero" yaml:"finished_at,omitempty"`
	Error              string                     `json:"error,omitempty" yaml:"error,omitempty"`
	Err                error                      `json:"-" yaml:"-"`
}

// MigrationEngine drives one playlist migration.
//
// Phases must be called in order: [MigrationEngine.ResolvePlaylist], [MigrationEngine.Gather],
// [MigrationEngine.Resolve], [MigrationEngine.Export]. An engine is single use.
type MigrationEngine struct {
	source      services.SourceCatalog
	destination services.DestinationCatalog
	cache       MatchCacher
	logger      *log.Logger
	progress    chan<- ProgressUpdate
	concurrency int
	limiter     *rate.Limiter
	timeout     time.Duration
	pageSize    int

	mu           sync.Mutex
	state        State
	runID        string
	startedAt    time.Time
	finishedAt   time.Time
	playlist     *models.PlaylistDescriptor
	collection   *models.TrackCollection
	skipped      int
	matches      []models.MatchResult
	trackIDs     []string
	noMatch      int
	cacheHits    int
	destPlaylist *models.PlaylistDescriptor
	err          error
}

// NewMigrationEngine creates an engine in the [Idle] state.
func NewMigrationEngine(opts EngineOpts) (*MigrationEngine, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("%w: source catalog not initialized", shared.ErrInvalidInput)
	}
	if opts.Destination == nil {
		return nil, fmt.Errorf("%w: destination catalog not initialized", shared.ErrInvalidInput)
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	runID := shared.GenerateID()
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &MigrationEngine{
		source:      opts.Source,
		destination: opts.Destination,
		cache:       opts.Cache,
		logger:      shared.WithLogger(logger, "run_id", runID),
		progress:    opts.Progress,
		concurrency: opts.Concurrency,
		limiter:     rate.NewLimiter(limit, 1),
		timeout:     opts.CallTimeout,
		pageSize:    opts.PageSize,
		runID:       runID,
		startedAt:   time.Now(),
		collection:  models.NewTrackCollection(),
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *MigrationEngine) sendProgress(update ProgressUpdate) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- update:
	default:
	}
}

// State returns the current state.
func (e *MigrationEngine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RunID returns the id attached to every log line of this run.
func (e *MigrationEngine) RunID() string {
	return e.runID
}

func (e *MigrationEngine) advance(from, to State) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != from {
		return fmt.Errorf("%w: cannot enter %s from %s (expected %s)", shared.ErrInvalidState, to, e.state, from)
	}
	e.state = to
	return nil
}

func (e *MigrationEngine) fail(op string, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	phaseErr := &PhaseError{State: e.state, Op: op, Err: err}
	e.state = Failed
	e.err = phaseErr
	e.finishedAt = time.Now()

	e.logger.Error("migration failed", "op", op, "state", phaseErr.State, "err", err)
	return phaseErr
}

func (e *MigrationEngine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// unavailable makes sure a failed catalog call carries the unavailable kind of its side.
// Errors that already carry a catalog kind pass through. When the run context itself is done,
// its error is returned so a cancelled run is not blamed on the platform.
func unavailable(ctx context.Context, kind, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	for _, known := range []error{
		shared.ErrSourceUnavailable,
		shared.ErrDestinationUnavailable,
		shared.ErrPlaylistNotFound,
		shared.ErrInvalidOwner,
		shared.ErrAppendRejected,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %v", kind, shared.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}

// ResolvePlaylist looks up the source playlist by title.
//
// [shared.ErrPlaylistNotFound] leaves the engine [Idle] so the caller can retry with another name.
func (e *MigrationEngine) ResolvePlaylist(ctx context.Context, name string) (*models.PlaylistDescriptor, error) {
	if err := e.advance(Idle, Idle); err != nil {
		return nil, err
	}

	e.sendProgress(findPlaylistUpdate(name, e.source.Name()))

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	pl, err := e.source.FindPlaylistByName(callCtx, name)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		e.logger.Warn("playlist not found", "name", name)
		return nil, err
	}
	if err != nil {
		return nil, e.fail("find playlist", unavailable(ctx, shared.ErrSourceUnavailable, err))
	}

	if err := e.advance(Idle, PlaylistResolved); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.playlist = pl
	e.mu.Unlock()

	e.logger.Info("playlist resolved", "name", pl.Name, "id", pl.ID)
	e.sendProgress(foundPlaylistUpdate(pl))
	return pl, nil
}

// Gather reads the playlist items and builds the track collection.
//
// Items missing an artist or a title are counted and skipped.
func (e *MigrationEngine) Gather(ctx context.Context) (*models.TrackCollection, error) {
	if err := e.advance(PlaylistResolved, Gathering); err != nil {
		return nil, err
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	items, err := e.source.ListItems(callCtx, e.playlist.ID)
	if err != nil {
		return nil, e.fail("list items", unavailable(ctx, shared.ErrSourceUnavailable, err))
	}

	if e.pageSize > 0 && len(items) >= e.pageSize {
		e.logger.Debug("item page is full, later items are not read", "page_size", e.pageSize)
	}

	collection := models.NewTrackCollection()
	seen := make(map[string]string, len(items))
	skipped := 0
	for _, item := range items {
		record, ok := models.NewTrackRecord(item, shared.Normalize)
		if !ok {
			skipped++
			e.logger.Debug("skipping item", "id", item.ID, "reason", shared.ErrMissingMetadata)
			continue
		}

		key := shared.NormalizeTrackKey(record.Title, record.Artist)
		if prev, dup := seen[key]; dup && prev != record.SourceItemID {
			e.logger.Debug("song appears more than once", "id", record.SourceItemID, "first", prev)
		} else if !dup {
			seen[key] = record.SourceItemID
		}
		collection.Put(record)
	}

	e.mu.Lock()
	e.collection = collection
	e.skipped = skipped
	e.mu.Unlock()

	if err := e.advance(Gathering, Gathered); err != nil {
		return nil, err
	}

	e.logger.Info("items gathered", "tracks", collection.Len(), "skipped", skipped)
	e.sendProgress(gatheredUpdate(collection.Len(), skipped))
	return collection, nil
}

// Resolve searches the destination for every gathered record.
//
// Searches run concurrently up to the configured limit; the returned ids follow collection order.
// Records without a match are dropped and counted. Any other search error fails the run.
func (e *MigrationEngine) Resolve(ctx context.Context) ([]string, error) {
	if err := e.advance(Gathered, Resolving); err != nil {
		return nil, err
	}

	records := e.collection.Records()
	results := make([]models.MatchResult, len(records))
	total := len(records)

	e.sendProgress(searchTracksUpdate(0, total, nil))

	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, record := range records {
		g.Go(func() error {
			res, err := e.match(gctx, record)
			if err != nil {
				return err
			}
			results[i] = res
			e.sendProgress(searchTracksUpdate(int(done.Add(1)), total, &res))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, e.fail("search tracks", unavailable(ctx, shared.ErrDestinationUnavailable, err))
	}

	ids := make([]string, 0, len(results))
	noMatch, hits := 0, 0
	for _, res := range results {
		if !res.Matched() {
			noMatch++
			continue
		}
		if res.Cached {
			hits++
		}
		ids = append(ids, res.Track.ID)
	}

	e.mu.Lock()
	e.matches = results
	e.trackIDs = ids
	e.noMatch = noMatch
	e.cacheHits = hits
	e.mu.Unlock()

	if err := e.advance(Resolving, Resolved); err != nil {
		return nil, err
	}

	e.logger.Info("tracks resolved", "matched", len(ids), "no_match", noMatch, "cache_hits", hits)
	return ids, nil
}

func (e *MigrationEngine) match(ctx context.Context, record models.TrackRecord) (models.MatchResult, error) {
	service := e.destination.Name()
	res := models.MatchResult{Record: record}

	if e.cache != nil {
		track, err := e.cache.GetMatch(ctx, service, record.Artist, record.Title)
		if err != nil {
			e.logger.Warn("match cache lookup failed", "err", err)
		} else if track != nil {
			res.Track = track
			res.Cached = true
			res.Confidence = confidence(record, *track)
			return res, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return res, err
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	track, err := e.destination.SearchTrack(callCtx, record.Artist, record.Title)
	if errors.Is(err, shared.ErrNoMatch) {
		e.logger.Warn("no match", "artist", record.Artist, "title", record.Title)
		return res, nil
	}
	if err != nil {
		return res, err
	}

	res.Track = track
	res.Confidence = confidence(record, *track)
	if res.Confidence < lowConfidence {
		e.logger.Warn("low confidence match",
			"artist", record.Artist, "title", record.Title,
			"hit", track.Artist+" - "+track.Title, "confidence", res.Confidence)
	} else {
		e.logger.Debug("matched", "artist", record.Artist, "title", record.Title, "track_id", track.ID)
	}

	if e.cache != nil {
		if err := e.cache.PutMatch(ctx, service, record, *track); err != nil {
			e.logger.Warn("match cache store failed", "err", err)
		}
	}
	return res, nil
}

// confidence scores how close the accepted hit is to the query. It never changes which hit is used.
func confidence(record models.TrackRecord, track models.Track) float64 {
	query := strings.ToLower(strings.Join(strings.Fields(record.Title+" "+record.Artist), " "))
	hit := strings.ToLower(strings.Join(strings.Fields(track.Title+" "+track.Artist), " "))
	if query == "" || hit == "" {
		return 0
	}

	score, err := edlib.StringsSimilarity(query, hit, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}

// Export creates the destination playlist and appends the resolved ids in one call.
//
// A failed append leaves the created playlist in place; it is reported in [MigrationEngine.Result].
func (e *MigrationEngine) Export(ctx context.Context, owner, name string) (*models.PlaylistDescriptor, error) {
	if err := e.advance(Resolved, Exporting); err != nil {
		return nil, err
	}

	if name == "" {
		name = e.playlist.Name
	}

	e.sendProgress(createPlaylistUpdate(name, e.destination.Name()))

	createCtx, cancel := e.callContext(ctx)
	defer cancel()

	pl, err := e.destination.CreatePlaylist(createCtx, owner, name)
	if err != nil {
		return nil, e.fail("create playlist", unavailable(ctx, shared.ErrDestinationUnavailable, err))
	}

	e.mu.Lock()
	e.destPlaylist = pl
	ids := e.trackIDs
	e.mu.Unlock()

	e.logger.Info("playlist created", "name", pl.Name, "id", pl.ID)
	if len(ids) == 0 {
		e.logger.Warn("no tracks matched, destination playlist left empty", "id", pl.ID)
	}

	e.sendProgress(appendTracksUpdate(pl, len(ids)))

	appendCtx, cancelAppend := e.callContext(ctx)
	defer cancelAppend()

	if err := e.destination.AppendTracks(appendCtx, pl.ID, ids); err != nil {
		return pl, e.fail("append tracks", unavailable(ctx, shared.ErrDestinationUnavailable, err))
	}

	if err := e.advance(Exporting, Done); err != nil {
		return pl, err
	}

	e.mu.Lock()
	e.finishedAt = time.Now()
	e.mu.Unlock()

	result := e.Result()
	e.logger.Info("migration complete", "matched", result.Matched, "gathered", result.Gathered)
	e.sendProgress(completeUpdate(result))
	return pl, nil
}

// Run drives every phase in order. A missing playlist is returned as [shared.ErrPlaylistNotFound]
// with the engine still [Idle].
func (e *MigrationEngine) Run(ctx context.Context, opts RunOpts) (*MigrationResult, error) {
	pl, err := e.ResolvePlaylist(ctx, opts.PlaylistName)
	if err != nil {
		return e.resultWith(err), err
	}

	if _, err := e.Gather(ctx); err != nil {
		return e.Result(), err
	}
	if _, err := e.Resolve(ctx); err != nil {
		return e.Result(), err
	}

	name := opts.DestinationName
	if name == "" {
		name = pl.Name
	}
	if _, err := e.Export(ctx, opts.Owner, name); err != nil {
		return e.Result(), err
	}
	return e.Result(), nil
}

func (e *MigrationEngine) resultWith(err error) *MigrationResult {
	result := e.Result()
	if result.Err == nil && err != nil {
		result.Err = err
		result.Error = err.Error()
	}
	return result
}

// Result snapshots the run. It is safe to call in any state.
func (e *MigrationEngine) Result() *MigrationResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := &MigrationResult{
		RunID:              e.runID,
		SourceService:      e.source.Name(),
		DestinationService: e.destination.Name(),
		Source:             e.playlist,
		Destination:        e.destPlaylist,
		State:              e.state.String(),
		Gathered:           e.collection.Len(),
		SkippedMissing:     e.skipped,
		Matched:            len(e.trackIDs),
		NoMatch:            e.noMatch,
		CacheHits:          e.cacheHits,
		TrackIDs:           append([]string(nil), e.trackIDs...),
		Matches:            append([]models.MatchResult(nil), e.matches...),
		StartedAt:          e.startedAt,
		FinishedAt:         e.finishedAt,
		Err:                e.err,
	}

	if result.Gathered > 0 {
		result.MatchPercentage = float64(result.Matched) / float64(result.Gathered) * 100
	}
	if e.err != nil {
		result.Error = e.err.Error()
	}
	return result
}
