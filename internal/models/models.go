// package models defines the data model for playlist migration
package models

// PlaylistDescriptor identifies a playlist on either platform.
type PlaylistDescriptor struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// SourceItem is a playlist entry as reported by the source platform.
//
// Artist and Title are nil when the platform has no value for them.
type SourceItem struct {
	ID     string
	Artist *string
	Title  *string
}

// Track is a destination catalog entry returned by a search.
type Track struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist" yaml:"artist"`
}

// TrackRecord is one song discovered on the source platform.
type TrackRecord struct {
	SourceItemID string `json:"source_item_id" yaml:"source_item_id"`
	RawArtist    string `json:"raw_artist" yaml:"raw_artist"`
	RawTitle     string `json:"raw_title" yaml:"raw_title"`
	Artist       string `json:"artist" yaml:"artist"`
	Title        string `json:"title" yaml:"title"`
}

// NewTrackRecord promotes a source item to a record using normalize for both fields.
//
// Returns false when either raw field is absent; such items never become records.
func NewTrackRecord(item SourceItem, normalize func(string) string) (TrackRecord, bool) {
	if item.Artist == nil || item.Title == nil {
		return TrackRecord{}, false
	}

	return TrackRecord{
		SourceItemID: item.ID,
		RawArtist:    *item.Artist,
		RawTitle:     *item.Title,
		Artist:       normalize(*item.Artist),
		Title:        normalize(*item.Title),
	}, true
}

// MatchResult pairs a record with a destination track, or marks it unmatched when Track is nil.
type MatchResult struct {
	Record     TrackRecord `json:"record" yaml:"record"`
	Track      *Track      `json:"track,omitempty" yaml:"track,omitempty"`
	Confidence float64     `json:"confidence" yaml:"confidence"` // similarity of query and hit, 0 when unmatched
	Cached     bool        `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// Matched reports whether a destination track was found.
func (m MatchResult) Matched() bool {
	return m.Track != nil
}

// TrackCollection maps source item ids to records.
//
// Iteration follows first insertion; re-inserting an id replaces the record in place.
type TrackCollection struct {
	records map[string]TrackRecord
	order   []string
}

// NewTrackCollection creates an empty [TrackCollection].
func NewTrackCollection() *TrackCollection {
	return &TrackCollection{records: make(map[string]TrackRecord)}
}

// Put inserts or replaces the record keyed by its SourceItemID.
func (c *TrackCollection) Put(r TrackRecord) {
	if _, ok := c.records[r.SourceItemID]; !ok {
		c.order = append(c.order, r.SourceItemID)
	}
	c.records[r.SourceItemID] = r
}

// Get returns the record for a source item id.
func (c *TrackCollection) Get(id string) (TrackRecord, bool) {
	r, ok := c.records[id]
	return r, ok
}

// Len returns the number of records.
func (c *TrackCollection) Len() int {
	return len(c.order)
}

// Records returns the records in iteration order.
func (c *TrackCollection) Records() []TrackRecord {
	out := make([]TrackRecord, len(c.order))
	for i, id := range c.order {
		out[i] = c.records[id]
	}
	return out
}

// StringPtr returns a pointer to s, for building [SourceItem] values.
func StringPtr(s string) *string {
	return &s
}
