package models

import (
	"strings"
	"testing"
)

func TestNewTrackRecord(t *testing.T) {
	upper := strings.ToUpper

	t.Run("both fields present", func(t *testing.T) {
		rec, ok := NewTrackRecord(SourceItem{ID: "id1", Artist: StringPtr("Sia"), Title: StringPtr("Chandelier")}, upper)
		if !ok {
			t.Fatal("expected record")
		}
		if rec.SourceItemID != "id1" || rec.Artist != "SIA" || rec.Title != "CHANDELIER" {
			t.Errorf("unexpected record %+v", rec)
		}
		if rec.RawArtist != "Sia" || rec.RawTitle != "Chandelier" {
			t.Errorf("raw fields not kept: %+v", rec)
		}
	})

	t.Run("missing artist", func(t *testing.T) {
		if _, ok := NewTrackRecord(SourceItem{ID: "id2", Title: StringPtr("Unknown")}, upper); ok {
			t.Error("expected no record without artist")
		}
	})

	t.Run("missing title", func(t *testing.T) {
		if _, ok := NewTrackRecord(SourceItem{ID: "id3", Artist: StringPtr("Queen")}, upper); ok {
			t.Error("expected no record without title")
		}
	})

	t.Run("empty strings are present", func(t *testing.T) {
		if _, ok := NewTrackRecord(SourceItem{ID: "id4", Artist: StringPtr(""), Title: StringPtr("")}, upper); !ok {
			t.Error("empty but present fields should still produce a record")
		}
	})
}

func TestTrackCollection(t *testing.T) {
	t.Run("keeps first insertion order", func(t *testing.T) {
		c := NewTrackCollection()
		c.Put(TrackRecord{SourceItemID: "b", Title: "B"})
		c.Put(TrackRecord{SourceItemID: "a", Title: "A"})
		c.Put(TrackRecord{SourceItemID: "c", Title: "C"})

		got := c.Records()
		if len(got) != 3 || got[0].SourceItemID != "b" || got[1].SourceItemID != "a" || got[2].SourceItemID != "c" {
			t.Errorf("unexpected order %+v", got)
		}
	})

	t.Run("collision replaces in place", func(t *testing.T) {
		c := NewTrackCollection()
		c.Put(TrackRecord{SourceItemID: "x", Title: "old"})
		c.Put(TrackRecord{SourceItemID: "y", Title: "y"})
		c.Put(TrackRecord{SourceItemID: "x", Title: "new"})

		if c.Len() != 2 {
			t.Fatalf("expected 2 records, got %d", c.Len())
		}
		rec, ok := c.Get("x")
		if !ok || rec.Title != "new" {
			t.Errorf("expected replaced record, got %+v", rec)
		}
		if c.Records()[0].SourceItemID != "x" {
			t.Error("replaced record should keep its position")
		}
	})

	t.Run("empty", func(t *testing.T) {
		c := NewTrackCollection()
		if c.Len() != 0 || len(c.Records()) != 0 {
			t.Error("expected empty collection")
		}
		if _, ok := c.Get("missing"); ok {
			t.Error("expected miss")
		}
	})
}

func TestMatchResult(t *testing.T) {
	if (MatchResult{}).Matched() {
		t.Error("zero value should be unmatched")
	}
	if !(MatchResult{Track: &Track{ID: "sp1"}}).Matched() {
		t.Error("expected matched")
	}
}
