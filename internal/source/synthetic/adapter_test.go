package synthetic

import (
	"context"
	"testing"

	"github.com/greentrails/trail-importer/internal/source"
)

func TestFetchBatchDeterministic(t *testing.T) {
	a := NewAdapter("hiking_project", "Hiking Project", nil)
	ctx := context.Background()

	first, _, err := a.FetchBatch(ctx, nil, "", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, _, err := a.FetchBatch(ctx, nil, "", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(first) != 10 || len(second) != 10 {
		t.Fatalf("expected 10 candidates, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].SourceID != second[i].SourceID {
			t.Fatalf("candidate %d differs between runs: %q vs %q", i, first[i].Name, second[i].Name)
		}
		if *first[i].Latitude != *second[i].Latitude {
			t.Fatalf("candidate %d coordinates differ between runs", i)
		}
	}
}

func TestFetchBatchDiffersBySourceName(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter("hiking_project", "Hiking Project", nil)
	b := NewAdapter("trailapi", "TrailAPI", nil)

	ca, _, _ := a.FetchBatch(ctx, nil, "", 5)
	cb, _, _ := b.FetchBatch(ctx, nil, "", 5)

	same := 0
	for i := range ca {
		if ca[i].Name == cb[i].Name {
			same++
		}
	}
	if same == len(ca) {
		t.Fatal("different sources produced identical candidates")
	}
}

func TestFetchBatchCursorPagination(t *testing.T) {
	a := NewAdapter("hiking_project", "Hiking Project", nil)
	ctx := context.Background()

	all, _, err := a.FetchBatch(ctx, nil, "", 6)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	first, next, err := a.FetchBatch(ctx, nil, "", 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if next != "3" {
		t.Fatalf("expected next cursor 3, got %q", next)
	}
	rest, next, err := a.FetchBatch(ctx, nil, next, 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if next != "6" {
		t.Fatalf("expected next cursor 6, got %q", next)
	}

	paged := append(first, rest...)
	for i := range all {
		if all[i].SourceID != paged[i].SourceID {
			t.Fatalf("pagination changed the sequence at %d: %q vs %q", i, all[i].SourceID, paged[i].SourceID)
		}
	}
}

func TestFetchBatchInvalidCursor(t *testing.T) {
	a := NewAdapter("hiking_project", "Hiking Project", nil)

	if _, _, err := a.FetchBatch(context.Background(), nil, "not-a-number", 3); err == nil {
		t.Fatal("expected an invalid cursor error")
	}
}

func TestFetchBatchCandidateShape(t *testing.T) {
	a := NewAdapter("hiking_project", "Hiking Project", nil)

	candidates, _, err := a.FetchBatch(context.Background(), nil, "", 50)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	valid := map[string]bool{"easy": true, "moderate": true, "hard": true, "expert": true}
	for _, c := range candidates {
		if c.Name == "" || c.Location == "" {
			t.Fatalf("candidate missing name or location: %+v", c)
		}
		if !valid[c.Difficulty] {
			t.Fatalf("unexpected difficulty %q", c.Difficulty)
		}
		if c.Source != "hiking_project" {
			t.Fatalf("wrong provenance %q", c.Source)
		}
		if c.Latitude == nil || *c.Latitude < -90 || *c.Latitude > 90 {
			t.Fatalf("latitude out of range: %v", c.Latitude)
		}
		if c.Longitude == nil || *c.Longitude < -180 || *c.Longitude > 180 {
			t.Fatalf("longitude out of range: %v", c.Longitude)
		}
		if c.Length == nil || *c.Length <= 0 {
			t.Fatalf("length must be positive: %v", c.Length)
		}
	}
}

func TestFetchBatchLocationOverride(t *testing.T) {
	a := NewAdapter("hiking_project", "Hiking Project", nil)
	loc := &source.Location{Lat: 47.6, Lng: -122.3}

	candidates, _, err := a.FetchBatch(context.Background(), loc, "", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, c := range candidates {
		if *c.Latitude < loc.Lat-0.3 || *c.Latitude > loc.Lat+0.3 {
			t.Fatalf("latitude %f not clustered around %f", *c.Latitude, loc.Lat)
		}
		if *c.Longitude < loc.Lng-0.3 || *c.Longitude > loc.Lng+0.3 {
			t.Fatalf("longitude %f not clustered around %f", *c.Longitude, loc.Lng)
		}
	}
}
