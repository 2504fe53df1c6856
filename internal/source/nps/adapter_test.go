package nps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/greentrails/trail-importer/internal/source"
)

func TestFetchBatchMapsPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.URL.Query().Get("q"); got != "trail" {
			t.Errorf("q = %q, want trail", got)
		}
		if got := r.URL.Query().Get("stateCode"); got != "VA" {
			t.Errorf("stateCode = %q, want VA", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": "2",
			"data": [
				{
					"id": "p1",
					"title": "Old Rag Mountain Trail",
					"listingDescription": "A strenuous circuit hike.",
					"latitude": "38.5518",
					"longitude": "-78.3228",
					"relatedParks": [{"fullName": "Shenandoah National Park", "states": "VA"}]
				},
				{
					"id": "p2",
					"title": "Unnamed Path",
					"latitude": "not-a-number",
					"longitude": "",
					"relatedParks": []
				}
			]
		}`))
	}))
	defer srv.Close()

	a := NewAdapter(&Config{APIKey: "test-key", BaseURL: srv.URL})
	loc := &source.Location{State: "VA"}

	candidates, next, err := a.FetchBatch(context.Background(), loc, "", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if next != "" {
		t.Fatalf("all results returned, expected no next cursor, got %q", next)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Name != "Old Rag Mountain Trail" || c.SourceID != "p1" || c.Source != SourceID {
		t.Fatalf("first candidate wrong: %+v", c)
	}
	if c.Location != "Shenandoah National Park, VA" {
		t.Fatalf("location = %q", c.Location)
	}
	if c.Difficulty != "moderate" {
		t.Fatalf("difficulty = %q, want the moderate default", c.Difficulty)
	}
	if c.Latitude == nil || *c.Latitude != 38.5518 {
		t.Fatalf("latitude = %v", c.Latitude)
	}

	// Unparseable coordinates stay nil, park-less places get a fallback location
	c = candidates[1]
	if c.Latitude != nil || c.Longitude != nil {
		t.Fatalf("expected nil coordinates, got %v/%v", c.Latitude, c.Longitude)
	}
	if c.Location == "" {
		t.Fatal("expected a fallback location")
	}
}

func TestFetchBatchPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		start := r.URL.Query().Get("start")
		if start == "" || start == "0" {
			w.Write([]byte(`{"total": "3", "data": [{"id": "p1", "title": "A"}, {"id": "p2", "title": "B"}]}`))
			return
		}
		w.Write([]byte(`{"total": "3", "data": [{"id": "p3", "title": "C"}]}`))
	}))
	defer srv.Close()

	a := NewAdapter(&Config{APIKey: "k", BaseURL: srv.URL})
	ctx := context.Background()

	first, next, err := a.FetchBatch(ctx, nil, "", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(first) != 2 || next != "2" {
		t.Fatalf("got %d candidates next=%q, want 2 and \"2\"", len(first), next)
	}

	rest, next, err := a.FetchBatch(ctx, nil, next, 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rest) != 1 || next != "" {
		t.Fatalf("got %d candidates next=%q, want 1 and end", len(rest), next)
	}
	if rest[0].SourceID != "p3" {
		t.Fatalf("wrong tail candidate %q", rest[0].SourceID)
	}
}

func TestFetchBatchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewAdapter(&Config{APIKey: "k", BaseURL: srv.URL})
	if _, _, err := a.FetchBatch(context.Background(), nil, "", 5); err == nil {
		t.Fatal("expected an error for a 429 response")
	}
}
