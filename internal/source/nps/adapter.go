package nps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/source"
)

const (
	SourceID   = "nps"
	SourceName = "National Park Service"
)

// Config holds configuration for the NPS source.
type Config struct {
	APIKey  string
	BaseURL string
}

// Adapter fetches trail candidates from the National Park Service places
// API. This is the one live upstream in the source catalog; API failures
// surface as source errors and never abort the rest of a bulk run.
type Adapter struct {
	client  *resty.Client
	baseURL string
}

// NewAdapter creates a new NPS adapter.
// Parameters:
//   - cfg: NPS configuration including API key and base URL.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(cfg *Config) *Adapter {
	client := resty.New()
	client.SetHeader("X-Api-Key", cfg.APIKey)
	client.SetHeader("Accept", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(30 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://developer.nps.gov/api/v1"
	}

	return &Adapter{
		client:  client,
		baseURL: baseURL,
	}
}

// Name returns the unique identifier for this source
func (a *Adapter) Name() string {
	return SourceID
}

// DisplayName returns a human-readable name for this source
func (a *Adapter) DisplayName() string {
	return SourceName
}

// NPS places API response structures
type placesResponse struct {
	Total string  `json:"total"`
	Data  []place `json:"data"`
}

type place struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	ListingDescription string        `json:"listingDescription"`
	Latitude           string        `json:"latitude"`
	Longitude          string        `json:"longitude"`
	RelatedParks       []relatedPark `json:"relatedParks"`
}

type relatedPark struct {
	FullName string `json:"fullName"`
	States   string `json:"states"`
}

// FetchBatch fetches a page of places from the NPS API and maps them to
// trail candidates. Cursor is the API's start offset.
func (a *Adapter) FetchBatch(ctx context.Context, loc *source.Location, cursor string, limit int) ([]domain.TrailCandidate, string, error) {
	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", err)
		}
	}

	req := a.client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("start", strconv.Itoa(start)).
		SetQueryParam("q", "trail")
	if loc != nil && loc.State != "" {
		req.SetQueryParam("stateCode", loc.State)
	}

	var body placesResponse
	resp, err := req.SetResult(&body).Get(a.baseURL + "/places")
	if err != nil {
		return nil, "", fmt.Errorf("NPS request failed: %w", err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("NPS request failed: status %d", resp.StatusCode())
	}

	candidates := make([]domain.TrailCandidate, 0, len(body.Data))
	for _, p := range body.Data {
		c := domain.TrailCandidate{
			Name:        p.Title,
			Description: p.ListingDescription,
			Difficulty:  "moderate", // NPS does not publish difficulty ratings
			Source:      SourceID,
			SourceID:    p.ID,
		}
		if len(p.RelatedParks) > 0 {
			c.Location = fmt.Sprintf("%s, %s", p.RelatedParks[0].FullName, p.RelatedParks[0].States)
		} else {
			c.Location = "National Park Service"
		}
		if lat, err := strconv.ParseFloat(p.Latitude, 64); err == nil {
			c.Latitude = &lat
		}
		if lng, err := strconv.ParseFloat(p.Longitude, 64); err == nil {
			c.Longitude = &lng
		}
		candidates = append(candidates, c)
	}

	nextCursor := ""
	total, _ := strconv.Atoi(body.Total)
	if start+len(body.Data) < total && len(body.Data) > 0 {
		nextCursor = strconv.Itoa(start + len(body.Data))
	}

	return candidates, nextCursor, nil
}
