package source

import (
	"context"

	"github.com/greentrails/trail-importer/internal/domain"
)

// Location narrows a fetch to a geographic area. All fields are optional;
// adapters that cannot filter by location ignore it.
type Location struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
	City   string  `json:"city,omitempty"`
	State  string  `json:"state,omitempty"`
}

// Source defines the interface for trail data sources.
type Source interface {
	// Name returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	Name() string

	// DisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	DisplayName() string

	// FetchBatch fetches a batch of trail candidates starting from the given cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - loc: optional geographic filter.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of candidates to fetch.
	// Returns:
	//   - candidates: batch of trail candidates.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, loc *Location, cursor string, limit int) (candidates []domain.TrailCandidate, nextCursor string, err error)
}
