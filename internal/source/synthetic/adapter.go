package synthetic

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/source"
)

// Region is a named geographic anchor that generated trails cluster around.
type Region struct {
	Name  string
	State string
	Lat   float64
	Lng   float64
}

// DefaultRegions are the anchors used when no region catalog is configured.
var DefaultRegions = []Region{
	{Name: "Boulder Flatirons", State: "CO", Lat: 39.9861, Lng: -105.2531},
	{Name: "Rocky Mountain NP", State: "CO", Lat: 40.3428, Lng: -105.6836},
	{Name: "Mount Tamalpais", State: "CA", Lat: 37.9235, Lng: -122.5965},
	{Name: "Columbia River Gorge", State: "OR", Lat: 45.5762, Lng: -121.9519},
	{Name: "White Mountains", State: "NH", Lat: 44.2706, Lng: -71.3033},
	{Name: "Shenandoah Valley", State: "VA", Lat: 38.4755, Lng: -78.4535},
	{Name: "Superior Hiking Trail", State: "MN", Lat: 47.0188, Lng: -91.6704},
}

var trailFeatures = []string{
	"Ridge", "Creek", "Summit", "Falls", "Meadow", "Canyon", "Overlook", "Lake Loop",
}

var difficulties = []string{"easy", "moderate", "hard", "expert"}

// Adapter generates deterministic placeholder trail candidates clustered
// around named geographic anchors. The same source name and cursor always
// yield the same candidates, which keeps repeated import runs comparable.
type Adapter struct {
	name        string
	displayName string
	regions     []Region
}

// NewAdapter creates a synthetic trail source.
// Parameters:
//   - name: stable source identifier (used as candidate provenance).
//   - displayName: human-readable source name.
//   - regions: anchor catalog; nil uses DefaultRegions.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(name, displayName string, regions []Region) *Adapter {
	if len(regions) == 0 {
		regions = DefaultRegions
	}
	return &Adapter{
		name:        name,
		displayName: displayName,
		regions:     regions,
	}
}

// Name returns the unique identifier for this source
func (a *Adapter) Name() string {
	return a.name
}

// DisplayName returns a human-readable name for this source
func (a *Adapter) DisplayName() string {
	return a.displayName
}

// FetchBatch generates a batch of trail candidates. Cursor is the global
// candidate index encoded as a decimal string; the sequence has no end, so
// callers bound it with their own limit.
func (a *Adapter) FetchBatch(ctx context.Context, loc *source.Location, cursor string, limit int) ([]domain.TrailCandidate, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	startIndex := 0
	if cursor != "" {
		var err error
		startIndex, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", err)
		}
	}

	candidates := make([]domain.TrailCandidate, 0, limit)
	for i := startIndex; i < startIndex+limit; i++ {
		candidates = append(candidates, a.generate(i, loc))
	}

	return candidates, strconv.Itoa(startIndex + limit), nil
}

// generate builds the candidate at the given global index. All variation is
// derived from a hash of source name and index so runs are reproducible.
func (a *Adapter) generate(index int, loc *source.Location) domain.TrailCandidate {
	h := a.hash(index)

	region := a.regions[index%len(a.regions)]
	feature := trailFeatures[int(h>>8)%len(trailFeatures)]
	difficulty := difficulties[int(h>>16)%len(difficulties)]

	// Spread trails within roughly 0.2 degrees of the anchor
	latOffset := float64(int(h%400))/1000.0 - 0.2
	lngOffset := float64(int((h>>10)%400))/1000.0 - 0.2

	lat := region.Lat + latOffset
	lng := region.Lng + lngOffset
	if loc != nil && loc.Lat != 0 && loc.Lng != 0 {
		lat = loc.Lat + latOffset
		lng = loc.Lng + lngOffset
	}

	length := 1.0 + float64(int(h>>20)%140)/10.0
	gain := float64(int(h>>24)%3500) + 100

	return domain.TrailCandidate{
		Name:          fmt.Sprintf("%s %s Trail %d", region.Name, feature, index+1),
		Description:   fmt.Sprintf("A %s %.1f mile trail near %s, %s.", difficulty, length, region.Name, region.State),
		Location:      fmt.Sprintf("%s, %s", region.Name, region.State),
		Difficulty:    difficulty,
		Length:        &length,
		ElevationGain: &gain,
		Latitude:      &lat,
		Longitude:     &lng,
		Source:        a.name,
		SourceID:      fmt.Sprintf("%s-%d", a.name, index),
		Tags:          []string{region.Name},
	}
}

func (a *Adapter) hash(index int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d", a.name, index)
	return h.Sum64()
}
