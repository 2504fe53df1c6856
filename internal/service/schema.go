package service

import (
	"fmt"
	"strings"

	"github.com/greentrails/trail-importer/internal/domain"
)

// insertDifficulties is the difficulty set the low-level insert path
// accepts. It is narrower than the candidate rules (no "expert"); rows that
// pass candidate validation with expert difficulty are rejected here. The
// discrepancy is inherited behavior and deliberately not reconciled.
var insertDifficulties = map[domain.Difficulty]bool{
	domain.DifficultyEasy:     true,
	domain.DifficultyModerate: true,
	domain.DifficultyHard:     true,
}

// ValidateTrailSchema performs the schema-shape checks for a trail row
// destined for direct insertion: required identifiers plus the narrow
// difficulty set. It is applied immediately before the insert call,
// independently of candidate validation.
// Parameters:
//   - t: trail row about to be inserted.
// Returns:
//   - []string: violation messages; empty means the row is insertable.
func ValidateTrailSchema(t *domain.Trail) []string {
	var errs []string

	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(t.Location) == "" {
		errs = append(errs, "location is required")
	}
	if strings.TrimSpace(t.SourceID) == "" {
		errs = append(errs, "source_id is required")
	}
	if !insertDifficulties[t.Difficulty] {
		errs = append(errs, fmt.Sprintf("difficulty must be one of easy, moderate, hard; got %q", t.Difficulty))
	}
	if t.Length < 0 {
		errs = append(errs, "length must be a non-negative number")
	}
	if t.ElevationGain < 0 {
		errs = append(errs, "elevation_gain must be a non-negative number")
	}
	if t.Latitude != nil && (*t.Latitude < -90 || *t.Latitude > 90) {
		errs = append(errs, "latitude must be between -90 and 90")
	}
	if t.Longitude != nil && (*t.Longitude < -180 || *t.Longitude > 180) {
		errs = append(errs, "longitude must be between -180 and 180")
	}

	return errs
}
