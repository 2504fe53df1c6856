package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/greentrails/trail-importer/internal/domain"
)

// candidateDifficulties is the difficulty set accepted for incoming
// candidates. It intentionally includes "expert", which the low-level
// insert rules in schema.go do not accept; the two rule sets are applied
// at different pipeline stages and are kept independent.
var candidateDifficulties = map[string]bool{
	"easy":     true,
	"moderate": true,
	"hard":     true,
	"expert":   true,
}

// ValidationResult is the outcome of validating one candidate. Invalid
// results carry a nil Candidate and every violated-field message, not just
// the first.
type ValidationResult struct {
	IsValid   bool                   `json:"is_valid"`
	Errors    []string               `json:"errors,omitempty"`
	Candidate *domain.TrailCandidate `json:"trail,omitempty"`
}

// BatchValidation partitions a candidate list into valid and invalid.
type BatchValidation struct {
	Valid   []domain.TrailCandidate `json:"valid"`
	Invalid []InvalidCandidate      `json:"invalid"`
}

// InvalidCandidate pairs a rejected candidate with its violations.
type InvalidCandidate struct {
	Candidate domain.TrailCandidate `json:"trail"`
	Errors    []string              `json:"errors"`
}

// CandidateValidator enforces the structural rules a candidate must pass
// before it is handed to the batch processor. It never returns an error
// and never mutates the candidate; violations are collected, not coerced.
type CandidateValidator struct{}

// NewCandidateValidator creates a new candidate validator.
func NewCandidateValidator() *CandidateValidator {
	return &CandidateValidator{}
}

// ValidateCandidate checks one candidate against the full rule set.
// Parameters:
//   - c: candidate to validate.
// Returns:
//   - ValidationResult: IsValid plus all violation messages; the candidate
//     is echoed back only when valid.
func (v *CandidateValidator) ValidateCandidate(c domain.TrailCandidate) ValidationResult {
	var errs []string

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if !candidateDifficulties[c.Difficulty] {
		errs = append(errs, fmt.Sprintf("difficulty must be one of easy, moderate, hard, expert; got %q", c.Difficulty))
	}
	if c.Length != nil && (!isFinite(*c.Length) || *c.Length < 0) {
		errs = append(errs, "length must be a non-negative number")
	}
	if c.Elevation != nil && !isFinite(*c.Elevation) {
		errs = append(errs, "elevation must be a number")
	}
	if c.ElevationGain != nil && (!isFinite(*c.ElevationGain) || *c.ElevationGain < 0) {
		errs = append(errs, "elevation_gain must be a non-negative number")
	}
	if c.Latitude != nil && (!isFinite(*c.Latitude) || *c.Latitude < -90 || *c.Latitude > 90) {
		errs = append(errs, "latitude must be between -90 and 90")
	}
	if c.Longitude != nil && (!isFinite(*c.Longitude) || *c.Longitude < -180 || *c.Longitude > 180) {
		errs = append(errs, "longitude must be between -180 and 180")
	}

	if len(errs) > 0 {
		return ValidationResult{IsValid: false, Errors: errs}
	}
	return ValidationResult{IsValid: true, Candidate: &c}
}

// ValidateBatch partitions a candidate list into valid and invalid entries,
// preserving input order within each partition.
// Parameters:
//   - candidates: candidates to validate.
// Returns:
//   - BatchValidation: valid candidates and rejected candidates with their
//     violation messages.
func (v *CandidateValidator) ValidateBatch(candidates []domain.TrailCandidate) BatchValidation {
	out := BatchValidation{
		Valid:   []domain.TrailCandidate{},
		Invalid: []InvalidCandidate{},
	}
	for _, c := range candidates {
		result := v.ValidateCandidate(c)
		if result.IsValid {
			out.Valid = append(out.Valid, c)
		} else {
			out.Invalid = append(out.Invalid, InvalidCandidate{Candidate: c, Errors: result.Errors})
		}
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
