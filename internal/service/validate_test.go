package service

import (
	"math"
	"strings"
	"testing"

	"github.com/greentrails/trail-importer/internal/domain"
)

func validCandidate() domain.TrailCandidate {
	return domain.TrailCandidate{
		Name:       "Royal Arch Trail",
		Location:   "Boulder, CO",
		Difficulty: "hard",
		Length:     ptr(3.4),
		Latitude:   ptr(39.9861),
		Longitude:  ptr(-105.2531),
		Source:     "hiking_project",
		SourceID:   "hp-1",
	}
}

func TestValidateCandidateAcceptsValid(t *testing.T) {
	v := NewCandidateValidator()

	result := v.ValidateCandidate(validCandidate())
	if !result.IsValid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if result.Candidate == nil {
		t.Fatal("expected candidate to be echoed back")
	}
}

func TestValidateCandidateDifficulty(t *testing.T) {
	v := NewCandidateValidator()

	testCases := []struct {
		difficulty string
		wantValid  bool
	}{
		{"easy", true},
		{"moderate", true},
		{"hard", true},
		{"expert", true},
		{"", false},
		{"extreme", false},
		{"EASY", false},
		{"medium", false},
	}

	for _, tc := range testCases {
		t.Run("difficulty_"+tc.difficulty, func(t *testing.T) {
			c := validCandidate()
			c.Difficulty = tc.difficulty
			result := v.ValidateCandidate(c)
			if result.IsValid != tc.wantValid {
				t.Fatalf("difficulty %q: valid=%v, want %v (errors: %v)", tc.difficulty, result.IsValid, tc.wantValid, result.Errors)
			}
			if !tc.wantValid && !containsSubstring(result.Errors, "difficulty") {
				t.Fatalf("expected a difficulty message, got %v", result.Errors)
			}
		})
	}
}

func TestValidateCandidateCoordinates(t *testing.T) {
	v := NewCandidateValidator()

	testCases := []struct {
		name      string
		lat, lng  float64
		wantValid bool
		wantField string
	}{
		{"valid", 40.0, -105.0, true, ""},
		{"lat too high", 90.5, -105.0, false, "latitude"},
		{"lat too low", -91.0, -105.0, false, "latitude"},
		{"lng too high", 40.0, 180.1, false, "longitude"},
		{"lng too low", 40.0, -181.0, false, "longitude"},
		{"lat boundary", 90.0, -105.0, true, ""},
		{"lng boundary", 40.0, -180.0, true, ""},
		{"lat NaN", math.NaN(), -105.0, false, "latitude"},
		{"lng Inf", 40.0, math.Inf(1), false, "longitude"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCandidate()
			c.Latitude = ptr(tc.lat)
			c.Longitude = ptr(tc.lng)
			result := v.ValidateCandidate(c)
			if result.IsValid != tc.wantValid {
				t.Fatalf("valid=%v, want %v (errors: %v)", result.IsValid, tc.wantValid, result.Errors)
			}
			if tc.wantField != "" && !containsSubstring(result.Errors, tc.wantField) {
				t.Fatalf("expected a %s message, got %v", tc.wantField, result.Errors)
			}
		})
	}
}

func TestValidateCandidateRequiredFields(t *testing.T) {
	v := NewCandidateValidator()

	c := validCandidate()
	c.Name = "   "
	result := v.ValidateCandidate(c)
	if result.IsValid {
		t.Fatal("expected blank name to be rejected")
	}
	if !containsSubstring(result.Errors, "name") {
		t.Fatalf("expected a name message, got %v", result.Errors)
	}
	if result.Candidate != nil {
		t.Fatal("invalid result must not carry a candidate")
	}

	c = validCandidate()
	c.Location = ""
	result = v.ValidateCandidate(c)
	if result.IsValid || !containsSubstring(result.Errors, "location") {
		t.Fatalf("expected a location rejection, got valid=%v errors=%v", result.IsValid, result.Errors)
	}
}

func TestValidateCandidateCollectsAllErrors(t *testing.T) {
	v := NewCandidateValidator()

	c := domain.TrailCandidate{
		Name:       "",
		Location:   "",
		Difficulty: "extreme",
		Length:     ptr(-1.0),
		Latitude:   ptr(200.0),
	}
	result := v.ValidateCandidate(c)
	if result.IsValid {
		t.Fatal("expected invalid")
	}
	if len(result.Errors) != 5 {
		t.Fatalf("expected all 5 violations reported, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestValidateCandidateNumericFields(t *testing.T) {
	v := NewCandidateValidator()

	c := validCandidate()
	c.Length = ptr(-0.5)
	if result := v.ValidateCandidate(c); result.IsValid {
		t.Fatal("negative length must be rejected")
	}

	c = validCandidate()
	c.Elevation = ptr(-100.0) // below sea level is fine
	if result := v.ValidateCandidate(c); !result.IsValid {
		t.Fatalf("negative elevation should be accepted, got %v", result.Errors)
	}

	c = validCandidate()
	c.ElevationGain = ptr(-10.0)
	if result := v.ValidateCandidate(c); result.IsValid {
		t.Fatal("negative elevation_gain must be rejected")
	}

	// Optional fields absent entirely is valid
	c = validCandidate()
	c.Length = nil
	c.Latitude = nil
	c.Longitude = nil
	if result := v.ValidateCandidate(c); !result.IsValid {
		t.Fatalf("absent optional fields should be accepted, got %v", result.Errors)
	}
}

func TestValidateBatchPartition(t *testing.T) {
	v := NewCandidateValidator()

	bad := validCandidate()
	bad.Latitude = ptr(95.0)

	blank := domain.TrailCandidate{Name: "", Location: "X", Difficulty: "easy", Latitude: ptr(40.0), Longitude: ptr(-105.0)}

	batch := []domain.TrailCandidate{validCandidate(), bad, blank, validCandidate()}
	out := v.ValidateBatch(batch)

	if len(out.Valid) != 2 {
		t.Fatalf("expected 2 valid, got %d", len(out.Valid))
	}
	if len(out.Invalid) != 2 {
		t.Fatalf("expected 2 invalid, got %d", len(out.Invalid))
	}
	if !containsSubstring(out.Invalid[0].Errors, "latitude") {
		t.Fatalf("expected latitude rejection first, got %v", out.Invalid[0].Errors)
	}
	if !containsSubstring(out.Invalid[1].Errors, "name") {
		t.Fatalf("expected name rejection second, got %v", out.Invalid[1].Errors)
	}
}

func TestValidateBatchEmpty(t *testing.T) {
	v := NewCandidateValidator()
	out := v.ValidateBatch(nil)
	if len(out.Valid) != 0 || len(out.Invalid) != 0 {
		t.Fatalf("expected empty partitions, got %d/%d", len(out.Valid), len(out.Invalid))
	}
}

func containsSubstring(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
