package domain

// TrailCandidate represents an unvalidated trail record produced by a data
// source. Candidates are ephemeral: they only become Trail rows once they
// pass validation and the insert succeeds.
type TrailCandidate struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Location      string   `json:"location"`
	Difficulty    string   `json:"difficulty"`
	Length        *float64 `json:"length,omitempty"`
	Elevation     *float64 `json:"elevation,omitempty"`
	ElevationGain *float64 `json:"elevation_gain,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Source        string   `json:"source"`
	SourceID      string   `json:"source_id"`
	Tags          []string `json:"tags,omitempty"`
}
