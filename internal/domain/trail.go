package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Difficulty represents the difficulty rating of a trail.
// Values include DifficultyEasy, DifficultyModerate, DifficultyHard, and DifficultyExpert.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyExpert   Difficulty = "expert"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Trail represents a persisted hiking trail.
// Rows written by the importer carry a NULL UserID and IsVerified=true to
// mark them as system imports.
type Trail struct {
	ID            string     `gorm:"type:text;primaryKey" json:"id"`
	Name          string     `gorm:"type:text;not null" json:"name"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	Location      string     `gorm:"type:text;not null" json:"location"`
	Difficulty    Difficulty `gorm:"type:text;not null" json:"difficulty"`
	Length        float64    `json:"length"`
	Elevation     float64    `json:"elevation"`
	ElevationGain float64    `json:"elevation_gain"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	Source        string     `gorm:"type:text;index:idx_trails_source" json:"source"`
	SourceID      string     `gorm:"type:text;index:idx_trails_source" json:"source_id"`
	UserID        *string    `gorm:"type:text" json:"user_id,omitempty"`
	IsVerified    bool       `gorm:"default:false" json:"is_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Trail.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Trail) TableName() string {
	return "trails"
}
