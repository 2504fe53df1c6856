package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobStatus represents the status of a bulk import job.
// Values include JobStatusQueued, JobStatusProcessing, JobStatusCompleted,
// JobStatusError, and JobStatusCancelled.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status is a final state. Terminal jobs are
// never mutated again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError || s == JobStatusCancelled
}

// SourceResult summarizes one source's contribution to a bulk import run.
type SourceResult struct {
	Source    string `json:"source"`
	Processed int    `json:"processed"`
	Added     int    `json:"added"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// JobResults is the JSON payload stored on a finished job row: the trailing
// insert errors plus per-source summaries.
type JobResults struct {
	Errors        []string       `json:"errors,omitempty"`
	SourceResults []SourceResult `json:"source_results,omitempty"`
}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the results.
//   - error: non-nil if marshaling fails.
func (r JobResults) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
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
func (r *JobResults) Scan(value interface{}) error {
	if value == nil {
		*r = JobResults{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JobResults")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, r)
}

// BulkImportJob represents one bulk import run across one or more sources.
// Counters are monotonically non-decreasing until the job reaches a terminal
// status, and TrailsProcessed == TrailsAdded + TrailsFailed at finalization.
type BulkImportJob struct {
	ID                   string      `gorm:"type:text;primaryKey" json:"id"`
	Status               JobStatus   `gorm:"type:text;index:idx_bulk_import_jobs_status;default:queued" json:"status"`
	TotalTrailsRequested int         `gorm:"default:0" json:"total_trails_requested"`
	TotalSources         int         `gorm:"default:0" json:"total_sources"`
	TrailsProcessed      int         `gorm:"default:0" json:"trails_processed"`
	TrailsAdded          int         `gorm:"default:0" json:"trails_added"`
	TrailsUpdated        int         `gorm:"default:0" json:"trails_updated"`
	TrailsFailed         int         `gorm:"default:0" json:"trails_failed"`
	Sources              StringArray `gorm:"type:text" json:"sources,omitempty"`
	LocationName         string      `gorm:"type:text" json:"location_name,omitempty"`
	Results              JobResults  `gorm:"type:text" json:"results"`
	StartedAt            *time.Time  `json:"started_at,omitempty"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// TableName returns the database table name for BulkImportJob.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (BulkImportJob) TableName() string {
	return "bulk_import_jobs"
}

// TrailImportJob is the per-source child row of a bulk import job. One row
// is written for every source the orchestrator runs, whether or not the
// source produced any trails.
type TrailImportJob struct {
	ID              string     `gorm:"type:text;primaryKey" json:"id"`
	JobID           string     `gorm:"type:text;not null;index" json:"job_id"`
	Source          string     `gorm:"type:text;not null" json:"source"`
	Status          JobStatus  `gorm:"type:text;default:queued" json:"status"`
	TrailsProcessed int        `gorm:"default:0" json:"trails_processed"`
	TrailsAdded     int        `gorm:"default:0" json:"trails_added"`
	TrailsFailed    int        `gorm:"default:0" json:"trails_failed"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName returns the database table name for TrailImportJob.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (TrailImportJob) TableName() string {
	return "trail_import_jobs"
}
