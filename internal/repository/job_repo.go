package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/greentrails/trail-importer/internal/domain"
	"gorm.io/gorm"
)

// ImportJobRepository handles bulk import job bookkeeping. The orchestrator
// is the only writer of bulk_import_jobs rows; the batch processor never
// touches them.
type ImportJobRepository struct {
	db *gorm.DB
}

// NewImportJobRepository creates a new ImportJobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ImportJobRepository: repository instance bound to db.
func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

// Create inserts a new bulk import job row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: job record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ImportJobRepository) Create(ctx context.Context, job *domain.BulkImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a bulk import job by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.BulkImportJob: job record if found.
//   - error: non-nil if lookup fails.
func (r *ImportJobRepository) GetByID(ctx context.Context, id string) (*domain.BulkImportJob, error) {
	var job domain.BulkImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateCounters writes running counters onto a job row so polling clients
// see progress. Counters only grow until the job is finalized.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to update.
//   - processed, added, failed: current running totals.
// Returns:
//   - error: non-nil if the update fails.
func (r *ImportJobRepository) UpdateCounters(ctx context.Context, jobID string, processed, added, failed int) error {
	result := r.db.WithContext(ctx).Model(&domain.BulkImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"trails_processed": processed,
			"trails_added":     added,
			"trails_failed":    failed,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update job counters: %w", result.Error)
	}
	return nil
}

// Finalize stamps the terminal status, final counters, and results payload
// onto a job row. After this the row is immutable.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to finalize.
//   - status: terminal status to set.
//   - processed, added, failed: final totals.
//   - results: trailing errors and per-source summaries.
// Returns:
//   - error: non-nil if the update fails.
func (r *ImportJobRepository) Finalize(ctx context.Context, jobID string, status domain.JobStatus, processed, added, failed int, results domain.JobResults) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&domain.BulkImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":           status,
			"trails_processed": processed,
			"trails_added":     added,
			"trails_failed":    failed,
			"results":          results,
			"completed_at":     &now,
			"updated_at":       now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finalize job: %w", result.Error)
	}
	return nil
}

// ListRecent retrieves the most recent jobs, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
// Returns:
//   - []domain.BulkImportJob: matching job records.
//   - error: non-nil if the query fails.
func (r *ImportJobRepository) ListRecent(ctx context.Context, limit int) ([]domain.BulkImportJob, error) {
	var jobs []domain.BulkImportJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListCompletedWithoutAdds retrieves completed jobs that added zero trails.
// These are the jobs the failure analysis inspects.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
// Returns:
//   - []domain.BulkImportJob: matching job records.
//   - error: non-nil if the query fails.
func (r *ImportJobRepository) ListCompletedWithoutAdds(ctx context.Context, limit int) ([]domain.BulkImportJob, error) {
	var jobs []domain.BulkImportJob
	if err := r.db.WithContext(ctx).
		Where("status = ? AND trails_added = 0", domain.JobStatusCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindStuck retrieves processing jobs whose started_at is older than the
// cutoff. A job is "stuck" purely by wall-clock age; there is no heartbeat.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cutoff: jobs started before this instant are stuck.
// Returns:
//   - []domain.BulkImportJob: matching job records.
//   - error: non-nil if the query fails.
func (r *ImportJobRepository) FindStuck(ctx context.Context, cutoff time.Time) ([]domain.BulkImportJob, error) {
	var jobs []domain.BulkImportJob
	if err := r.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", domain.JobStatusProcessing, cutoff).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Cancel force-sets a job to cancelled and stamps completed_at. It does not
// signal any running work; the import loop itself is not interruptible
// from here.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to cancel.
// Returns:
//   - error: non-nil if the update fails.
func (r *ImportJobRepository) Cancel(ctx context.Context, jobID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&domain.BulkImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusCancelled,
			"completed_at": &now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel job: %w", result.Error)
	}
	return nil
}

// CreateSourceJob inserts a per-source child row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: child record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ImportJobRepository) CreateSourceJob(ctx context.Context, job *domain.TrailImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FinalizeSourceJob stamps the outcome of one source's run onto its child row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: child row ID.
//   - status: terminal status to set.
//   - res: the source's counters and error message.
// Returns:
//   - error: non-nil if the update fails.
func (r *ImportJobRepository) FinalizeSourceJob(ctx context.Context, id string, status domain.JobStatus, res domain.SourceResult) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&domain.TrailImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"trails_processed": res.Processed,
			"trails_added":     res.Added,
			"trails_failed":    res.Failed,
			"error_message":    res.Error,
			"completed_at":     &now,
			"updated_at":       now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finalize source job: %w", result.Error)
	}
	return nil
}
