package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/repository"
	"github.com/greentrails/trail-importer/internal/source"
	"github.com/greentrails/trail-importer/internal/storage"
)

// Request validation errors. These are caller mistakes, surfaced as 400s,
// as opposed to job-creation failures which are 500s.
var (
	ErrNoSources    = errors.New("at least one source is required")
	ErrInvalidLimit = errors.New("max_trails_per_source must be greater than zero")
)

// maxResponseErrors caps the insert-error detail kept on responses and job
// rows so a large failure run cannot produce an unbounded payload. The full
// list still goes into the failure report object.
const maxResponseErrors = 5

// ImportRequest is the import entrypoint payload.
type ImportRequest struct {
	Sources            []string         `json:"sources"`
	MaxTrailsPerSource int              `json:"max_trails_per_source"`
	BatchSize          int              `json:"batch_size,omitempty"`
	Location           *source.Location `json:"location,omitempty"`
	LocationName       string           `json:"location_name,omitempty"`
	Debug              bool             `json:"debug,omitempty"`
	Validation         *bool            `json:"validation,omitempty"` // nil means enabled
}

// validationEnabled reports whether candidate pre-validation runs. It is on
// unless the request explicitly turns it off.
func (r *ImportRequest) validationEnabled() bool {
	return r.Validation == nil || *r.Validation
}

// ImportResponse is the import entrypoint result.
type ImportResponse struct {
	JobID              string                `json:"job_id"`
	Status             domain.JobStatus      `json:"status"`
	Target             string                `json:"target"`
	Location           string                `json:"location,omitempty"`
	TotalProcessed     int                   `json:"total_processed"`
	TotalAdded         int                   `json:"total_added"`
	TotalUpdated       int                   `json:"total_updated"`
	TotalFailed        int                   `json:"total_failed"`
	SuccessRate        int                   `json:"success_rate"`
	SourceResults      []domain.SourceResult `json:"source_results"`
	InsertErrors       []string              `json:"insert_errors"`
	FinalDatabaseCount int64                 `json:"final_database_count"`
	Message            string                `json:"message"`
}

// ImporterConfig holds configuration for the import service.
type ImporterConfig struct {
	BatchSize    int
	MaxPerSource int
}

// ImportService orchestrates one bulk import run across configured sources.
// It is the only writer of bulk_import_jobs rows; the batch processor only
// returns counts.
type ImportService struct {
	jobRepo   *repository.ImportJobRepository
	trailRepo *repository.TrailRepository
	processor *BatchProcessor
	validator *CandidateValidator
	sources   map[string]source.Source
	reports   storage.ObjectStorage // optional failure-report sink
	logger    *logger.Logger
	batchSize int
	maxFetch  int
}

// NewImportService creates a new import service.
// Parameters:
//   - jobRepo: bulk import job repository.
//   - trailRepo: trail repository (used for the final database count).
//   - processor: batch processor performing the inserts.
//   - sources: source adapters keyed by name.
//   - reports: optional object storage for full failure reports; may be nil.
//   - log: logger instance.
//   - cfg: importer configuration.
// Returns:
//   - *ImportService: initialized service.
func NewImportService(
	jobRepo *repository.ImportJobRepository,
	trailRepo *repository.TrailRepository,
	processor *BatchProcessor,
	sources map[string]source.Source,
	reports storage.ObjectStorage,
	log *logger.Logger,
	cfg *ImporterConfig,
) *ImportService {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	maxFetch := cfg.MaxPerSource
	if maxFetch <= 0 {
		maxFetch = 1000
	}
	return &ImportService{
		jobRepo:   jobRepo,
		trailRepo: trailRepo,
		processor: processor,
		validator: NewCandidateValidator(),
		sources:   sources,
		reports:   reports,
		logger:    log,
		batchSize: batchSize,
		maxFetch:  maxFetch,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *ImportService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// CreateJob inserts the job row a run is tracked under. A failure here is
// fatal for the whole run and propagates to the caller.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sources: source names requested for the run.
//   - maxTrailsPerSource: per-source candidate cap.
//   - locationName: free-text location label for the run.
// Returns:
//   - *domain.BulkImportJob: created job row.
//   - error: non-nil if the insert fails.
func (s *ImportService) CreateJob(ctx context.Context, sources []string, maxTrailsPerSource int, locationName string) (*domain.BulkImportJob, error) {
	now := time.Now()
	job := &domain.BulkImportJob{
		ID:                   uuid.New().String(),
		Status:               domain.JobStatusProcessing,
		TotalTrailsRequested: len(sources) * maxTrailsPerSource,
		TotalSources:         len(sources),
		Sources:              sources,
		LocationName:         locationName,
		StartedAt:            &now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}
	return job, nil
}

// Run executes a full bulk import: one job row, one pass over each source
// in request order, finalization, and the response payload. Per-source and
// per-record failures are swallowed into counters; only request validation
// and job creation return errors.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: import request.
// Returns:
//   - *ImportResponse: run summary.
//   - error: non-nil for invalid requests or job-creation failure.
func (s *ImportService) Run(ctx context.Context, req *ImportRequest) (*ImportResponse, error) {
	if len(req.Sources) == 0 {
		return nil, ErrNoSources
	}
	if req.MaxTrailsPerSource <= 0 {
		return nil, ErrInvalidLimit
	}

	maxPerSource := req.MaxTrailsPerSource
	if maxPerSource > s.maxFetch {
		maxPerSource = s.maxFetch
	}
	batchSize := req.BatchSize
	if batchSize <= 0 || batchSize > s.batchSize {
		batchSize = s.batchSize
	}

	job, err := s.CreateJob(ctx, req.Sources, req.MaxTrailsPerSource, req.LocationName)
	if err != nil {
		return nil, err
	}

	ctx = logger.SetJobID(ctx, job.ID)
	s.log(ctx).WithFields(logger.Fields{
		"sources":        req.Sources,
		"max_per_source": maxPerSource,
		"validation":     req.validationEnabled(),
	}).Info("Starting bulk import")

	var (
		sourceResults []domain.SourceResult
		insertErrors  []string
		processed     int
		added         int
		failed        int
	)

	for _, name := range req.Sources {
		res, errs := s.runSource(ctx, name, maxPerSource, batchSize, req.Location, req.validationEnabled())
		sourceResults = append(sourceResults, res)
		insertErrors = append(insertErrors, errs...)

		processed += res.Processed
		added += res.Added
		failed += res.Failed

		// Keep the job row current for polling clients
		if err := s.jobRepo.UpdateCounters(ctx, job.ID, processed, added, failed); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to update job counters")
		}
	}

	status := s.FinalizeJob(ctx, job.ID, processed, added, failed, sourceResults, insertErrors)

	if len(insertErrors) > 0 && s.reports != nil {
		s.uploadFailureReport(ctx, job.ID, insertErrors)
	}

	finalCount, err := s.trailRepo.Count(ctx)
	if err != nil {
		s.log(ctx).WithError(err).Warn("Failed to count trails")
	}

	resp := &ImportResponse{
		JobID:              job.ID,
		Status:             status,
		Target:             "trails",
		Location:           req.LocationName,
		TotalProcessed:     processed,
		TotalAdded:         added,
		TotalFailed:        failed,
		SuccessRate:        successRate(added, processed),
		SourceResults:      sourceResults,
		InsertErrors:       trailingErrors(insertErrors, maxResponseErrors),
		FinalDatabaseCount: finalCount,
	}
	if status == domain.JobStatusCompleted {
		resp.Message = fmt.Sprintf("Imported %d of %d trails across %d sources", added, processed, len(req.Sources))
	} else {
		resp.Message = fmt.Sprintf("Import failed: 0 of %d trails added", processed)
	}

	s.log(ctx).WithFields(logger.Fields{
		"status":    status,
		"processed": processed,
		"added":     added,
		"failed":    failed,
	}).Info("Bulk import finished")

	return resp, nil
}

// runSource fetches and processes one source's candidates. Every failure
// mode here is isolated: an unknown source, a fetch error, or a batch full
// of bad rows produces a SourceResult and the run moves on.
func (s *ImportService) runSource(ctx context.Context, name string, max, batchSize int, loc *source.Location, validate bool) (domain.SourceResult, []string) {
	ctx = logger.SetSource(ctx, name)
	res := domain.SourceResult{Source: name}

	now := time.Now()
	child := &domain.TrailImportJob{
		ID:        uuid.New().String(),
		JobID:     logger.GetJobID(ctx),
		Source:    name,
		Status:    domain.JobStatusProcessing,
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobRepo.CreateSourceJob(ctx, child); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to create source job row")
	}

	adapter, ok := s.sources[name]
	if !ok {
		res.Error = fmt.Sprintf("unknown source %q", name)
		s.finalizeSource(ctx, child.ID, res)
		return res, nil
	}

	candidates, err := s.fetchCandidates(ctx, adapter, loc, max, batchSize)
	if err != nil {
		res.Error = err.Error()
		s.log(ctx).WithError(err).Error("Source fetch failed")
		s.finalizeSource(ctx, child.ID, res)
		return res, nil
	}

	var errs []string
	if validate {
		partition := s.validator.ValidateBatch(candidates)
		for _, inv := range partition.Invalid {
			res.Processed++
			res.Failed++
			errs = append(errs, fmt.Sprintf("%s: validation failed: %v", inv.Candidate.Name, inv.Errors))
		}
		candidates = partition.Valid
	}

	batch := s.processor.ProcessBatch(ctx, candidates)
	res.Processed += batch.AddedCount + batch.FailedCount
	res.Added += batch.AddedCount
	res.Failed += batch.FailedCount
	errs = append(errs, batch.InsertErrors...)

	s.finalizeSource(ctx, child.ID, res)
	return res, errs
}

// fetchCandidates pages through the adapter until max candidates are
// collected or the source runs dry.
func (s *ImportService) fetchCandidates(ctx context.Context, adapter source.Source, loc *source.Location, max, batchSize int) ([]domain.TrailCandidate, error) {
	var out []domain.TrailCandidate
	cursor := ""
	for len(out) < max {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		limit := batchSize
		if remaining := max - len(out); limit > remaining {
			limit = remaining
		}

		batch, next, err := adapter.FetchBatch(ctx, loc, cursor, limit)
		if err != nil {
			return nil, fmt.Errorf("fetch from %s failed: %w", adapter.Name(), err)
		}
		out = append(out, batch...)

		if next == "" || len(batch) == 0 {
			break
		}
		cursor = next
	}
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}

func (s *ImportService) finalizeSource(ctx context.Context, childID string, res domain.SourceResult) {
	status := domain.JobStatusCompleted
	if res.Error != "" {
		status = domain.JobStatusError
	}
	if err := s.jobRepo.FinalizeSourceJob(ctx, childID, status, res); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to finalize source job row")
	}
}

// FinalizeJob writes the terminal status: completed when at least one trail
// was added, error otherwise. Partial success with failures still counts as
// completed.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to finalize.
//   - processed, added, failed: final totals.
//   - sourceResults: per-source summaries.
//   - insertErrors: full per-record error list; only the trailing slice is
//     persisted on the row.
// Returns:
//   - domain.JobStatus: the terminal status written.
func (s *ImportService) FinalizeJob(ctx context.Context, jobID string, processed, added, failed int, sourceResults []domain.SourceResult, insertErrors []string) domain.JobStatus {
	status := domain.JobStatusError
	if added > 0 {
		status = domain.JobStatusCompleted
	}

	results := domain.JobResults{
		Errors:        trailingErrors(insertErrors, maxResponseErrors),
		SourceResults: sourceResults,
	}
	if err := s.jobRepo.Finalize(ctx, jobID, status, processed, added, failed, results); err != nil {
		s.log(ctx).WithError(err).Error("Failed to finalize job")
	}
	return status
}

// uploadFailureReport writes the complete error list to object storage so
// the capped response slice is not the only record of what went wrong.
// Best effort: a report failure never affects the job outcome.
func (s *ImportService) uploadFailureReport(ctx context.Context, jobID string, insertErrors []string) {
	payload, err := json.MarshalIndent(map[string]interface{}{
		"job_id": jobID,
		"errors": insertErrors,
	}, "", "  ")
	if err != nil {
		return
	}

	key := fmt.Sprintf("reports/%s.json", jobID)
	if err := s.reports.Upload(ctx, key, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to upload failure report")
	}
}

// GetJob retrieves one job row for polling clients.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.BulkImportJob: job record if found.
//   - error: non-nil if lookup fails.
func (s *ImportService) GetJob(ctx context.Context, id string) (*domain.BulkImportJob, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ListJobs retrieves recent job rows, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
// Returns:
//   - []domain.BulkImportJob: matching job records.
//   - error: non-nil if the query fails.
func (s *ImportService) ListJobs(ctx context.Context, limit int) ([]domain.BulkImportJob, error) {
	return s.jobRepo.ListRecent(ctx, limit)
}

// trailingErrors keeps only the last n entries, preserving order.
func trailingErrors(errs []string, n int) []string {
	if len(errs) <= n {
		if errs == nil {
			return []string{}
		}
		return errs
	}
	return errs[len(errs)-n:]
}

// successRate returns added/processed as a rounded 0-100 percentage.
func successRate(added, processed int) int {
	if processed == 0 {
		return 0
	}
	return int(math.Round(float64(added) / float64(processed) * 100))
}
