package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/repository"
)

// analyzeJobWindow bounds how much job history a failure analysis reads.
const analyzeJobWindow = 50

// FailureAnalysis summarizes why recent imports added nothing.
type FailureAnalysis struct {
	TotalFailedJobs int      `json:"total_failed_jobs"`
	CommonErrors    []string `json:"common_errors"`
	SuggestedFixes  []string `json:"suggested_fixes"`
}

// SmokeTestResult reports whether a minimal import run works end to end.
type SmokeTestResult struct {
	Success  bool            `json:"success"`
	Response *ImportResponse `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// RecoveryConfig holds configuration for the recovery service.
type RecoveryConfig struct {
	// StuckAfter is the wall-clock age past which a processing job is
	// considered stuck. There is no heartbeat; age is the only signal.
	StuckAfter time.Duration
}

// RecoveryService provides read-only diagnostics over job history plus a
// small set of remediation actions. The analysis is substring heuristics
// over stored error strings, not a diagnostic engine.
type RecoveryService struct {
	jobRepo    *repository.ImportJobRepository
	trailRepo  *repository.TrailRepository
	importer   *ImportService
	logger     *logger.Logger
	stuckAfter time.Duration
}

// NewRecoveryService creates a new recovery service.
// Parameters:
//   - jobRepo: bulk import job repository.
//   - trailRepo: trail repository (used by the insert probe).
//   - importer: import service (used by the smoke test).
//   - log: logger instance.
//   - cfg: recovery configuration; a zero StuckAfter defaults to one hour.
// Returns:
//   - *RecoveryService: initialized service.
func NewRecoveryService(
	jobRepo *repository.ImportJobRepository,
	trailRepo *repository.TrailRepository,
	importer *ImportService,
	log *logger.Logger,
	cfg *RecoveryConfig,
) *RecoveryService {
	stuckAfter := time.Hour
	if cfg != nil && cfg.StuckAfter > 0 {
		stuckAfter = cfg.StuckAfter
	}
	return &RecoveryService{
		jobRepo:    jobRepo,
		trailRepo:  trailRepo,
		importer:   importer,
		logger:     log,
		stuckAfter: stuckAfter,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *RecoveryService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// AnalyzeImportFailures inspects completed jobs that added zero trails and
// pattern-matches their stored errors to produce remediation suggestions.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *FailureAnalysis: counts, distinct error strings, and suggestions.
//   - error: non-nil if the job query fails.
func (s *RecoveryService) AnalyzeImportFailures(ctx context.Context) (*FailureAnalysis, error) {
	jobs, err := s.jobRepo.ListCompletedWithoutAdds(ctx, analyzeJobWindow)
	if err != nil {
		return nil, err
	}

	analysis := &FailureAnalysis{
		CommonErrors:   []string{},
		SuggestedFixes: []string{},
	}
	analysis.TotalFailedJobs = len(jobs)

	seen := map[string]bool{}
	var permissionHit, validationHit bool
	for _, job := range jobs {
		for _, msg := range job.Results.Errors {
			if !seen[msg] {
				seen[msg] = true
				analysis.CommonErrors = append(analysis.CommonErrors, msg)
			}
			lower := strings.ToLower(msg)
			if strings.Contains(msg, "RLS") || strings.Contains(lower, "row-level security") || strings.Contains(lower, "permission") {
				permissionHit = true
			}
			if strings.Contains(lower, "validation") {
				validationHit = true
			}
		}
	}

	if permissionHit {
		analysis.SuggestedFixes = append(analysis.SuggestedFixes,
			"Inserts are being rejected by row-level security; run the insert probe and check the service-role credential")
	}
	if validationHit {
		analysis.SuggestedFixes = append(analysis.SuggestedFixes,
			"Candidates are failing validation; check the source data for missing names, locations, or out-of-range coordinates")
	}
	if len(jobs) > 0 && len(analysis.SuggestedFixes) == 0 {
		analysis.SuggestedFixes = append(analysis.SuggestedFixes,
			"No known error pattern matched; inspect the failure reports for the listed jobs")
	}

	return analysis, nil
}

// ProbeInsertAccess verifies write access to the trails table by inserting
// one throwaway row and deleting it again.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - bool: true when the insert/delete round trip succeeded.
//   - error: the failure when it did not.
func (s *RecoveryService) ProbeInsertAccess(ctx context.Context) (bool, error) {
	now := time.Now()
	probe := &domain.Trail{
		ID:         uuid.New().String(),
		Name:       "access probe",
		Location:   "probe",
		Difficulty: domain.DifficultyEasy,
		Source:     "recovery_probe",
		SourceID:   uuid.New().String(),
		IsVerified: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.trailRepo.Create(ctx, probe); err != nil {
		s.log(ctx).WithError(err).Warn("Insert probe failed")
		return false, err
	}
	if err := s.trailRepo.Delete(ctx, probe.ID); err != nil {
		s.log(ctx).WithError(err).Warn("Probe cleanup failed")
		return false, err
	}
	return true, nil
}

// CancelStuckJobs force-cancels processing jobs older than the configured
// threshold. It only flips the status flag; there is nothing to signal
// since in-flight work is not interruptible.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int: number of jobs cancelled.
//   - error: non-nil if the query fails.
func (s *RecoveryService) CancelStuckJobs(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.stuckAfter)
	jobs, err := s.jobRepo.FindStuck(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, job := range jobs {
		if err := s.jobRepo.Cancel(ctx, job.ID); err != nil {
			s.log(ctx).WithFields(logger.Fields{
				logger.FieldJobID: job.ID,
			}).WithError(err).Error("Failed to cancel stuck job")
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldCount: cancelled,
		}).Info("Cancelled stuck import jobs")
	}
	return cancelled, nil
}

// SmokeTestImport runs the importer with a minimal single-record request to
// confirm the whole pipeline is wired.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *SmokeTestResult: outcome plus the import response when it ran.
func (s *RecoveryService) SmokeTestImport(ctx context.Context) *SmokeTestResult {
	resp, err := s.importer.Run(ctx, &ImportRequest{
		Sources:            []string{"hiking_project"},
		MaxTrailsPerSource: 1,
	})
	if err != nil {
		return &SmokeTestResult{Success: false, Error: err.Error()}
	}
	return &SmokeTestResult{Success: true, Response: resp}
}
