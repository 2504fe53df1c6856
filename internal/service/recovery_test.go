package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/repository"
	"github.com/greentrails/trail-importer/internal/source"
	"gorm.io/gorm"
)

func newRecoveryService(t *testing.T, stuckAfter time.Duration, sources map[string]source.Source) (*RecoveryService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger()
	jobRepo := repository.NewImportJobRepository(db)
	trailRepo := repository.NewTrailRepository(db)
	processor := NewBatchProcessor(trailRepo, log)
	importer := NewImportService(jobRepo, trailRepo, processor, sources, nil, log, &ImporterConfig{})
	svc := NewRecoveryService(jobRepo, trailRepo, importer, log, &RecoveryConfig{StuckAfter: stuckAfter})
	return svc, db
}

func seedJob(t *testing.T, db *gorm.DB, status domain.JobStatus, age time.Duration, added int, errs []string) string {
	t.Helper()
	started := time.Now().Add(-age)
	job := &domain.BulkImportJob{
		ID:          uuid.New().String(),
		Status:      status,
		TrailsAdded: added,
		Results:     domain.JobResults{Errors: errs},
		StartedAt:   &started,
		CreatedAt:   started,
		UpdatedAt:   started,
	}
	if err := repository.NewImportJobRepository(db).Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job.ID
}

func TestCancelStuckJobs(t *testing.T) {
	svc, db := newRecoveryService(t, time.Hour, nil)
	ctx := context.Background()

	stuckID := seedJob(t, db, domain.JobStatusProcessing, 2*time.Hour, 0, nil)
	freshID := seedJob(t, db, domain.JobStatusProcessing, 10*time.Minute, 0, nil)
	doneID := seedJob(t, db, domain.JobStatusCompleted, 3*time.Hour, 5, nil)

	cancelled, err := svc.CancelStuckJobs(ctx)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled != 1 {
		t.Fatalf("expected 1 cancelled, got %d", cancelled)
	}

	jobRepo := repository.NewImportJobRepository(db)

	stuck, _ := jobRepo.GetByID(ctx, stuckID)
	if stuck.Status != domain.JobStatusCancelled {
		t.Fatalf("stuck job status %s, want cancelled", stuck.Status)
	}
	if stuck.CompletedAt == nil {
		t.Fatal("cancelled job must carry completed_at")
	}

	fresh, _ := jobRepo.GetByID(ctx, freshID)
	if fresh.Status != domain.JobStatusProcessing {
		t.Fatalf("fresh job must be untouched, got %s", fresh.Status)
	}

	done, _ := jobRepo.GetByID(ctx, doneID)
	if done.Status != domain.JobStatusCompleted {
		t.Fatalf("completed job must be untouched, got %s", done.Status)
	}
}

func TestCancelStuckJobsIdempotent(t *testing.T) {
	svc, db := newRecoveryService(t, time.Hour, nil)
	ctx := context.Background()

	seedJob(t, db, domain.JobStatusProcessing, 2*time.Hour, 0, nil)

	if n, _ := svc.CancelStuckJobs(ctx); n != 1 {
		t.Fatalf("first sweep cancelled %d, want 1", n)
	}
	if n, _ := svc.CancelStuckJobs(ctx); n != 0 {
		t.Fatalf("second sweep cancelled %d, want 0", n)
	}
}

func TestProbeInsertAccess(t *testing.T) {
	svc, db := newRecoveryService(t, time.Hour, nil)
	ctx := context.Background()

	ok, err := svc.ProbeInsertAccess(ctx)
	if err != nil || !ok {
		t.Fatalf("probe failed: ok=%v err=%v", ok, err)
	}

	// The probe must clean up after itself
	count, err := repository.NewTrailRepository(db).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no leftover rows, got %d", count)
	}
}

func TestAnalyzeImportFailures(t *testing.T) {
	svc, db := newRecoveryService(t, time.Hour, nil)
	ctx := context.Background()

	seedJob(t, db, domain.JobStatusCompleted, time.Hour, 0, []string{
		"Mesa Trail: new row violates RLS policy for table trails",
		"Mesa Trail: new row violates RLS policy for table trails",
	})
	seedJob(t, db, domain.JobStatusCompleted, 2*time.Hour, 0, []string{
		"Bear Peak: validation failed: [location is required]",
	})
	// Added trails, so excluded from the analysis window
	seedJob(t, db, domain.JobStatusCompleted, 3*time.Hour, 4, []string{"ignored"})

	analysis, err := svc.AnalyzeImportFailures(ctx)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}

	if analysis.TotalFailedJobs != 2 {
		t.Fatalf("expected 2 failed jobs, got %d", analysis.TotalFailedJobs)
	}
	// Duplicate messages collapse
	if len(analysis.CommonErrors) != 2 {
		t.Fatalf("expected 2 distinct errors, got %v", analysis.CommonErrors)
	}
	if len(analysis.SuggestedFixes) != 2 {
		t.Fatalf("expected both the permission and validation fixes, got %v", analysis.SuggestedFixes)
	}
}

func TestAnalyzeImportFailuresNoMatch(t *testing.T) {
	svc, db := newRecoveryService(t, time.Hour, nil)
	ctx := context.Background()

	seedJob(t, db, domain.JobStatusCompleted, time.Hour, 0, []string{"Lost Lake: connection reset by peer"})

	analysis, err := svc.AnalyzeImportFailures(ctx)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if analysis.TotalFailedJobs != 1 {
		t.Fatalf("expected 1 failed job, got %d", analysis.TotalFailedJobs)
	}
	if len(analysis.SuggestedFixes) != 1 {
		t.Fatalf("expected the fallback suggestion, got %v", analysis.SuggestedFixes)
	}
}

func TestAnalyzeImportFailuresEmptyHistory(t *testing.T) {
	svc, _ := newRecoveryService(t, time.Hour, nil)

	analysis, err := svc.AnalyzeImportFailures(context.Background())
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if analysis.TotalFailedJobs != 0 || len(analysis.CommonErrors) != 0 || len(analysis.SuggestedFixes) != 0 {
		t.Fatalf("expected empty analysis, got %+v", analysis)
	}
}

func TestSmokeTestImport(t *testing.T) {
	src := &stubSource{name: "hiking_project", candidates: stubCandidates("hiking_project", 3, "moderate")}
	svc, _ := newRecoveryService(t, time.Hour, map[string]source.Source{"hiking_project": src})

	result := svc.SmokeTestImport(context.Background())
	if !result.Success {
		t.Fatalf("smoke test failed: %s", result.Error)
	}
	if result.Response == nil || result.Response.TotalAdded != 1 {
		t.Fatalf("expected a single added trail, got %+v", result.Response)
	}
}
