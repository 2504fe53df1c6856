package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/repository"
)

// BatchResult holds the aggregate outcome of one batch. For any input,
// AddedCount+FailedCount equals the number of candidates processed.
type BatchResult struct {
	AddedCount   int      `json:"added_count"`
	FailedCount  int      `json:"failed_count"`
	InsertErrors []string `json:"insert_errors,omitempty"`
}

// BatchProcessor validates and inserts candidate records one at a time.
// It owns no persisted state; the single insert call per candidate is its
// only side effect. There is no transaction across a batch: rows inserted
// before a failure stay committed.
type BatchProcessor struct {
	trailRepo *repository.TrailRepository
	logger    *logger.Logger
}

// NewBatchProcessor creates a new batch processor.
// Parameters:
//   - trailRepo: repository used for the per-candidate insert.
//   - log: logger instance.
// Returns:
//   - *BatchProcessor: initialized processor.
func NewBatchProcessor(trailRepo *repository.TrailRepository, log *logger.Logger) *BatchProcessor {
	return &BatchProcessor{
		trailRepo: trailRepo,
		logger:    log,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (p *BatchProcessor) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return p.logger
}

// ProcessBatch attempts to insert each candidate, strictly in input order.
// Insert failures never abort the batch; they are counted and recorded as
// "<name>: <error>" strings in the same order the attempts were made.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - candidates: candidates to insert.
// Returns:
//   - BatchResult: added/failed counts and the per-record error list.
func (p *BatchProcessor) ProcessBatch(ctx context.Context, candidates []domain.TrailCandidate) BatchResult {
	result := BatchResult{InsertErrors: []string{}}

	for _, c := range candidates {
		trail := buildTrail(c)

		if errs := ValidateTrailSchema(trail); len(errs) > 0 {
			result.FailedCount++
			result.InsertErrors = append(result.InsertErrors,
				fmt.Sprintf("%s: validation failed: %v", c.Name, errs))
			continue
		}

		if err := p.trailRepo.Create(ctx, trail); err != nil {
			result.FailedCount++
			result.InsertErrors = append(result.InsertErrors,
				fmt.Sprintf("%s: %v", c.Name, err))
			p.log(ctx).WithFields(logger.Fields{
				"trail": c.Name,
			}).WithError(err).Warn("Trail insert failed")
			continue
		}

		result.AddedCount++

		// Region tags are best effort; a tag failure never fails the trail
		for _, tagName := range c.Tags {
			tag := &domain.Tag{ID: uuid.New().String(), Name: tagName}
			if err := p.trailRepo.AttachTag(ctx, trail.ID, tag); err != nil {
				p.log(ctx).WithFields(logger.Fields{
					"trail": c.Name,
					"tag":   tagName,
				}).WithError(err).Warn("Failed to attach tag")
			}
		}
	}

	return result
}

// buildTrail converts a candidate into an insertable row. Imported rows
// carry a NULL user_id to mark them as system imports and are verified.
func buildTrail(c domain.TrailCandidate) *domain.Trail {
	now := time.Now()
	trail := &domain.Trail{
		ID:          uuid.New().String(),
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		Difficulty:  domain.Difficulty(c.Difficulty),
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Source:      c.Source,
		SourceID:    c.SourceID,
		UserID:      nil,
		IsVerified:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Length != nil {
		trail.Length = *c.Length
	}
	if c.Elevation != nil {
		trail.Elevation = *c.Elevation
	}
	if c.ElevationGain != nil {
		trail.ElevationGain = *c.ElevationGain
	}
	return trail
}
