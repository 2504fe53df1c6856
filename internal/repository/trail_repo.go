package repository

import (
	"context"

	"github.com/greentrails/trail-importer/internal/domain"
	"gorm.io/gorm"
)

// TrailRepository handles trail data operations.
type TrailRepository struct {
	db *gorm.DB
}

// NewTrailRepository creates a new TrailRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *TrailRepository: repository instance bound to db.
func NewTrailRepository(db *gorm.DB) *TrailRepository {
	return &TrailRepository{db: db}
}

// Create inserts a new trail record. Each call is its own implicit
// transaction; callers deliberately do not wrap batches.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - trail: trail record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *TrailRepository) Create(ctx context.Context, trail *domain.Trail) error {
	return r.db.WithContext(ctx).Create(trail).Error
}

// Delete removes a trail by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: trail ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *TrailRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Trail{}, "id = ?", id).Error
}

// GetByID retrieves a trail by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: trail ID.
// Returns:
//   - *domain.Trail: trail record if found.
//   - error: non-nil if lookup fails.
func (r *TrailRepository) GetByID(ctx context.Context, id string) (*domain.Trail, error) {
	var trail domain.Trail
	if err := r.db.WithContext(ctx).First(&trail, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &trail, nil
}

// Count returns the total number of trail rows.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of trails.
//   - error: non-nil if the query fails.
func (r *TrailRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Trail{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySource counts trails by provenance source.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - source: source identifier to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *TrailRepository) CountBySource(ctx context.Context, source string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Trail{}).Where("source = ?", source).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AttachTag associates a tag with a trail, creating the tag row on first
// use. Tag names are unique; a second trail reuses the existing tag.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - trailID: trail to tag.
//   - tag: tag row carrying the name and a fresh ID for first use.
// Returns:
//   - error: non-nil if either insert fails.
func (r *TrailRepository) AttachTag(ctx context.Context, trailID string, tag *domain.Tag) error {
	var existing domain.Tag
	err := r.db.WithContext(ctx).First(&existing, "name = ?", tag.Name).Error
	if err == gorm.ErrRecordNotFound {
		if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
			return err
		}
		existing = *tag
	} else if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&domain.TrailTag{
		TrailID: trailID,
		TagID:   existing.ID,
	}).Error
}
