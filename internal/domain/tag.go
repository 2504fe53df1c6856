package domain

import "time"

// Tag represents a reusable label attached to trails (region names, trail
// features). The importer creates region tags for trails it inserts.
type Tag struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:idx_tags_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Tag.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Tag) TableName() string {
	return "tags"
}

// TrailTag links a trail to a tag.
type TrailTag struct {
	TrailID   string    `gorm:"type:text;primaryKey" json:"trail_id"`
	TagID     string    `gorm:"type:text;primaryKey" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for TrailTag.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (TrailTag) TableName() string {
	return "trail_tags"
}
