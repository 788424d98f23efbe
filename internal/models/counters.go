package models

import "time"

// PathCounter holds the aggregate unique view count for a single URL path.
// Rows are created lazily on the first unique view and only ever move up;
// the count always equals the number of unique_view_events rows for the path.
type PathCounter struct {
	Path  string `gorm:"primaryKey;size:512" json:"path"`
	Count int64  `gorm:"not null;default:0" json:"count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (PathCounter) TableName() string {
	return "path_counters"
}

// PathReactionCounter holds the aggregate unique reaction count for a
// (path, reaction) pair. Same lifecycle as PathCounter with the extra
// reaction dimension.
type PathReactionCounter struct {
	Path     string `gorm:"primaryKey;size:512" json:"path"`
	Reaction string `gorm:"primaryKey;size:48" json:"reaction"`
	Count    int64  `gorm:"not null;default:0" json:"count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (PathReactionCounter) TableName() string {
	return "path_reaction_counters"
}
