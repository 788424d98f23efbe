package models

import "time"

// UniqueViewEvent records that a visitor fingerprint was seen on a path on a
// given UTC day. Append-only; the composite unique index is the dedup key
// that makes repeated views count once per day. Day is stored as an ISO
// calendar date string (2006-01-02) so the value is stable for 24 hours.
type UniqueViewEvent struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Path            string `gorm:"size:512;not null;index;uniqueIndex:idx_unique_view_dedup,priority:1" json:"path"`
	Day             string `gorm:"size:10;not null;uniqueIndex:idx_unique_view_dedup,priority:2" json:"day"`
	FingerprintHash string `gorm:"size:32;not null;uniqueIndex:idx_unique_view_dedup,priority:3" json:"fingerprint_hash"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the default table name
func (UniqueViewEvent) TableName() string {
	return "unique_view_events"
}

// UniqueReactionEvent is the reaction-dimensioned twin of UniqueViewEvent:
// one row per (path, reaction, day, fingerprint), never updated.
type UniqueReactionEvent struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Path            string `gorm:"size:512;not null;index;uniqueIndex:idx_unique_reaction_dedup,priority:1" json:"path"`
	Reaction        string `gorm:"size:48;not null;uniqueIndex:idx_unique_reaction_dedup,priority:2" json:"reaction"`
	Day             string `gorm:"size:10;not null;uniqueIndex:idx_unique_reaction_dedup,priority:3" json:"day"`
	FingerprintHash string `gorm:"size:32;not null;uniqueIndex:idx_unique_reaction_dedup,priority:4" json:"fingerprint_hash"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the default table name
func (UniqueReactionEvent) TableName() string {
	return "unique_reaction_events"
}
