package counting

import (
	"context"
	"errors"

	"github.com/driftwood-blog/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PathCount is a (path, count) row returned by reads.
type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// ReactionCount is a (reaction, count) row for a single path.
type ReactionCount struct {
	Reaction string `json:"reaction"`
	Count    int64  `json:"count"`
}

// Store issues the counting statements against the database. All writes
// are single-statement conflict-resolving inserts, so concurrent callers
// need no application-level locking: the database's uniqueness constraint
// and upsert primitive are the only synchronization.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// withTx returns a store bound to a transaction handle.
func (s *Store) withTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// RecordViewEvent inserts the (path, day, fingerprint) dedup row, doing
// nothing if it already exists. Returns true only when this call created
// the row; a conflict is the normal not-new outcome, not an error. Of N
// concurrent duplicates exactly one observes true.
func (s *Store) RecordViewEvent(ctx context.Context, path, day, fp string) (bool, error) {
	event := models.UniqueViewEvent{
		Path:            path,
		Day:             day,
		FingerprintHash: fp,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RecordReactionEvent is RecordViewEvent with the reaction dimension in
// the dedup key.
func (s *Store) RecordReactionEvent(ctx context.Context, path, reaction, day, fp string) (bool, error) {
	event := models.UniqueReactionEvent{
		Path:            path,
		Reaction:        reaction,
		Day:             day,
		FingerprintHash: fp,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementViewCount bumps the counter for a path with an atomic upsert:
// insert with count=1, or count = count + 1 when the row exists. Callers
// must only invoke it after RecordViewEvent reported a new event, or the
// counter would drift from the event table.
func (s *Store) IncrementViewCount(ctx context.Context, path string) error {
	counter := models.PathCounter{Path: path, Count: 1}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1")}),
	}).Create(&counter).Error
}

// IncrementReactionCount bumps the counter for a (path, reaction) pair.
func (s *Store) IncrementReactionCount(ctx context.Context, path, reaction string) error {
	counter := models.PathReactionCounter{Path: path, Reaction: reaction, Count: 1}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}, {Name: "reaction"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1")}),
	}).Create(&counter).Error
}

// ViewCount returns the current count for a path, 0 when never observed.
func (s *Store) ViewCount(ctx context.Context, path string) (int64, error) {
	var counter models.PathCounter
	err := s.db.WithContext(ctx).First(&counter, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

// ViewCounts returns a row for every requested path in the caller's
// order, with 0 for paths never observed.
func (s *Store) ViewCounts(ctx context.Context, paths []string) ([]PathCount, error) {
	var counters []models.PathCounter
	if len(paths) > 0 {
		if err := s.db.WithContext(ctx).Where("path IN ?", paths).Find(&counters).Error; err != nil {
			return nil, err
		}
	}

	byPath := make(map[string]int64, len(counters))
	for _, c := range counters {
		byPath[c.Path] = c.Count
	}

	rows := make([]PathCount, len(paths))
	for i, p := range paths {
		rows[i] = PathCount{Path: p, Count: byPath[p]}
	}
	return rows, nil
}

// ReactionCount returns the current count for a (path, reaction) pair.
func (s *Store) ReactionCount(ctx context.Context, path, reaction string) (int64, error) {
	var counter models.PathReactionCounter
	err := s.db.WithContext(ctx).First(&counter, "path = ? AND reaction = ?", path, reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

// ReactionCounts lists every reaction recorded for a path, sorted by
// reaction name.
func (s *Store) ReactionCounts(ctx context.Context, path string) ([]ReactionCount, error) {
	var counters []models.PathReactionCounter
	err := s.db.WithContext(ctx).
		Where("path = ?", path).
		Order("reaction ASC").
		Find(&counters).Error
	if err != nil {
		return nil, err
	}

	rows := make([]ReactionCount, len(counters))
	for i, c := range counters {
		rows[i] = ReactionCount{Reaction: c.Reaction, Count: c.Count}
	}
	return rows, nil
}
