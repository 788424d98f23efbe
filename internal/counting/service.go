package counting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/driftwood-blog/backend/internal/apperrors"
	"github.com/driftwood-blog/backend/internal/fingerprint"
	"gorm.io/gorm"
)

const (
	// MaxPathLength bounds stored URL paths.
	MaxPathLength = 512
	// MaxReactionLength bounds reaction identifiers.
	MaxReactionLength = 48
	// MaxBatchPaths bounds a single batch read.
	MaxBatchPaths = 200
)

// TrackResult is the outcome of a view tracking call.
type TrackResult struct {
	Path        string `json:"path"`
	Count       int64  `json:"count"`
	IsNewUnique bool   `json:"is_new_unique"`
}

// ReactResult is the outcome of a reaction call.
type ReactResult struct {
	Path        string `json:"path"`
	Reaction    string `json:"reaction"`
	Count       int64  `json:"count"`
	IsNewUnique bool   `json:"is_new_unique"`
}

// Service orchestrates anonymous unique-event counting: fingerprint the
// visitor, record the dedup row, and bump the aggregate counter exactly
// once per new unique event. The record and the increment run in one
// transaction so a crash between them cannot leave a visit recorded but
// uncounted.
type Service struct {
	db        *gorm.DB
	store     *Store
	views     *fingerprint.Generator
	reactions *fingerprint.Generator
	now       func() time.Time
}

// NewService wires the service with its database handle and the two
// fingerprint generators (views and reactions may use distinct keys).
func NewService(db *gorm.DB, views, reactions *fingerprint.Generator) *Service {
	return &Service{
		db:        db,
		store:     NewStore(db),
		views:     views,
		reactions: reactions,
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Used by tests to cross day
// boundaries deterministically.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TrackView counts one page view for path, deduplicated per visitor per
// UTC day. The returned count reflects this call's increment when the
// visit was new.
func (s *Service) TrackView(ctx context.Context, path, ip, userAgent string) (*TrackResult, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	day := fingerprint.Day(s.now())
	fp := s.views.Visitor(ip, userAgent, day)

	result := TrackResult{Path: path}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)

		isNew, err := store.RecordViewEvent(ctx, path, day, fp)
		if err != nil {
			return fmt.Errorf("record view event: %w", err)
		}
		result.IsNewUnique = isNew

		if isNew {
			if err := store.IncrementViewCount(ctx, path); err != nil {
				return fmt.Errorf("increment view count: %w", err)
			}
		}

		count, err := store.ViewCount(ctx, path)
		if err != nil {
			return fmt.Errorf("read view count: %w", err)
		}
		result.Count = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// React counts one reaction on a path, deduplicated per visitor per UTC
// day per reaction. Reactions on the same path are independent counters.
func (s *Service) React(ctx context.Context, path, reaction, ip, userAgent string) (*ReactResult, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if err := validateReaction(reaction); err != nil {
		return nil, err
	}

	day := fingerprint.Day(s.now())
	fp := s.reactions.Visitor(ip, userAgent, day)

	result := ReactResult{Path: path, Reaction: reaction}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)

		isNew, err := store.RecordReactionEvent(ctx, path, reaction, day, fp)
		if err != nil {
			return fmt.Errorf("record reaction event: %w", err)
		}
		result.IsNewUnique = isNew

		if isNew {
			if err := store.IncrementReactionCount(ctx, path, reaction); err != nil {
				return fmt.Errorf("increment reaction count: %w", err)
			}
		}

		count, err := store.ReactionCount(ctx, path, reaction)
		if err != nil {
			return fmt.Errorf("read reaction count: %w", err)
		}
		result.Count = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ViewCount returns the aggregate count for a path, 0 when never seen.
func (s *Service) ViewCount(ctx context.Context, path string) (int64, error) {
	if err := validatePath(path); err != nil {
		return 0, err
	}
	return s.store.ViewCount(ctx, path)
}

// ViewCounts performs a batch read, preserving the requested order and
// returning 0 for paths never seen.
func (s *Service) ViewCounts(ctx context.Context, paths []string) ([]PathCount, error) {
	if len(paths) > MaxBatchPaths {
		return nil, apperrors.BadRequest(fmt.Sprintf("at most %d paths per batch", MaxBatchPaths))
	}
	for _, p := range paths {
		if err := validatePath(p); err != nil {
			return nil, err
		}
	}
	return s.store.ViewCounts(ctx, paths)
}

// Reactions lists every reaction recorded for a path, sorted by name.
func (s *Service) Reactions(ctx context.Context, path string) ([]ReactionCount, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	return s.store.ReactionCounts(ctx, path)
}

func validatePath(path string) error {
	if path == "" {
		return apperrors.BadRequest("path is required")
	}
	if !strings.HasPrefix(path, "/") {
		return apperrors.BadRequest("path must start with /")
	}
	if len(path) > MaxPathLength {
		return apperrors.BadRequest(fmt.Sprintf("path must be at most %d characters", MaxPathLength))
	}
	return nil
}

func validateReaction(reaction string) error {
	if reaction == "" {
		return apperrors.BadRequest("reaction is required")
	}
	if len(reaction) > MaxReactionLength {
		return apperrors.BadRequest(fmt.Sprintf("reaction must be at most %d characters", MaxReactionLength))
	}
	return nil
}
