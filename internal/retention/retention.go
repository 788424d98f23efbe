package retention

import (
	"context"
	"time"

	"github.com/driftwood-blog/backend/internal/logger"
	"github.com/driftwood-blog/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper periodically deletes unique-event rows older than the retention
// window. Counters are never touched: they are the aggregate of record,
// so aging out the dedup rows only bounds table growth. A fingerprint
// whose events were swept may count again, which is acceptable for rows
// already older than any dedup day.
type Sweeper struct {
	db       *gorm.DB
	maxAge   time.Duration
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSweeper creates a sweeper deleting event rows older than maxAge,
// checking every interval.
func NewSweeper(db *gorm.DB, maxAge, interval time.Duration) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		db:       db,
		maxAge:   maxAge,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic sweep in the background.
func (s *Sweeper) Start() {
	logger.Log.Info("Starting event retention sweeper",
		zap.Duration("max_age", s.maxAge),
		zap.Duration("interval", s.interval),
	)
	go s.run()
}

// Stop stops the sweeper.
func (s *Sweeper) Stop() {
	s.cancel()
}

func (s *Sweeper) run() {
	// Run immediately on startup
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

// Sweep deletes event rows past the retention window once.
func (s *Sweeper) Sweep() {
	cutoff := time.Now().UTC().Add(-s.maxAge)

	views := s.db.Where("created_at < ?", cutoff).Delete(&models.UniqueViewEvent{})
	if views.Error != nil {
		logger.Log.Error("Failed to sweep view events", zap.Error(views.Error))
	}

	reactions := s.db.Where("created_at < ?", cutoff).Delete(&models.UniqueReactionEvent{})
	if reactions.Error != nil {
		logger.Log.Error("Failed to sweep reaction events", zap.Error(reactions.Error))
	}

	if views.RowsAffected > 0 || reactions.RowsAffected > 0 {
		logger.Log.Info("Swept expired unique events",
			zap.Int64("view_events", views.RowsAffected),
			zap.Int64("reaction_events", reactions.RowsAffected),
			zap.Time("cutoff", cutoff),
		)
	}
}
