package services

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/amaumene/goanistream/internal/cache"
	"github.com/amaumene/goanistream/internal/constants"
	"github.com/amaumene/goanistream/internal/database"
	"github.com/amaumene/goanistream/pkg/logger"
)

// CleanupService periodically sweeps expired cache entries and purges stale
// login sessions.
type CleanupService struct {
	db     database.Database
	cache  *cache.LRUCache
	cron   *cron.Cron
	logger logger.Logger
}

func NewCleanupService(db database.Database, c *cache.LRUCache) *CleanupService {
	return &CleanupService{
		db:     db,
		cache:  c,
		cron:   cron.New(),
		logger: logger.New(),
	}
}

// Start schedules the periodic cleanup and launches the scheduler.
func (s *CleanupService) Start() error {
	if _, err := s.cron.AddFunc(constants.CleanupSchedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.logger.Infof("[Cleanup] scheduled (%s)", constants.CleanupSchedule)
	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish.
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *CleanupService) run() {
	s.cache.CleanExpired()

	removed, err := s.db.DeleteOldSessions(constants.SessionMaxAge)
	if err != nil {
		s.logger.Errorf("[Cleanup] failed to purge old sessions: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Infof("[Cleanup] purged %d stale sessions", removed)
	}
}
