package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
	"gorm.io/gorm"
)

// CleanupService purges refresh tokens that can never be used again: expired
// ones and revoked ones past a retention window. Invites are never purged;
// their expiry is evaluated at read time and accepted invites stay on record.
type CleanupService struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
	retention     time.Duration
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{
		db:        db,
		retention: 30 * 24 * time.Hour,
	}
}

func (s *CleanupService) StartScheduler() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc("0 * * * *", func() {
		s.PurgeRefreshTokens()
	}); err != nil {
		logger.Errorf("[Cleanup] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[Cleanup] Scheduler started (hourly)")
}

func (s *CleanupService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// PurgeRefreshTokens deletes expired tokens and revoked tokens older than the
// retention window.
func (s *CleanupService) PurgeRefreshTokens() {
	now := time.Now()

	result := s.db.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	if result.Error != nil {
		logger.Errorf("[Cleanup] Failed to purge expired refresh tokens: %v", result.Error)
		return
	}
	expired := result.RowsAffected

	result = s.db.Where("revoked_at IS NOT NULL AND revoked_at < ?", now.Add(-s.retention)).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		logger.Errorf("[Cleanup] Failed to purge revoked refresh tokens: %v", result.Error)
		return
	}

	if expired+result.RowsAffected > 0 {
		logger.Infof("[Cleanup] Purged %d expired and %d revoked refresh tokens",
			expired, result.RowsAffected)
	}
}
