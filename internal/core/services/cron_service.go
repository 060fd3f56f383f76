package services

import (
	"context"
	"log"

	"lifelink/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs scheduled background jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	requestRepo      *repositories.RequestRepository
	notifyService    *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: repositories.NewRefreshTokenRepository(db),
		requestRepo:      repositories.NewRequestRepository(db),
		notifyService:    NewNotificationService(),
	}
}

// Start registers and starts all scheduled jobs
func (s *CronService) Start() {
	// Purge expired refresh tokens nightly at 02:00
	s.cron.AddFunc("0 2 * * *", s.purgeExpiredTokens)

	// Remind the team about open CRITICAL requests every 6 hours
	s.cron.AddFunc("0 */6 * * *", s.remindCriticalRequests)

	s.cron.Start()
	log.Println("✅ Cron jobs started")
}

// Stop stops the cron scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("✅ Cron jobs stopped")
}

// purgeExpiredTokens deletes refresh tokens past their expiry
func (s *CronService) purgeExpiredTokens() {
	if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("⚠️ Failed to purge expired refresh tokens: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}

// remindCriticalRequests re-notifies open CRITICAL requests so they don't
// fall off the radar between donor responses
func (s *CronService) remindCriticalRequests() {
	requests, err := s.requestRepo.ListOpenCritical(context.Background())
	if err != nil {
		log.Printf("⚠️ Failed to list open critical requests: %v", err)
		return
	}

	for _, request := range requests {
		s.notifyService.NotifyCriticalRequest(request)
	}

	if len(requests) > 0 {
		log.Printf("✅ Sent reminders for %d open critical requests", len(requests))
	}
}
