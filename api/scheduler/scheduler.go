package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/osiahq/founding-circle-api/config"
	"github.com/osiahq/founding-circle-api/databases"
	templates "github.com/osiahq/founding-circle-api/templates/html"
	"github.com/osiahq/founding-circle-api/waitlist"
)

// Scheduler handles periodic background jobs for the waitlist
type Scheduler struct {
	cron       *cron.Cron
	Service    *waitlist.Service
	LockDB     databases.SchedulerLockDatabase
	Conf       *config.Config
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(service *waitlist.Service, lockDB databases.SchedulerLockDatabase, conf *config.Config) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Service:    service,
		LockDB:     lockDB,
		Conf:       conf,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Send the waitlist digest to the admin address daily at 8 AM UTC
	_, err := s.cron.AddFunc("0 8 * * *", s.sendDailyDigest)
	if err != nil {
		zap.S().Errorw("failed to register daily digest job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Waitlist scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Waitlist scheduler stopped")
}

// sendDailyDigest emails the current waitlist stats to the admin address
func (s *Scheduler) sendDailyDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "daily_digest_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for daily digest job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Daily digest job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "daily_digest_job", s.instanceID)

	zap.S().Infow("Running daily digest job", "instance", s.instanceID)

	stats, err := s.Service.GetStats(ctx)
	if err != nil {
		zap.S().Errorw("failed to compute waitlist stats for digest", "error", err)
		return
	}

	if s.Conf.AdminEmail == "" {
		zap.S().Warn("ADMIN_EMAIL not set, skipping daily digest email")
		return
	}

	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		zap.S().Errorw("SENDGRID_API_KEY not set, cannot send digest email")
		return
	}

	from := mail.NewEmail("OSIA Founding Circle", "no-reply@osia.app")
	subject := "Daily Waitlist Digest"
	to := mail.NewEmail("", s.Conf.AdminEmail)
	plainTextContent := fmt.Sprintf("Waitlist: %d total, %d pending, %d approved, %d activated, %d founding slots remaining.",
		stats.Total, stats.Pending, stats.Approved, stats.Activated, stats.RemainingSlots)
	htmlContent := templates.RenderDigestEmail(stats.Total, stats.Pending, stats.Approved, stats.Activated, stats.RemainingSlots)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send digest email", "error", err)
		return
	}
	zap.S().Infow("digest email sent", "statusCode", response.StatusCode)
}
