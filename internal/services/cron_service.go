package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// audit retention cleanup: 4:00 AM every Sunday
const auditCleanupSchedule = "0 0 4 * * 0"

const cronJobTimeout = 5 * time.Minute

// CronService manages scheduled background jobs
type CronService struct {
	cron           *cron.Cron
	holds          *HoldExpirationService
	audit          *AuditService
	sweepSchedule  string
	auditRetention time.Duration
	logger         *logrus.Logger

	mu    sync.Mutex
	names map[cron.EntryID]string
}

// NewCronService creates a new CronService. sweepSchedule uses the
// six-field format with seconds.
func NewCronService(holds *HoldExpirationService, audit *AuditService, sweepSchedule string, auditRetention time.Duration, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:           cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		holds:          holds,
		audit:          audit,
		sweepSchedule:  sweepSchedule,
		auditRetention: auditRetention,
		logger:         logger,
		names:          make(map[cron.EntryID]string),
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	if err := s.add("release_expired_holds", s.sweepSchedule, s.releaseExpiredHoldsJob); err != nil {
		return err
	}
	if s.audit != nil && s.auditRetention > 0 {
		if err := s.add("cleanup_audit_logs", auditCleanupSchedule, s.cleanupAuditLogsJob); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.WithField("jobs", len(s.cron.Entries())).Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) add(name, spec string, job func()) error {
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("failed to schedule %s job: %w", name, err)
	}
	s.mu.Lock()
	s.names[id] = name
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Scheduled cron job")
	return nil
}

func (s *CronService) releaseExpiredHoldsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), cronJobTimeout)
	defer cancel()

	start := time.Now()
	released, err := s.holds.RunOnce(ctx)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Hold sweep failed")
		return
	}
	if released > 0 {
		s.logger.WithFields(logrus.Fields{
			"released": released,
			"duration": time.Since(start).String(),
		}).Info("[CRON] Released expired holds")
	}
}

func (s *CronService) cleanupAuditLogsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), cronJobTimeout)
	defer cancel()

	deleted, err := s.audit.CleanupOldAuditLogs(ctx, s.auditRetention)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Audit log cleanup failed")
		return
	}
	s.logger.WithField("deleted", deleted).Info("[CRON] Cleaned up old audit logs")
}

// RunHoldSweepNow runs one hold sweep immediately
func (s *CronService) RunHoldSweepNow(ctx context.Context) (int, error) {
	s.logger.Info("[MANUAL] Running hold sweep now")
	return s.holds.RunOnce(ctx)
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"name":     s.names[entry.ID],
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
