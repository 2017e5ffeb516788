package cron

import (
	"log"
	"time"

	"github.com/courseflow/api/model"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Every 15 minutes: repair enrollments for completed payments
	_, err := m.cron.AddFunc("0 */15 * * * *", func() {
		m.RepairMissingEnrollments()
	})
	if err != nil {
		return err
	}

	// 2. Daily at 2 AM: expire stale pending transactions
	_, err = m.cron.AddFunc("0 0 2 * * *", func() {
		m.ExpireStalePendingPayments()
	})
	if err != nil {
		return err
	}

	// 3. Daily at 3 AM: prune old job logs
	_, err = m.cron.AddFunc("0 0 3 * * *", func() {
		m.CleanupOldJobLogs()
	})
	if err != nil {
		return err
	}

	// 4. Daily at 4 AM: prune used/expired reset and verification tokens
	_, err = m.cron.AddFunc("0 0 4 * * *", func() {
		m.CleanupExpiredUserTokens()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart records the start of a cron job run and returns its log row
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
	}
	m.db.Create(entry)
	return entry
}

// logJobComplete marks a job run as completed
func (m *CronManager) logJobComplete(entry *model.CronJobLog, checked, updated int) {
	log.Printf("[CRON] Completed job: %s - checked %d, updated %d", entry.JobName, checked, updated)

	m.db.Model(entry).Updates(map[string]interface{}{
		"status":        "completed",
		"items_checked": checked,
		"items_updated": updated,
		"finished_at":   time.Now(),
	})
}

// logJobError marks a job run as failed
func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	log.Printf("[CRON] Error in job: %s - %v", entry.JobName, err)

	m.db.Model(entry).Updates(map[string]interface{}{
		"status":      "failed",
		"error":       err.Error(),
		"finished_at": time.Now(),
	})
}
