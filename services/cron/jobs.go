package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/courseflow/api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RepairMissingEnrollments re-applies the enrollment side effect for completed
// payments whose user/course pair is missing. A crash between the payment
// settling and the enrollment write leaves exactly this gap; the insert is
// idempotent so re-running the sweep is always safe.
func (m *CronManager) RepairMissingEnrollments() {
	entry := m.logJobStart("repair_missing_enrollments")

	var payments []model.CoursePayment
	err := m.db.
		Where("status = ?", model.PaymentStatusCompleted).
		Where("NOT EXISTS (SELECT 1 FROM user_courses uc WHERE uc.user_id = course_payments.user_id AND uc.course_id = course_payments.course_id)").
		Find(&payments).Error
	if err != nil {
		m.logJobError(entry, fmt.Errorf("failed to query completed payments: %w", err))
		return
	}

	if len(payments) == 0 {
		m.logJobComplete(entry, 0, 0)
		return
	}

	repaired := 0
	for _, p := range payments {
		enrollment := model.UserCourse{UserID: p.UserID, CourseID: p.CourseID}
		res := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment)
		if res.Error != nil {
			log.Printf("[CRON] Failed to repair enrollment for payment %d: %v", p.ID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			m.db.Model(&model.Course{}).
				Where("id = ?", p.CourseID).
				Update("enrollment_count", gorm.Expr("enrollment_count + 1"))
			log.Printf("[CRON] Repaired enrollment: user %d course %d (payment %d)", p.UserID, p.CourseID, p.ID)
			repaired++
		}
	}

	m.logJobComplete(entry, len(payments), repaired)
}

// ExpireStalePendingPayments fails pending transactions whose order was
// created long ago and never settled. The conditional update only touches
// rows still pending, so a settlement racing the sweep wins.
func (m *CronManager) ExpireStalePendingPayments() {
	entry := m.logJobStart("expire_stale_pending_payments")

	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	res := m.db.Model(&model.CoursePayment{}).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, cutoff).
		Update("status", model.PaymentStatusFailed)
	if res.Error != nil {
		m.logJobError(entry, fmt.Errorf("failed to expire pending payments: %w", res.Error))
		return
	}

	inq := m.db.Model(&model.CourseInquiry{}).
		Where("payment_status = ? AND razorpay_order_id <> '' AND created_at < ?", model.PaymentStatusPending, cutoff).
		Update("payment_status", model.PaymentStatusFailed)
	if inq.Error != nil {
		m.logJobError(entry, fmt.Errorf("failed to expire pending inquiry payments: %w", inq.Error))
		return
	}

	m.logJobComplete(entry, int(res.RowsAffected+inq.RowsAffected), int(res.RowsAffected+inq.RowsAffected))
}

// CleanupExpiredUserTokens hard-deletes password reset and email
// verification tokens that are used or past expiry.
func (m *CronManager) CleanupExpiredUserTokens() {
	entry := m.logJobStart("cleanup_expired_user_tokens")

	now := time.Now()

	resets := m.db.Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&model.PasswordResetToken{})
	if resets.Error != nil {
		m.logJobError(entry, fmt.Errorf("failed to delete reset tokens: %w", resets.Error))
		return
	}

	verifications := m.db.Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&model.EmailVerificationToken{})
	if verifications.Error != nil {
		m.logJobError(entry, fmt.Errorf("failed to delete verification tokens: %w", verifications.Error))
		return
	}

	deleted := int(resets.RowsAffected + verifications.RowsAffected)
	m.logJobComplete(entry, deleted, deleted)
}

// CleanupOldJobLogs prunes job log rows older than 30 days
func (m *CronManager) CleanupOldJobLogs() {
	entry := m.logJobStart("cleanup_old_job_logs")

	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	res := m.db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if res.Error != nil {
		m.logJobError(entry, fmt.Errorf("failed to delete old job logs: %w", res.Error))
		return
	}

	m.logJobComplete(entry, int(res.RowsAffected), int(res.RowsAffected))
}
