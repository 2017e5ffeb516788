package model

import (
	"time"
)

// Payment status values. A payment starts pending and moves exactly once to
// completed or failed; both are terminal.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// CoursePayment represents one payment attempt for a course enrollment.
// Rows are never deleted; terminal rows are kept as an audit record.
type CoursePayment struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;index" json:"user_id"`
	CourseID uint `gorm:"not null;index" json:"course_id"`
	// Amount in paise, fixed at order creation from the course price.
	Amount            int64     `gorm:"not null" json:"amount"`
	Currency          string    `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Receipt           string    `gorm:"type:varchar(100)" json:"receipt"`
	RazorpayOrderID   string    `gorm:"type:varchar(100);uniqueIndex" json:"razorpay_order_id"`
	RazorpayPaymentID string    `gorm:"type:varchar(100)" json:"razorpay_payment_id"`
	RazorpaySignature string    `gorm:"type:varchar(200)" json:"-"`
	Status            string    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for CoursePayment
func (CoursePayment) TableName() string {
	return "course_payments"
}

// IsTerminal reports whether the payment has reached a final state.
func (p *CoursePayment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}
