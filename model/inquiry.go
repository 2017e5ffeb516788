package model

import (
	"time"

	"gorm.io/gorm"
)

// Inquiry status values. Payment completion forces "enrolled"; the other
// values are set by administrative action and are independent of payment.
const (
	InquiryStatusPending   = "pending"
	InquiryStatusContacted = "contacted"
	InquiryStatusEnrolled  = "enrolled"
	InquiryStatusCanceled  = "canceled"
)

// CourseInquiry is a lead captured before payment. It carries its own
// payment flow with the same pending -> completed|failed lifecycle as
// CoursePayment.
type CourseInquiry struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `gorm:"not null" json:"email"`
	Phone         string         `gorm:"type:varchar(20);not null" json:"phone"`
	Organization  string         `gorm:"not null" json:"organization"`
	Degree        string         `gorm:"type:varchar(100)" json:"degree"`
	Department    string         `gorm:"type:varchar(100)" json:"department"`
	Year          string         `gorm:"type:varchar(20)" json:"year"`
	CourseID      uint           `gorm:"not null;index" json:"course_id"`
	CourseName    string         `gorm:"not null" json:"course_name"`
	Status        string         `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus string         `gorm:"type:varchar(20);default:'pending';index" json:"payment_status"`
	// Amount in paise, fixed when the inquiry order is created.
	Amount            int64  `json:"amount"`
	Receipt           string `gorm:"type:varchar(100)" json:"receipt"`
	RazorpayOrderID   string `gorm:"type:varchar(100);index" json:"razorpay_order_id"`
	RazorpayPaymentID string `gorm:"type:varchar(100)" json:"razorpay_payment_id"`
	RazorpaySignature string `gorm:"type:varchar(200)" json:"-"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for CourseInquiry
func (CourseInquiry) TableName() string {
	return "course_inquiries"
}

// PaymentTerminal reports whether the inquiry's payment has reached a final state.
func (i *CourseInquiry) PaymentTerminal() bool {
	return i.PaymentStatus == PaymentStatusCompleted || i.PaymentStatus == PaymentStatusFailed
}
