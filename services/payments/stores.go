package payments

import (
	"context"

	"github.com/courseflow/api/model"
)

// CourseCatalog resolves courses for pricing. The engine only reads from it.
type CourseCatalog interface {
	// FindCourse returns the course or ErrNotFound.
	FindCourse(ctx context.Context, courseID uint) (*model.Course, error)
}

// EnrollmentStore manages a user's enrolled-course set.
type EnrollmentStore interface {
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)
	// AddEnrollment is idempotent: adding an existing (user, course) pair
	// is a no-op, not an error.
	AddEnrollment(ctx context.Context, userID, courseID uint) error
}

// TransactionStore is the durable record of payment attempts.
//
// Settle must be a conditional update that only transitions a transaction
// out of "pending"; it reports whether the transition was applied. That
// guarantee is what keeps concurrent settlement attempts from both flipping
// status, so it belongs to the store, not the caller.
type TransactionStore interface {
	Create(ctx context.Context, p *model.CoursePayment) error
	// Find returns the transaction or ErrNotFound.
	Find(ctx context.Context, id uint) (*model.CoursePayment, error)
	Settle(ctx context.Context, id uint, status, paymentID, signature string) (bool, error)
	// ListByUser returns the user's transactions newest first, with course
	// metadata preloaded, plus the total count.
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]model.CoursePayment, int64, error)
}

// InquirySettlement carries the fields the reconciler writes when settling
// an inquiry payment. Empty Organization and Status leave the stored values
// untouched; unrelated inquiry fields are never written.
type InquirySettlement struct {
	PaymentStatus string
	Status        string
	OrderID       string
	PaymentID     string
	Signature     string
	Organization  string
}

// InquiryStore manages inquiry records and their payment state. Settle has
// the same conditional, pending-only semantics as TransactionStore.Settle.
type InquiryStore interface {
	// Find returns the inquiry or ErrNotFound.
	Find(ctx context.Context, id uint) (*model.CourseInquiry, error)
	AttachOrder(ctx context.Context, id uint, orderID, receipt string, amount int64) error
	Settle(ctx context.Context, id uint, s InquirySettlement) (bool, error)
}

// Stores groups the engine's storage collaborators.
type Stores struct {
	Catalog      CourseCatalog
	Enrollments  EnrollmentStore
	Transactions TransactionStore
	Inquiries    InquiryStore
}
