package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/courseflow/api/model"
	"github.com/courseflow/api/services/payments"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewPaymentStores wires the GORM-backed collaborators for the payment engine.
func NewPaymentStores(db *gorm.DB) payments.Stores {
	return payments.Stores{
		Catalog:      &CatalogStore{db: db},
		Enrollments:  &EnrollmentStore{db: db},
		Transactions: &TransactionStore{db: db},
		Inquiries:    &InquiryStore{db: db},
	}
}

// CatalogStore reads courses for pricing.
type CatalogStore struct {
	db *gorm.DB
}

func (s *CatalogStore) FindCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course %d", payments.ErrNotFound, courseID)
		}
		return nil, err
	}
	return &course, nil
}

// EnrollmentStore manages the user_courses join table.
type EnrollmentStore struct {
	db *gorm.DB
}

func (s *EnrollmentStore) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// AddEnrollment inserts the (user, course) pair. The composite primary key
// plus ON CONFLICT DO NOTHING makes it idempotent; the enrollment counter is
// only bumped when a row was actually inserted.
func (s *EnrollmentStore) AddEnrollment(ctx context.Context, userID, courseID uint) error {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserCourse{UserID: userID, CourseID: courseID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return s.db.WithContext(ctx).Model(&model.Course{}).
			Where("id = ?", courseID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error
	}
	return nil
}

// TransactionStore persists course payment transactions.
type TransactionStore struct {
	db *gorm.DB
}

func (s *TransactionStore) Create(ctx context.Context, p *model.CoursePayment) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *TransactionStore) Find(ctx context.Context, id uint) (*model.CoursePayment, error) {
	var payment model.CoursePayment
	if err := s.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %d", payments.ErrNotFound, id)
		}
		return nil, err
	}
	return &payment, nil
}

// Settle transitions the transaction out of "pending". The WHERE clause on
// the current status makes the update conditional, so of two concurrent
// settlement attempts exactly one observes RowsAffected > 0. A terminal row
// is never written again.
func (s *TransactionStore) Settle(ctx context.Context, id uint, status, paymentID, signature string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.CoursePayment{}).
		Where("id = ? AND status = ?", id, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":              status,
			"razorpay_payment_id": paymentID,
			"razorpay_signature":  signature,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]model.CoursePayment, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.CoursePayment{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []model.CoursePayment
	err := query.Preload("Course").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	return transactions, total, err
}

// InquiryStore persists inquiry records and their payment state.
type InquiryStore struct {
	db *gorm.DB
}

func (s *InquiryStore) Find(ctx context.Context, id uint) (*model.CourseInquiry, error) {
	var inquiry model.CourseInquiry
	if err := s.db.WithContext(ctx).First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: inquiry %d", payments.ErrNotFound, id)
		}
		return nil, err
	}
	return &inquiry, nil
}

func (s *InquiryStore) AttachOrder(ctx context.Context, id uint, orderID, receipt string, amount int64) error {
	return s.db.WithContext(ctx).Model(&model.CourseInquiry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"razorpay_order_id": orderID,
			"receipt":           receipt,
			"amount":            amount,
		}).Error
}

// Settle transitions the inquiry's payment state out of "pending" with the
// same conditional-update guarantee as TransactionStore.Settle. Only the
// fields present in the settlement are written; unrelated inquiry fields
// (organization included, unless the claim supplies one) stay untouched.
func (s *InquiryStore) Settle(ctx context.Context, id uint, settlement payments.InquirySettlement) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": settlement.PaymentStatus,
	}
	if settlement.Status != "" {
		updates["status"] = settlement.Status
	}
	if settlement.OrderID != "" {
		updates["razorpay_order_id"] = settlement.OrderID
	}
	if settlement.PaymentID != "" {
		updates["razorpay_payment_id"] = settlement.PaymentID
	}
	if settlement.Signature != "" {
		updates["razorpay_signature"] = settlement.Signature
	}
	if settlement.Organization != "" {
		updates["organization"] = settlement.Organization
	}

	res := s.db.WithContext(ctx).Model(&model.CourseInquiry{}).
		Where("id = ? AND payment_status = ?", id, model.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
