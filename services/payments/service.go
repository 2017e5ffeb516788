package payments

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/courseflow/api/model"
)

// Config is the gateway configuration, built once at startup and injected.
// TestMode bypasses signature checks and gateway-lookup failures; it is an
// explicit switch, never inferred at call time.
type Config struct {
	KeyID     string
	KeySecret string
	TestMode  bool
}

// Configured reports whether gateway credentials are present. Without them
// every payment operation fails with ErrGatewayUnavailable.
func (c Config) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// SignatureClaim is a completion claim carrying the gateway signature.
// UserID is the caller's identity; a claim for a transaction owned by a
// different user is rejected before any settlement runs.
type SignatureClaim struct {
	TransactionID uint
	UserID        uint
	OrderID       string
	PaymentID     string
	Signature     string
}

// LookupClaim is a completion claim carrying only the gateway payment id;
// authenticity is established by fetching the payment from the gateway.
type LookupClaim struct {
	TransactionID uint
	UserID        uint
	PaymentID     string
}

// InquirySignatureClaim is the inquiry-flow signature claim. Organization is
// optional and must come from the claim itself, never from surrounding state.
type InquirySignatureClaim struct {
	InquiryID    uint
	OrderID      string
	PaymentID    string
	Signature    string
	Organization string
}

// InquiryLookupClaim is the inquiry-flow lookup claim.
type InquiryLookupClaim struct {
	InquiryID    uint
	PaymentID    string
	Organization string
}

// OrderDetails is what the client needs to complete a payment.
type OrderDetails struct {
	OrderID       string   `json:"order_id"`
	Amount        int64    `json:"amount"`
	Currency      string   `json:"currency"`
	Receipt       string   `json:"receipt"`
	TransactionID uint     `json:"transaction_id,omitempty"`
	InquiryID     uint     `json:"inquiry_id,omitempty"`
	KeyID         string   `json:"key_id"`
	TestMode      bool     `json:"test_mode"`
	Prefill       *Prefill `json:"prefill,omitempty"`
}

// Prefill is contact info for the gateway checkout form (inquiry flow).
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Result is the outcome of settling a course-purchase transaction. A failed
// verification is a normal outcome (Success=false), not an error.
type Result struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Payment *model.CoursePayment `json:"payment,omitempty"`
}

// InquiryResult is the outcome of settling an inquiry payment.
type InquiryResult struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Inquiry *model.CourseInquiry `json:"inquiry,omitempty"`
}

const (
	msgVerified     = "Payment verified successfully"
	msgNotVerified  = "Payment verification failed"
	msgVerifiedTest = "Payment verified successfully (test mode)"
)

// Service is the payment/enrollment transaction engine: it creates gateway
// orders with a local pending transaction, and settles completion claims
// exactly once per transaction.
type Service struct {
	cfg     Config
	stores  Stores
	gateway Gateway
}

// NewService creates the payment engine with its collaborators.
func NewService(cfg Config, stores Stores, gateway Gateway) *Service {
	return &Service{
		cfg:     cfg,
		stores:  stores,
		gateway: gateway,
	}
}

// TestMode reports whether the engine runs with verification bypassed.
func (s *Service) TestMode() bool {
	return s.cfg.TestMode
}

// CreateCourseOrder creates a gateway order for a course purchase and
// records a pending transaction. Exactly one transaction row is written, and
// only after the gateway call succeeds.
func (s *Service) CreateCourseOrder(ctx context.Context, userID, courseID uint) (*OrderDetails, error) {
	if !s.cfg.Configured() {
		return nil, fmt.Errorf("%w: gateway credentials are not configured", ErrGatewayUnavailable)
	}

	course, err := s.stores.Catalog.FindCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.stores.Enrollments.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, fmt.Errorf("%w: already enrolled in this course", ErrConflict)
	}

	// Amount in paise, fixed now; later price changes never alter it.
	amount := course.Price * 100
	receipt := fmt.Sprintf("receipt_order_%d_%d", courseID, time.Now().UnixMilli())

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: Currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	payment := &model.CoursePayment{
		UserID:          userID,
		CourseID:        courseID,
		Amount:          amount,
		Currency:        Currency,
		Receipt:         order.Receipt,
		RazorpayOrderID: order.ID,
		Status:          model.PaymentStatusPending,
	}
	if err := s.stores.Transactions.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &OrderDetails{
		OrderID:       order.ID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Receipt:       order.Receipt,
		TransactionID: payment.ID,
		KeyID:         s.cfg.KeyID,
		TestMode:      s.cfg.TestMode,
	}, nil
}

// CreateInquiryOrder creates a gateway order for an inquiry, priced from the
// inquiry's course, and attaches the order to the inquiry record.
func (s *Service) CreateInquiryOrder(ctx context.Context, inquiryID uint) (*OrderDetails, error) {
	if !s.cfg.Configured() {
		return nil, fmt.Errorf("%w: gateway credentials are not configured", ErrGatewayUnavailable)
	}

	inquiry, err := s.stores.Inquiries.Find(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	course, err := s.stores.Catalog.FindCourse(ctx, inquiry.CourseID)
	if err != nil {
		return nil, err
	}

	amount := course.Price * 100
	receipt := fmt.Sprintf("receipt_inquiry_%d_%d", inquiryID, time.Now().UnixMilli())

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: Currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	if err := s.stores.Inquiries.AttachOrder(ctx, inquiryID, order.ID, order.Receipt, order.Amount); err != nil {
		return nil, err
	}

	return &OrderDetails{
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Receipt:   order.Receipt,
		InquiryID: inquiry.ID,
		KeyID:     s.cfg.KeyID,
		TestMode:  s.cfg.TestMode,
		Prefill: &Prefill{
			Name:    inquiry.Name,
			Email:   inquiry.Email,
			Contact: inquiry.Phone,
		},
	}, nil
}

// VerifyCoursePayment settles a course-purchase transaction from a signature
// claim. Settlement is idempotent: a terminal transaction is reported as-is
// and never transitions again.
func (s *Service) VerifyCoursePayment(ctx context.Context, claim SignatureClaim) (*Result, error) {
	if !s.cfg.Configured() {
		return nil, fmt.Errorf("%w: gateway credentials are not configured", ErrGatewayUnavailable)
	}

	payment, err := s.stores.Transactions.Find(ctx, claim.TransactionID)
	if err != nil {
		return nil, err
	}
	if claim.UserID != 0 && payment.UserID != claim.UserID {
		return nil, ErrForbidden
	}
	if payment.IsTerminal() {
		return s.terminalCourseResult(ctx, payment)
	}

	orderID := claim.OrderID
	if orderID == "" {
		orderID = payment.RazorpayOrderID
	}

	authentic := s.cfg.TestMode ||
		VerifySignature(orderID, claim.PaymentID, claim.Signature, s.cfg.KeySecret)

	return s.settleCourse(ctx, payment, authentic, claim.PaymentID, claim.Signature, msgFor(authentic, false))
}

// VerifyCoursePaymentSimple settles a course-purchase transaction from a
// lookup claim: only the gateway payment id is supplied and the payment's
// status is fetched from the gateway.
func (s *Service) VerifyCoursePaymentSimple(ctx context.Context, claim LookupClaim) (*Result, error) {
	if !s.cfg.Configured() {
		return nil, fmt.Errorf("%w: gateway credentials are not configured", ErrGatewayUnavailable)
	}
	if claim.PaymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrInvalidInput)
	}

	payment, err := s.stores.Transactions.Find(ctx, claim.TransactionID)
	if err != nil {
		return nil, err
	}
	if claim.UserID != 0 && payment.UserID != claim.UserID {
		return nil, ErrForbidden
	}
	if payment.IsTerminal() {
		return s.terminalCourseResult(ctx, payment)
	}

	authentic, fromTestFallback := s.lookupAuthentic(ctx, claim.PaymentID)
	return s.settleCourse(ctx, payment, authentic, claim.PaymentID, "", msgFor(authentic, fromTestFallback))
}

// VerifyInquiryPayment settles an inquiry payment from a signature claim.
func (s *Service) VerifyInquiryPayment(ctx context.Context, claim InquirySignatureClaim) (*InquiryResult, error) {
	if !s.cfg.Configured() {
		return nil, fmt.Errorf("%w: gateway credentials are not configured", ErrGatewayUnavailable)
	}

	inquiry, err := s.stores.Inquiries.Find(ctx, claim.InquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.PaymentTerminal() {
		return inquiryResultFor(inquiry), nil
	}

	orderID := claim.OrderID
	if orderID == "" {
		orderID = inquiry.RazorpayOrderID
	}

	authentic := s.cfg.TestMode ||
		VerifySignature(orderID, claim.PaymentID, claim.Signature, s.cfg.KeySecret)

	return s.settleInquiry(ctx, inquiry, authentic, InquirySettlement{
		OrderID:      orderID,
		PaymentID:    claim.PaymentID,
		Signature:    claim.Signature,
		Organization: claim.Organization,
	}, msgFor(authentic, false))
}

// VerifyInquiryPaymentSimple settles an inquiry payment from a lookup claim.
func (s *Service) VerifyInquiryPaymentSimple(ctx context.Context, claim InquiryLookupClaim) (*InquiryResult, error) {
	if !s.cfg.Configured() {
		return nil, fmt.Errorf("%w: gateway credentials are not configured", ErrGatewayUnavailable)
	}
	if claim.PaymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrInvalidInput)
	}

	inquiry, err := s.stores.Inquiries.Find(ctx, claim.InquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.PaymentTerminal() {
		return inquiryResultFor(inquiry), nil
	}

	authentic, fromTestFallback := s.lookupAuthentic(ctx, claim.PaymentID)
	return s.settleInquiry(ctx, inquiry, authentic, InquirySettlement{
		PaymentID:    claim.PaymentID,
		Organization: claim.Organization,
	}, msgFor(authentic, fromTestFallback))
}

// History returns the user's transactions newest first.
func (s *Service) History(ctx context.Context, userID uint, limit, offset int) ([]model.CoursePayment, int64, error) {
	return s.stores.Transactions.ListByUser(ctx, userID, limit, offset)
}

// lookupAuthentic establishes authenticity by fetching the payment from the
// gateway. In test mode no gateway call is made. A gateway error in test
// mode is treated as authentic (logged); in production it settles the record
// as failed.
func (s *Service) lookupAuthentic(ctx context.Context, paymentID string) (authentic, fromTestFallback bool) {
	if s.cfg.TestMode {
		return true, true
	}

	fetched, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		log.Printf("payments: gateway lookup for payment %s failed: %v", paymentID, err)
		return false, false
	}

	switch fetched.Status {
	case GatewayStatusCaptured, GatewayStatusAuthorized:
		return true, false
	default:
		return false, false
	}
}

// settleCourse applies the terminal transition and, on completion, the
// enrollment side effect. The store's conditional update is what makes a
// concurrent double-settle apply the transition only once.
func (s *Service) settleCourse(ctx context.Context, payment *model.CoursePayment, authentic bool, paymentID, signature, message string) (*Result, error) {
	status := model.PaymentStatusFailed
	if authentic {
		status = model.PaymentStatusCompleted
	} else {
		// A failed claim flips status and nothing else.
		paymentID, signature = "", ""
	}

	transitioned, err := s.stores.Transactions.Settle(ctx, payment.ID, status, paymentID, signature)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// Another settlement attempt won the race; report its outcome.
		settled, err := s.stores.Transactions.Find(ctx, payment.ID)
		if err != nil {
			return nil, err
		}
		return s.terminalCourseResult(ctx, settled)
	}

	payment.Status = status
	payment.RazorpayPaymentID = paymentID
	payment.RazorpaySignature = signature

	if authentic {
		if err := s.stores.Enrollments.AddEnrollment(ctx, payment.UserID, payment.CourseID); err != nil {
			// The transaction is already completed; reconciliation is
			// re-runnable and will repair the enrollment.
			log.Printf("payments: enrollment for user %d course %d not applied: %v", payment.UserID, payment.CourseID, err)
			return nil, err
		}
		log.Printf("payments: transaction %d completed, user %d enrolled in course %d", payment.ID, payment.UserID, payment.CourseID)
	} else {
		log.Printf("payments: transaction %d failed verification", payment.ID)
	}

	return &Result{Success: authentic, Message: message, Payment: payment}, nil
}

// terminalCourseResult reports an already-settled transaction without
// transitioning it. For a completed transaction the enrollment is re-applied;
// AddEnrollment is idempotent, so this also repairs a crash between the
// transaction write and the enrollment write.
func (s *Service) terminalCourseResult(ctx context.Context, payment *model.CoursePayment) (*Result, error) {
	if payment.Status == model.PaymentStatusCompleted {
		if err := s.stores.Enrollments.AddEnrollment(ctx, payment.UserID, payment.CourseID); err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: msgVerified, Payment: payment}, nil
	}
	return &Result{Success: false, Message: msgNotVerified, Payment: payment}, nil
}

func (s *Service) settleInquiry(ctx context.Context, inquiry *model.CourseInquiry, authentic bool, fields InquirySettlement, message string) (*InquiryResult, error) {
	settlement := InquirySettlement{PaymentStatus: model.PaymentStatusFailed}
	if authentic {
		settlement = fields
		settlement.PaymentStatus = model.PaymentStatusCompleted
		settlement.Status = model.InquiryStatusEnrolled
	}

	transitioned, err := s.stores.Inquiries.Settle(ctx, inquiry.ID, settlement)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		settled, err := s.stores.Inquiries.Find(ctx, inquiry.ID)
		if err != nil {
			return nil, err
		}
		return inquiryResultFor(settled), nil
	}

	inquiry.PaymentStatus = settlement.PaymentStatus
	if authentic {
		inquiry.Status = model.InquiryStatusEnrolled
		inquiry.RazorpayPaymentID = settlement.PaymentID
		if settlement.OrderID != "" {
			inquiry.RazorpayOrderID = settlement.OrderID
		}
		if settlement.Organization != "" {
			inquiry.Organization = settlement.Organization
		}
		log.Printf("payments: inquiry %d payment completed, status enrolled", inquiry.ID)
	} else {
		log.Printf("payments: inquiry %d payment failed verification", inquiry.ID)
	}

	return &InquiryResult{Success: authentic, Message: message, Inquiry: inquiry}, nil
}

func inquiryResultFor(inquiry *model.CourseInquiry) *InquiryResult {
	if inquiry.PaymentStatus == model.PaymentStatusCompleted {
		return &InquiryResult{Success: true, Message: msgVerified, Inquiry: inquiry}
	}
	return &InquiryResult{Success: false, Message: msgNotVerified, Inquiry: inquiry}
}

func msgFor(authentic, fromTestFallback bool) string {
	switch {
	case authentic && fromTestFallback:
		return msgVerifiedTest
	case authentic:
		return msgVerified
	default:
		return msgNotVerified
	}
}
