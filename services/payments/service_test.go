package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/courseflow/api/model"
)

// ---- in-memory fakes ----

type fakeCatalog struct {
	courses map[uint]*model.Course
}

func (f *fakeCatalog) FindCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	c, ok := f.courses[courseID]
	if !ok {
		return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
	}
	return c, nil
}

type fakeEnrollments struct {
	enrolled map[string]bool
	addErr   error
	addCalls int
}

func key(userID, courseID uint) string {
	return fmt.Sprintf("%d/%d", userID, courseID)
}

func (f *fakeEnrollments) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	return f.enrolled[key(userID, courseID)], nil
}

func (f *fakeEnrollments) AddEnrollment(ctx context.Context, userID, courseID uint) error {
	f.addCalls++
	if f.addErr != nil {
		return f.addErr
	}
	f.enrolled[key(userID, courseID)] = true
	return nil
}

type fakeTransactions struct {
	byID   map[uint]*model.CoursePayment
	nextID uint
	// loseRace simulates another settlement winning the conditional update
	loseRace bool
}

func (f *fakeTransactions) Create(ctx context.Context, p *model.CoursePayment) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeTransactions) Find(ctx context.Context, id uint) (*model.CoursePayment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %d", ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeTransactions) Settle(ctx context.Context, id uint, status, paymentID, signature string) (bool, error) {
	if f.loseRace {
		// Another settlement slipped in between the read and the
		// conditional update: the row is already completed
		if p, ok := f.byID[id]; ok {
			p.Status = model.PaymentStatusCompleted
			p.RazorpayPaymentID = "pay_winner"
		}
		return false, nil
	}
	p, ok := f.byID[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.RazorpayPaymentID = paymentID
	p.RazorpaySignature = signature
	return true, nil
}

func (f *fakeTransactions) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]model.CoursePayment, int64, error) {
	var out []model.CoursePayment
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeInquiries struct {
	byID map[uint]*model.CourseInquiry
}

func (f *fakeInquiries) Find(ctx context.Context, id uint) (*model.CourseInquiry, error) {
	i, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: inquiry %d", ErrNotFound, id)
	}
	ci := *i
	return &ci, nil
}

func (f *fakeInquiries) AttachOrder(ctx context.Context, id uint, orderID, receipt string, amount int64) error {
	i, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("%w: inquiry %d", ErrNotFound, id)
	}
	i.RazorpayOrderID = orderID
	i.Receipt = receipt
	i.Amount = amount
	return nil
}

func (f *fakeInquiries) Settle(ctx context.Context, id uint, settlement InquirySettlement) (bool, error) {
	i, ok := f.byID[id]
	if !ok || i.PaymentStatus != model.PaymentStatusPending {
		return false, nil
	}
	i.PaymentStatus = settlement.PaymentStatus
	if settlement.Status != "" {
		i.Status = settlement.Status
	}
	if settlement.OrderID != "" {
		i.RazorpayOrderID = settlement.OrderID
	}
	if settlement.PaymentID != "" {
		i.RazorpayPaymentID = settlement.PaymentID
	}
	if settlement.Signature != "" {
		i.RazorpaySignature = settlement.Signature
	}
	if settlement.Organization != "" {
		i.Organization = settlement.Organization
	}
	return true, nil
}

type fakeGateway struct {
	orders      int
	orderErr    error
	fetchErr    error
	fetchStatus string
	fetchCalls  int
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	f.orders++
	return &Order{
		ID:       fmt.Sprintf("order_fake_%d", f.orders),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}, nil
}

func (f *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &Payment{ID: paymentID, Status: f.fetchStatus}, nil
}

// ---- fixture ----

type fixture struct {
	svc          *Service
	catalog      *fakeCatalog
	enrollments  *fakeEnrollments
	transactions *fakeTransactions
	inquiries    *fakeInquiries
	gateway      *fakeGateway
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		catalog: &fakeCatalog{courses: map[uint]*model.Course{
			1: {ID: 1, Title: "AI & ML Bootcamp", Price: 1499},
		}},
		enrollments:  &fakeEnrollments{enrolled: map[string]bool{}},
		transactions: &fakeTransactions{byID: map[uint]*model.CoursePayment{}},
		inquiries:    &fakeInquiries{byID: map[uint]*model.CourseInquiry{}},
		gateway:      &fakeGateway{fetchStatus: GatewayStatusCaptured},
	}
	f.svc = NewService(cfg, Stores{
		Catalog:      f.catalog,
		Enrollments:  f.enrollments,
		Transactions: f.transactions,
		Inquiries:    f.inquiries,
	}, f.gateway)
	return f
}

func liveConfig() Config {
	return Config{KeyID: "rzp_test_key", KeySecret: "test_secret", TestMode: false}
}

func testModeConfig() Config {
	return Config{KeyID: "rzp_test_key", KeySecret: "test_secret", TestMode: true}
}

// pendingTransaction seeds a pending transaction and returns its id
func (f *fixture) pendingTransaction(t *testing.T, userID, courseID uint) *model.CoursePayment {
	t.Helper()
	p := &model.CoursePayment{
		UserID:          userID,
		CourseID:        courseID,
		Amount:          149900,
		Currency:        Currency,
		RazorpayOrderID: "order_seeded",
		Status:          model.PaymentStatusPending,
	}
	if err := f.transactions.Create(context.Background(), p); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return p
}

// ---- order creation ----

func TestCreateCourseOrder(t *testing.T) {
	f := newFixture(liveConfig())

	order, err := f.svc.CreateCourseOrder(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("CreateCourseOrder: %v", err)
	}

	if order.Amount != 149900 {
		t.Errorf("amount = %d, want 149900 (price in paise)", order.Amount)
	}
	if order.Currency != "INR" {
		t.Errorf("currency = %s, want INR", order.Currency)
	}
	if !strings.HasPrefix(order.Receipt, "receipt_order_1_") {
		t.Errorf("receipt = %s, want receipt_order_<courseID>_<ts>", order.Receipt)
	}
	if order.KeyID != "rzp_test_key" {
		t.Errorf("key id = %s", order.KeyID)
	}
	if order.TestMode {
		t.Error("test mode flag set for live config")
	}

	// A pending transaction must exist, linked to the gateway order
	txn, err := f.transactions.Find(context.Background(), order.TransactionID)
	if err != nil {
		t.Fatalf("pending transaction not created: %v", err)
	}
	if txn.Status != model.PaymentStatusPending {
		t.Errorf("transaction status = %s, want pending", txn.Status)
	}
	if txn.RazorpayOrderID != order.OrderID {
		t.Errorf("transaction order id = %s, want %s", txn.RazorpayOrderID, order.OrderID)
	}
	if txn.Amount != 149900 {
		t.Errorf("transaction amount = %d, want 149900", txn.Amount)
	}
}

func TestCreateCourseOrderUnknownCourse(t *testing.T) {
	f := newFixture(liveConfig())

	_, err := f.svc.CreateCourseOrder(context.Background(), 7, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateCourseOrderAlreadyEnrolled(t *testing.T) {
	f := newFixture(liveConfig())
	f.enrollments.enrolled[key(7, 1)] = true

	_, err := f.svc.CreateCourseOrder(context.Background(), 7, 1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if f.gateway.orders != 0 {
		t.Error("gateway order created for enrolled user")
	}
}

func TestCreateCourseOrderGatewayFailureWritesNothing(t *testing.T) {
	f := newFixture(liveConfig())
	f.gateway.orderErr = ErrGatewayUnavailable

	_, err := f.svc.CreateCourseOrder(context.Background(), 7, 1)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	if len(f.transactions.byID) != 0 {
		t.Error("transaction row written despite gateway failure")
	}
}

func TestCreateCourseOrderUnconfigured(t *testing.T) {
	f := newFixture(Config{})

	_, err := f.svc.CreateCourseOrder(context.Background(), 7, 1)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
}

// ---- signature verification flow ----

func TestVerifyCoursePaymentValidSignature(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	sig := SignatureDigest(txn.RazorpayOrderID, "pay_abc", "test_secret")
	result, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
		OrderID:       txn.RazorpayOrderID,
		PaymentID:     "pay_abc",
		Signature:     sig,
	})
	if err != nil {
		t.Fatalf("VerifyCoursePayment: %v", err)
	}

	if !result.Success {
		t.Fatalf("valid signature not accepted: %s", result.Message)
	}
	if result.Payment.Status != model.PaymentStatusCompleted {
		t.Errorf("status = %s, want completed", result.Payment.Status)
	}
	if result.Payment.RazorpayPaymentID != "pay_abc" {
		t.Errorf("payment id = %s, want pay_abc", result.Payment.RazorpayPaymentID)
	}
	if !f.enrollments.enrolled[key(7, 1)] {
		t.Error("user not enrolled after successful verification")
	}
}

func TestVerifyCoursePaymentInvalidSignature(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	result, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
		OrderID:       txn.RazorpayOrderID,
		PaymentID:     "pay_abc",
		Signature:     "bogus",
	})
	if err != nil {
		t.Fatalf("VerifyCoursePayment: %v", err)
	}

	if result.Success {
		t.Fatal("invalid signature accepted")
	}
	if result.Payment.Status != model.PaymentStatusFailed {
		t.Errorf("status = %s, want failed", result.Payment.Status)
	}
	// A failed claim flips status and nothing else
	stored, _ := f.transactions.Find(context.Background(), txn.ID)
	if stored.RazorpayPaymentID != "" || stored.RazorpaySignature != "" {
		t.Error("failed settlement stored claim fields")
	}
	if f.enrollments.enrolled[key(7, 1)] {
		t.Error("user enrolled despite failed verification")
	}
}

func TestVerifyCoursePaymentOrderIDFallback(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	// Claim omits the order id; the stored one must be used
	sig := SignatureDigest(txn.RazorpayOrderID, "pay_abc", "test_secret")
	result, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_abc",
		Signature:     sig,
	})
	if err != nil {
		t.Fatalf("VerifyCoursePayment: %v", err)
	}
	if !result.Success {
		t.Fatal("signature over stored order id rejected")
	}
}

func TestVerifyCoursePaymentTestModeBypass(t *testing.T) {
	f := newFixture(testModeConfig())
	txn := f.pendingTransaction(t, 7, 1)

	result, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_abc",
		Signature:     "anything-goes",
	})
	if err != nil {
		t.Fatalf("VerifyCoursePayment: %v", err)
	}
	if !result.Success {
		t.Fatal("test mode must accept any claim")
	}
	if !f.enrollments.enrolled[key(7, 1)] {
		t.Error("test mode verification did not enroll")
	}
}

func TestVerifyCoursePaymentTerminalIsIdempotent(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	sig := SignatureDigest(txn.RazorpayOrderID, "pay_abc", "test_secret")
	claim := SignatureClaim{TransactionID: txn.ID, PaymentID: "pay_abc", Signature: sig}

	first, err := f.svc.VerifyCoursePayment(context.Background(), claim)
	if err != nil || !first.Success {
		t.Fatalf("first verification failed: %v %+v", err, first)
	}

	// Re-submitting the claim, even an invalid one, reports the settled
	// outcome and never transitions the transaction again
	second, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_other",
		Signature:     "bogus",
	})
	if err != nil {
		t.Fatalf("second verification: %v", err)
	}
	if !second.Success {
		t.Fatal("terminal completed transaction reported as failed")
	}
	stored, _ := f.transactions.Find(context.Background(), txn.ID)
	if stored.RazorpayPaymentID != "pay_abc" {
		t.Errorf("terminal transaction mutated: payment id = %s", stored.RazorpayPaymentID)
	}
}

func TestVerifyCoursePaymentRaceLoserReportsWinner(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	// The conditional update is lost; the fake completes the row with the
	// winner's payment id and reports zero rows affected
	f.transactions.loseRace = true

	result, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_loser",
		Signature:     "bogus",
	})
	if err != nil {
		t.Fatalf("VerifyCoursePayment: %v", err)
	}
	if !result.Success {
		t.Fatal("race loser must report the winner's completed outcome")
	}
	if result.Payment.RazorpayPaymentID != "pay_winner" {
		t.Errorf("payment id = %s, want pay_winner", result.Payment.RazorpayPaymentID)
	}
}

func TestVerifyCoursePaymentRepairsMissingEnrollment(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	// Simulate a crash after the transaction completed but before the
	// enrollment write: completed row, no enrollment
	f.transactions.byID[txn.ID].Status = model.PaymentStatusCompleted

	result, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
	})
	if err != nil {
		t.Fatalf("VerifyCoursePayment: %v", err)
	}
	if !result.Success {
		t.Fatal("completed transaction reported as failed")
	}
	if !f.enrollments.enrolled[key(7, 1)] {
		t.Error("re-verification did not repair the missing enrollment")
	}
}

// ---- lookup verification flow ----

func TestVerifyCoursePaymentSimpleCaptured(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	result, err := f.svc.VerifyCoursePaymentSimple(context.Background(), LookupClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_abc",
	})
	if err != nil {
		t.Fatalf("VerifyCoursePaymentSimple: %v", err)
	}
	if !result.Success {
		t.Fatalf("captured payment rejected: %s", result.Message)
	}
	if f.gateway.fetchCalls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.gateway.fetchCalls)
	}
}

func TestVerifyCoursePaymentSimpleNonCapturedStatus(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)
	f.gateway.fetchStatus = "failed"

	result, err := f.svc.VerifyCoursePaymentSimple(context.Background(), LookupClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_abc",
	})
	if err != nil {
		t.Fatalf("VerifyCoursePaymentSimple: %v", err)
	}
	if result.Success {
		t.Fatal("failed gateway payment accepted")
	}
	if result.Payment.Status != model.PaymentStatusFailed {
		t.Errorf("status = %s, want failed", result.Payment.Status)
	}
}

func TestVerifyCoursePaymentSimpleMissingPaymentID(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	_, err := f.svc.VerifyCoursePaymentSimple(context.Background(), LookupClaim{
		TransactionID: txn.ID,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestVerifyCoursePaymentRejectsForeignTransaction(t *testing.T) {
	f := newFixture(testModeConfig())
	txn := f.pendingTransaction(t, 7, 1)

	// User 8 submits a claim for user 7's transaction. Even with test mode
	// bypassing signature checks, nothing may settle for the wrong caller.
	_, err := f.svc.VerifyCoursePayment(context.Background(), SignatureClaim{
		TransactionID: txn.ID,
		UserID:        8,
		PaymentID:     "pay_abc",
		Signature:     "whatever",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	stored := f.transactions.byID[txn.ID]
	if stored.Status != model.PaymentStatusPending {
		t.Errorf("status = %s, transaction must stay pending", stored.Status)
	}
	if f.enrollments.addCalls != 0 {
		t.Error("enrollment must not run for a foreign claim")
	}
}

func TestVerifyCoursePaymentSimpleRejectsForeignTransaction(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)

	_, err := f.svc.VerifyCoursePaymentSimple(context.Background(), LookupClaim{
		TransactionID: txn.ID,
		UserID:        8,
		PaymentID:     "pay_abc",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	if f.gateway.fetchCalls != 0 {
		t.Error("gateway must not be consulted for a foreign claim")
	}
	if stored := f.transactions.byID[txn.ID]; stored.Status != model.PaymentStatusPending {
		t.Errorf("status = %s, transaction must stay pending", stored.Status)
	}
}

func TestVerifyCoursePaymentSimpleGatewayErrorSettlesFailed(t *testing.T) {
	f := newFixture(liveConfig())
	txn := f.pendingTransaction(t, 7, 1)
	f.gateway.fetchErr = errors.New("gateway down")

	result, err := f.svc.VerifyCoursePaymentSimple(context.Background(), LookupClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_abc",
	})
	if err != nil {
		t.Fatalf("VerifyCoursePaymentSimple: %v", err)
	}
	if result.Success {
		t.Fatal("gateway lookup error must settle as failed in production")
	}
}

func TestVerifyCoursePaymentSimpleTestModeSkipsGateway(t *testing.T) {
	f := newFixture(testModeConfig())
	txn := f.pendingTransaction(t, 7, 1)
	f.gateway.fetchErr = errors.New("gateway down")

	result, err := f.svc.VerifyCoursePaymentSimple(context.Background(), LookupClaim{
		TransactionID: txn.ID,
		PaymentID:     "pay_abc",
	})
	if err != nil {
		t.Fatalf("VerifyCoursePaymentSimple: %v", err)
	}
	if !result.Success {
		t.Fatal("test mode lookup must succeed without the gateway")
	}
	if f.gateway.fetchCalls != 0 {
		t.Errorf("test mode made %d gateway calls", f.gateway.fetchCalls)
	}
	if !strings.Contains(result.Message, "test mode") {
		t.Errorf("message = %q, want test mode marker", result.Message)
	}
}

// ---- inquiry flow ----

func (f *fixture) seedInquiry(id uint) *model.CourseInquiry {
	inq := &model.CourseInquiry{
		ID:            id,
		Name:          "Asha",
		Email:         "asha@example.com",
		Phone:         "9999999999",
		Organization:  "Original College",
		CourseID:      1,
		CourseName:    "AI & ML Bootcamp",
		Status:        model.InquiryStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}
	f.inquiries.byID[id] = inq
	return inq
}

func TestCreateInquiryOrder(t *testing.T) {
	f := newFixture(liveConfig())
	f.seedInquiry(3)

	order, err := f.svc.CreateInquiryOrder(context.Background(), 3)
	if err != nil {
		t.Fatalf("CreateInquiryOrder: %v", err)
	}

	if order.Amount != 149900 {
		t.Errorf("amount = %d, want 149900", order.Amount)
	}
	if !strings.HasPrefix(order.Receipt, "receipt_inquiry_3_") {
		t.Errorf("receipt = %s, want receipt_inquiry_<id>_<ts>", order.Receipt)
	}
	if order.Prefill == nil || order.Prefill.Email != "asha@example.com" {
		t.Errorf("prefill = %+v, want inquiry contact details", order.Prefill)
	}

	stored, _ := f.inquiries.Find(context.Background(), 3)
	if stored.RazorpayOrderID != order.OrderID {
		t.Errorf("order not attached to inquiry: %s", stored.RazorpayOrderID)
	}
}

func TestVerifyInquiryPaymentOrganizationFromClaim(t *testing.T) {
	f := newFixture(liveConfig())
	inq := f.seedInquiry(3)
	inq.RazorpayOrderID = "order_inq"

	sig := SignatureDigest("order_inq", "pay_abc", "test_secret")
	result, err := f.svc.VerifyInquiryPayment(context.Background(), InquirySignatureClaim{
		InquiryID:    3,
		PaymentID:    "pay_abc",
		Signature:    sig,
		Organization: "Updated College",
	})
	if err != nil {
		t.Fatalf("VerifyInquiryPayment: %v", err)
	}

	if !result.Success {
		t.Fatalf("valid inquiry signature rejected: %s", result.Message)
	}
	if result.Inquiry.Status != model.InquiryStatusEnrolled {
		t.Errorf("status = %s, want enrolled", result.Inquiry.Status)
	}
	if result.Inquiry.PaymentStatus != model.PaymentStatusCompleted {
		t.Errorf("payment status = %s, want completed", result.Inquiry.PaymentStatus)
	}
	if result.Inquiry.Organization != "Updated College" {
		t.Errorf("organization = %s, want claim value", result.Inquiry.Organization)
	}
}

func TestVerifyInquiryPaymentFailureKeepsOrganization(t *testing.T) {
	f := newFixture(liveConfig())
	inq := f.seedInquiry(3)
	inq.RazorpayOrderID = "order_inq"

	result, err := f.svc.VerifyInquiryPayment(context.Background(), InquirySignatureClaim{
		InquiryID:    3,
		PaymentID:    "pay_abc",
		Signature:    "bogus",
		Organization: "Should Not Stick",
	})
	if err != nil {
		t.Fatalf("VerifyInquiryPayment: %v", err)
	}

	if result.Success {
		t.Fatal("invalid inquiry signature accepted")
	}
	stored, _ := f.inquiries.Find(context.Background(), 3)
	if stored.Organization != "Original College" {
		t.Errorf("failed settlement mutated organization: %s", stored.Organization)
	}
	if stored.Status != model.InquiryStatusPending {
		t.Errorf("failed payment changed inquiry status to %s", stored.Status)
	}
	if stored.PaymentStatus != model.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed", stored.PaymentStatus)
	}
}

func TestVerifyInquiryPaymentTerminalIsIdempotent(t *testing.T) {
	f := newFixture(liveConfig())
	inq := f.seedInquiry(3)
	inq.PaymentStatus = model.PaymentStatusCompleted
	inq.Status = model.InquiryStatusEnrolled

	result, err := f.svc.VerifyInquiryPayment(context.Background(), InquirySignatureClaim{
		InquiryID: 3,
		Signature: "bogus",
	})
	if err != nil {
		t.Fatalf("VerifyInquiryPayment: %v", err)
	}
	if !result.Success {
		t.Fatal("terminal completed inquiry reported as failed")
	}
}

func TestVerifyInquiryPaymentSimpleTestMode(t *testing.T) {
	f := newFixture(testModeConfig())
	f.seedInquiry(3)

	result, err := f.svc.VerifyInquiryPaymentSimple(context.Background(), InquiryLookupClaim{
		InquiryID: 3,
		PaymentID: "pay_abc",
	})
	if err != nil {
		t.Fatalf("VerifyInquiryPaymentSimple: %v", err)
	}
	if !result.Success {
		t.Fatal("test mode inquiry lookup must succeed")
	}
	if f.gateway.fetchCalls != 0 {
		t.Errorf("test mode made %d gateway calls", f.gateway.fetchCalls)
	}
}

// ---- history ----

func TestHistory(t *testing.T) {
	f := newFixture(liveConfig())
	f.pendingTransaction(t, 7, 1)
	f.pendingTransaction(t, 8, 1)
	f.pendingTransaction(t, 7, 1)

	list, total, err := f.svc.History(context.Background(), 7, 10, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("got %d/%d transactions, want 2", len(list), total)
	}
	for _, p := range list {
		if p.UserID != 7 {
			t.Errorf("history leaked transaction of user %d", p.UserID)
		}
	}
}
