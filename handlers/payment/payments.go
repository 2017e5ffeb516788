package payment

import (
	"errors"
	"log"
	"strconv"

	"github.com/courseflow/api/model"
	"github.com/courseflow/api/services/email"
	"github.com/courseflow/api/services/payments"
	"github.com/courseflow/api/utils/middleware"
	"github.com/courseflow/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PaymentHandler handles course purchase requests
type PaymentHandler struct {
	svc    *payments.Service
	db     *gorm.DB
	mailer *email.Sender
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(svc *payments.Service, db *gorm.DB, mailer *email.Sender) *PaymentHandler {
	return &PaymentHandler{
		svc:    svc,
		db:     db,
		mailer: mailer,
	}
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	CourseID      uint `json:"course_id"`
	CourseIDAlias uint `json:"courseId"`
}

// VerifyRequest represents a signature verification request. Clients send
// either snake_case or camelCase field names; both are accepted.
type VerifyRequest struct {
	TransactionID      uint   `json:"transaction_id"`
	TransactionIDAlias uint   `json:"transactionId"`
	OrderID            string `json:"razorpay_order_id"`
	OrderIDAlias       string `json:"razorpayOrderId"`
	PaymentID          string `json:"razorpay_payment_id"`
	PaymentIDAlias     string `json:"razorpayPaymentId"`
	Signature          string `json:"razorpay_signature"`
	SignatureAlias     string `json:"razorpaySignature"`
}

// VerifySimpleRequest represents a lookup verification request
type VerifySimpleRequest struct {
	TransactionID      uint   `json:"transaction_id"`
	TransactionIDAlias uint   `json:"transactionId"`
	PaymentID          string `json:"payment_id"`
	PaymentIDAlias     string `json:"paymentId"`
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func coalesceUint(a, b uint) uint {
	if a != 0 {
		return a
	}
	return b
}

// CreateOrder handles POST /api/v1/payments/create-order
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	courseID := coalesceUint(req.CourseID, req.CourseIDAlias)
	if courseID == 0 {
		return response.BadRequest(c, "Course ID is required")
	}

	order, err := h.svc.CreateCourseOrder(c.Context(), userID, courseID)
	if err != nil {
		return h.paymentError(c, err)
	}

	return response.Success(c, order)
}

// VerifyPayment handles POST /api/v1/payments/verify
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim := payments.SignatureClaim{
		TransactionID: coalesceUint(req.TransactionID, req.TransactionIDAlias),
		UserID:        userID,
		OrderID:       coalesce(req.OrderID, req.OrderIDAlias),
		PaymentID:     coalesce(req.PaymentID, req.PaymentIDAlias),
		Signature:     coalesce(req.Signature, req.SignatureAlias),
	}
	if claim.TransactionID == 0 {
		return response.BadRequest(c, "Transaction ID is required")
	}

	result, err := h.svc.VerifyCoursePayment(c.Context(), claim)
	if err != nil {
		return h.paymentError(c, err)
	}

	h.notifyEnrollment(result)

	return response.SuccessWithMessage(c, result.Message, result)
}

// VerifyPaymentSimple handles POST /api/v1/payments/verify-simple
func (h *PaymentHandler) VerifyPaymentSimple(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req VerifySimpleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim := payments.LookupClaim{
		TransactionID: coalesceUint(req.TransactionID, req.TransactionIDAlias),
		UserID:        userID,
		PaymentID:     coalesce(req.PaymentID, req.PaymentIDAlias),
	}
	if claim.TransactionID == 0 {
		return response.BadRequest(c, "Transaction ID is required")
	}

	result, err := h.svc.VerifyCoursePaymentSimple(c.Context(), claim)
	if err != nil {
		return h.paymentError(c, err)
	}

	h.notifyEnrollment(result)

	return response.SuccessWithMessage(c, result.Message, result)
}

// History handles GET /api/v1/payments/history
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	transactions, total, err := h.svc.History(c.Context(), userID, limit, offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch payment history")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, transactions, pagination)
}

// notifyEnrollment sends the enrollment confirmation mail. Failures are
// logged; mail never affects the settlement outcome.
func (h *PaymentHandler) notifyEnrollment(result *payments.Result) {
	if h.mailer == nil || !result.Success || result.Payment == nil {
		return
	}

	var user model.User
	if err := h.db.First(&user, result.Payment.UserID).Error; err != nil {
		return
	}
	var course model.Course
	if err := h.db.First(&course, result.Payment.CourseID).Error; err != nil {
		return
	}

	go func() {
		if err := h.mailer.SendEnrollmentConfirmation(user.Email, user.Name, course.Title); err != nil {
			log.Printf("payment: enrollment mail to %s failed: %v", user.Email, err)
		}
	}()
}

// paymentError maps engine errors to HTTP responses
func (h *PaymentHandler) paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payments.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, payments.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, payments.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, payments.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, payments.ErrGatewayTimeout):
		return response.Error(c, fiber.StatusGatewayTimeout, "Payment gateway timed out", "GATEWAY_TIMEOUT")
	case errors.Is(err, payments.ErrGatewayUnavailable):
		return response.ServiceUnavailable(c, "Payment gateway is unavailable")
	default:
		return response.InternalServerError(c, "Payment operation failed")
	}
}
