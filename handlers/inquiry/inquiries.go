package inquiry

import (
	"errors"
	"strconv"

	"github.com/courseflow/api/model"
	"github.com/courseflow/api/services/payments"
	"github.com/courseflow/api/utils/response"
	"github.com/courseflow/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InquiryHandler handles course inquiry requests
type InquiryHandler struct {
	db        *gorm.DB
	svc       *payments.Service
	validator *validation.Validator
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(db *gorm.DB, svc *payments.Service) *InquiryHandler {
	return &InquiryHandler{
		db:        db,
		svc:       svc,
		validator: validation.NewValidator(),
	}
}

// CreateInquiryRequest represents a new inquiry submission
type CreateInquiryRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,min=7,max=20"`
	Organization string `json:"organization" validate:"required,min=2,max=255"`
	Degree       string `json:"degree" validate:"omitempty,max=100"`
	Department   string `json:"department" validate:"omitempty,max=100"`
	Year         string `json:"year" validate:"omitempty,max=20"`
	CourseID     uint   `json:"course_id" validate:"required,min=1"`
}

// CreateOrderRequest requests a gateway order for an existing inquiry
type CreateOrderRequest struct {
	InquiryID      uint `json:"inquiry_id"`
	InquiryIDAlias uint `json:"inquiryId"`
}

// VerifyRequest represents an inquiry payment signature claim. Both
// snake_case and camelCase field names are accepted.
type VerifyRequest struct {
	InquiryID         uint   `json:"inquiry_id"`
	InquiryIDAlias    uint   `json:"inquiryId"`
	OrderID           string `json:"razorpay_order_id"`
	OrderIDAlias      string `json:"razorpayOrderId"`
	PaymentID         string `json:"razorpay_payment_id"`
	PaymentIDAlias    string `json:"razorpayPaymentId"`
	Signature         string `json:"razorpay_signature"`
	SignatureAlias    string `json:"razorpaySignature"`
	Organization      string `json:"organization"`
	OrganizationAlias string `json:"college"` // legacy client field name
}

// VerifySimpleRequest represents an inquiry payment lookup claim
type VerifySimpleRequest struct {
	InquiryID         uint   `json:"inquiry_id"`
	InquiryIDAlias    uint   `json:"inquiryId"`
	PaymentID         string `json:"payment_id"`
	PaymentIDAlias    string `json:"paymentId"`
	Organization      string `json:"organization"`
	OrganizationAlias string `json:"college"`
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

// CreateInquiry handles POST /api/v1/inquiries
func (h *InquiryHandler) CreateInquiry(c *fiber.Ctx) error {
	var req CreateInquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// The course must exist; its title is denormalized onto the inquiry
	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to verify course")
	}

	inquiry := model.CourseInquiry{
		Name:          validation.SanitizeString(req.Name),
		Email:         req.Email,
		Phone:         req.Phone,
		Organization:  validation.SanitizeString(req.Organization),
		Degree:        req.Degree,
		Department:    req.Department,
		Year:          req.Year,
		CourseID:      course.ID,
		CourseName:    course.Title,
		Status:        model.InquiryStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}

	if err := h.db.Create(&inquiry).Error; err != nil {
		return response.InternalServerError(c, "Failed to create inquiry")
	}

	return response.Created(c, inquiry)
}

// CreateOrder handles POST /api/v1/inquiries/create-order
func (h *InquiryHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	inquiryID := coalesceUint(req.InquiryID, req.InquiryIDAlias)
	if inquiryID == 0 {
		return response.BadRequest(c, "Inquiry ID is required")
	}

	order, err := h.svc.CreateInquiryOrder(c.Context(), inquiryID)
	if err != nil {
		return h.paymentError(c, err)
	}

	return response.Success(c, order)
}

// VerifyPayment handles POST /api/v1/inquiries/verify-payment
func (h *InquiryHandler) VerifyPayment(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim := payments.InquirySignatureClaim{
		InquiryID:    coalesceUint(req.InquiryID, req.InquiryIDAlias),
		OrderID:      coalesce(req.OrderID, req.OrderIDAlias),
		PaymentID:    coalesce(req.PaymentID, req.PaymentIDAlias),
		Signature:    coalesce(req.Signature, req.SignatureAlias),
		Organization: coalesce(req.Organization, req.OrganizationAlias),
	}
	if claim.InquiryID == 0 {
		return response.BadRequest(c, "Inquiry ID is required")
	}

	result, err := h.svc.VerifyInquiryPayment(c.Context(), claim)
	if err != nil {
		return h.paymentError(c, err)
	}

	return response.SuccessWithMessage(c, result.Message, result)
}

// VerifyPaymentSimple handles POST /api/v1/inquiries/verify-payment-simple
func (h *InquiryHandler) VerifyPaymentSimple(c *fiber.Ctx) error {
	var req VerifySimpleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim := payments.InquiryLookupClaim{
		InquiryID:    coalesceUint(req.InquiryID, req.InquiryIDAlias),
		PaymentID:    coalesce(req.PaymentID, req.PaymentIDAlias),
		Organization: coalesce(req.Organization, req.OrganizationAlias),
	}
	if claim.InquiryID == 0 {
		return response.BadRequest(c, "Inquiry ID is required")
	}

	result, err := h.svc.VerifyInquiryPaymentSimple(c.Context(), claim)
	if err != nil {
		return h.paymentError(c, err)
	}

	return response.SuccessWithMessage(c, result.Message, result)
}

// ListInquiries handles GET /api/v1/inquiries (admin only)
func (h *InquiryHandler) ListInquiries(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	status := c.Query("status", "")
	paymentStatus := c.Query("payment_status", "")

	query := h.db.Model(&model.CourseInquiry{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count inquiries")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var inquiries []model.CourseInquiry
	if err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&inquiries).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch inquiries")
	}

	return response.Paginated(c, inquiries, pagination)
}

// UpdateStatusRequest updates an inquiry's administrative status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending contacted enrolled canceled"`
}

// UpdateStatus handles PATCH /api/v1/inquiries/:id/status (admin only)
func (h *InquiryHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var inquiry model.CourseInquiry
	if err := h.db.First(&inquiry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Inquiry not found")
		}
		return response.InternalServerError(c, "Failed to fetch inquiry")
	}

	inquiry.Status = req.Status
	if err := h.db.Save(&inquiry).Error; err != nil {
		return response.InternalServerError(c, "Failed to update inquiry")
	}

	return response.SuccessWithMessage(c, "Inquiry updated successfully", inquiry)
}

// paymentError maps engine errors to HTTP responses
func (h *InquiryHandler) paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payments.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, payments.ErrConflict):
		return response.Conflict(c, err.Error())
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
