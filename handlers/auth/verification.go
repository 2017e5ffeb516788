package auth

import (
	"fmt"
	"time"

	"github.com/courseflow/api/model"
	"github.com/courseflow/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ResendVerificationRequest represents a verification mail resend request
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

const verificationTokenTTL = 24 * time.Hour

// issueVerificationToken creates a verification token for the user and mails
// the link. Called from Register and ResendVerification.
func (h *AuthHandler) issueVerificationToken(user *model.User) error {
	raw, hash := newUserToken()
	verification := model.EmailVerificationToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := h.db.Create(&verification).Error; err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/verify-email/%s", h.clientURL, raw)
	h.sendMail(func() error {
		return h.mailer.SendVerification(user.Email, user.Name, verifyURL)
	}, user.Email)

	return nil
}

// VerifyEmail handles GET /api/v1/auth/verify-email/:token
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	raw := c.Params("token")
	if raw == "" {
		return response.BadRequest(c, "Verification token is required")
	}

	var verification model.EmailVerificationToken
	if err := h.db.Where("token_hash = ?", hashToken(raw)).First(&verification).Error; err != nil {
		return response.BadRequest(c, "Invalid or expired verification token")
	}
	if verification.IsExpired() || verification.IsUsed() {
		return response.BadRequest(c, "Invalid or expired verification token")
	}

	if err := h.db.Model(&model.User{}).
		Where("id = ?", verification.UserID).
		Update("is_verified", true).Error; err != nil {
		return response.InternalServerError(c, "Failed to verify email")
	}

	verification.MarkAsUsed()
	h.db.Save(&verification)

	return response.SuccessWithMessage(c, "Email verified successfully", nil)
}

// ResendVerification handles POST /api/v1/auth/resend-verification. Like
// ForgotPassword, an unknown email gets the neutral response.
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req ResendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.Success(c, fiber.Map{
			"message": "Verification email sent if the account exists",
		})
	}

	if user.IsVerified {
		return response.BadRequest(c, "Email is already verified")
	}

	if err := h.issueVerificationToken(&user); err != nil {
		return response.InternalServerError(c, "Failed to create verification token")
	}

	return response.Success(c, fiber.Map{
		"message": "Verification email sent if the account exists",
	})
}
