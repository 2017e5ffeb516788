package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/courseflow/api/model"
	authutil "github.com/courseflow/api/utils/auth"
	"github.com/courseflow/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the new password; the token travels in the URL
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

const resetTokenTTL = 1 * time.Hour

// newUserToken generates a one-time token. The raw value goes into the
// email link; only the hash is stored.
func newUserToken() (raw, hash string) {
	raw = uuid.New().String()
	return raw, hashToken(raw)
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// sendMail fires a best-effort mail in the background. Token issue never
// fails because SMTP is down; the resend endpoints cover lost mail.
func (h *AuthHandler) sendMail(send func() error, to string) {
	if h.mailer == nil {
		return
	}
	go func() {
		if err := send(); err != nil {
			log.Printf("auth: mail to %s failed: %v", to, err)
		}
	}()
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response is
// identical whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	neutral := fiber.Map{
		"message": "If the email exists, a password reset link will be sent",
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.Success(c, neutral)
	}

	raw, hash := newUserToken()
	reset := model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return response.InternalServerError(c, "Failed to create reset token")
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", h.clientURL, raw)
	h.sendMail(func() error {
		return h.mailer.SendPasswordReset(user.Email, user.Name, resetURL)
	}, user.Email)

	return response.Success(c, neutral)
}

// VerifyResetToken handles GET /api/v1/auth/reset-password/:token/verify so
// the client can validate a link before showing the new-password form.
func (h *AuthHandler) VerifyResetToken(c *fiber.Ctx) error {
	reset, err := h.findResetToken(c.Params("token"))
	if err != nil {
		return response.BadRequest(c, "Invalid or expired reset token")
	}

	return response.Success(c, fiber.Map{"valid": true, "expires_at": reset.ExpiresAt})
}

// ResetPassword handles POST /api/v1/auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.NewPassword == "" {
		return response.BadRequest(c, "New password is required")
	}
	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	reset, err := h.findResetToken(c.Params("token"))
	if err != nil {
		return response.BadRequest(c, "Invalid or expired reset token")
	}

	var user model.User
	if err := h.db.First(&user, reset.UserID).Error; err != nil {
		return response.BadRequest(c, "User not found")
	}

	hashedPassword, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	// New password plus token-version bump: every outstanding session dies
	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"password_hash": hashedPassword,
		"token_version": user.TokenVersion + 1,
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	reset.MarkAsUsed()
	h.db.Save(reset)

	return response.SuccessWithMessage(c, "Password reset successfully", nil)
}

// findResetToken resolves a raw token from a reset link to a live, unused,
// unexpired token record.
func (h *AuthHandler) findResetToken(raw string) (*model.PasswordResetToken, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty token")
	}

	var reset model.PasswordResetToken
	if err := h.db.Where("token_hash = ?", hashToken(raw)).First(&reset).Error; err != nil {
		return nil, err
	}
	if reset.IsExpired() || reset.IsUsed() {
		return nil, fmt.Errorf("token no longer valid")
	}
	return &reset, nil
}
