package email

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Config holds SMTP settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Sender sends transactional email over SMTP
type Sender struct {
	cfg Config
}

// NewSender creates an email sender
func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Enabled reports whether SMTP is configured
func (s *Sender) Enabled() bool {
	return s.cfg.Host != "" && s.cfg.From != ""
}

// Send sends a plain-text email to a single recipient
func (s *Sender) Send(to, subject, body string) error {
	if !s.Enabled() {
		log.Printf("email: SMTP not configured, skipping mail to %s (%s)", to, subject)
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := s.cfg.Host + ":" + s.cfg.Port
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendPasswordReset sends the password reset link
func (s *Sender) SendPasswordReset(to, name, resetURL string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n%s\n\nThe link expires in 1 hour. If you did not request this, you can ignore this email.\n",
		name, resetURL,
	)
	return s.Send(to, subject, body)
}

// SendVerification sends the email verification link
func (s *Sender) SendVerification(to, name, verifyURL string) error {
	subject := "Verify your email address"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome! Please confirm your email address by opening the link below:\n\n%s\n\nThe link expires in 24 hours.\n",
		name, verifyURL,
	)
	return s.Send(to, subject, body)
}

// SendEnrollmentConfirmation sends the post-purchase confirmation mail
func (s *Sender) SendEnrollmentConfirmation(to, name, courseTitle string) error {
	subject := fmt.Sprintf("Enrollment confirmed: %s", courseTitle)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment was received and you are now enrolled in %s.\nYou can access the course from your dashboard right away.\n\nHappy learning!\n",
		name, courseTitle,
	)
	return s.Send(to, subject, body)
}
