package service

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/lunara-app/backend/config"
	"github.com/lunara-app/backend/internal/models"
)

// EmailService sends transactional mail over SMTP. When SMTP is not
// configured the mail is logged instead, which keeps local development
// working without a relay.
type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	logger       *zap.Logger
}

func NewEmailService(cfg *config.Config, logger *zap.Logger) *EmailService {
	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		logger:       logger,
	}
}

func (s *EmailService) SendVerificationEmail(user *models.User, token string) error {
	subject := "Verify your Lunara email address"
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease confirm your email address by entering this code in the app:\n\n%s\n\nThe code expires in 48 hours.\n",
		user.Name, token)
	return s.Send(user.Email, subject, body)
}

func (s *EmailService) Send(to, subject, body string) error {
	if s.smtpHost == "" {
		s.logger.Info("smtp not configured, logging email",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.fromEmail, to, subject, body)

	addr := s.smtpHost + ":" + s.smtpPort
	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
