package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailService delivers one-time codes to a user's address. A nil error
// means the transport accepted the message for the recipient; flows only
// persist an issued code after acceptance.
type EmailService interface {
	SendVerificationCode(email, code string) error
	SendPasswordResetCode(email, code string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendVerificationCode(email, code string) error {
	if err := s.send(email, "Verification Code", codeBody(code, "#0d47a1", "#e3f2fd")); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetCode(email, code string) error {
	if err := s.send(email, "Password Reset Code", codeBody(code, "#27ae60", "#e8f8f0")); err != nil {
		return fmt.Errorf("failed to send password reset code: %w", err)
	}
	return nil
}

func (s *emailService) send(email, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func codeBody(code, color, background string) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; text-align: center; padding: 40px;">
			<div style="display: inline-block; font-size: 48px; font-weight: bold; color: %s;
				letter-spacing: 8px; background: %s; padding: 25px 40px; border-radius: 12px;">%s</div>
			<p>The code is valid for 5 minutes.</p>
		</div>`, color, background, code)
}
