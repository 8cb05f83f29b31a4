package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"plume/internal/config"
	"plume/internal/middleware"
	"plume/internal/models"
	"plume/internal/observability"
)

// MailService sends transactional mail over SMTP. It is disabled (every send
// becomes a no-op) when the SMTP settings are incomplete, so local setups
// work without a relay.
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	admin    string
	enabled  bool

	// send is swapped out in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailService builds a mail service from the application config.
func NewMailService(cfg *config.Config) *MailService {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" && cfg.SMTPPassword != "" && cfg.SMTPFrom != ""
	if !enabled {
		middleware.Logger.Warn("MailService disabled: missing SMTP configuration")
	}

	return &MailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		admin:    cfg.AdminEmail,
		enabled:  enabled,
		send:     smtp.SendMail,
	}
}

func (s *MailService) sendAsync(to []string, subject, body string) {
	if !s.enabled || len(to) == 0 {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		addr := fmt.Sprintf("%s:%s", s.host, s.port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Plume <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.from, subject, mime, body))

		if err := s.send(addr, auth, s.from, to, msg); err != nil {
			observability.LogAsyncOperationError(context.Background(), "send email", err,
				map[string]interface{}{"to": strings.Join(to, ",")})
		}
	}()
}

// SendContactNotification alerts the site admin that a new contact message
// arrived.
func (s *MailService) SendContactNotification(contact *models.Contact) {
	if s.admin == "" {
		return
	}
	body := fmt.Sprintf(
		"<p><strong>%s</strong> (%s) wrote:</p><p>%s</p>",
		contact.Name, contact.Email, contact.Message,
	)
	subject := "New contact message"
	if contact.Subject != "" {
		subject = "New contact message: " + contact.Subject
	}
	s.sendAsync([]string{s.admin}, subject, body)
}

// SendWelcomeEmail greets a freshly registered user.
func (s *MailService) SendWelcomeEmail(email, username string) {
	body := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to Plume. Happy writing!</p>", username)
	s.sendAsync([]string{email}, "Welcome to Plume", body)
}
