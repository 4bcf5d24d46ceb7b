package services

import (
	"fmt"
	"net/smtp"

	"github.com/avaldes/remarket-api/internal/config"
	"github.com/avaldes/remarket-api/internal/models"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

// SendListingModerated emails the seller the moderation outcome.
func (s *EmailService) SendListingModerated(to string, listing *models.Listing) error {
	var subject, verdict string
	switch listing.Status {
	case models.ListingStatusActive:
		subject = fmt.Sprintf("Your listing %q is now live", listing.Title)
		verdict = "approved your listing. It is now visible to buyers."
	case models.ListingStatusRejected:
		subject = fmt.Sprintf("Your listing %q was not approved", listing.Title)
		verdict = "rejected your listing. You can contact support for details."
	default:
		subject = fmt.Sprintf("Your listing %q is back in review", listing.Title)
		verdict = "returned your listing to the review queue."
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Listing Update</h2>
			<p>Hi,</p>
			<p>A moderator has %s</p>
			<p>Listing: <strong>%s</strong></p>
		</body>
		</html>
	`, verdict, listing.Title)

	return s.Send(to, subject, body)
}

// SendWelcome greets a just-registered account still awaiting activation.
func (s *EmailService) SendWelcome(to string) error {
	subject := "Welcome to ReMarket"
	body := `
		<html>
		<body>
			<h2>Welcome</h2>
			<p>Hi,</p>
			<p>Your account has been created and is awaiting activation by an administrator.
			You will be able to publish listings once it is activated.</p>
		</body>
		</html>
	`

	return s.Send(to, subject, body)
}
