package service

import (
	"context"
	"fmt"
	"strings"

	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// EmailMessage is a plain-text email to one or more recipients
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers a composed message through one provider
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type smtpMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPMailer(host string, port int, username, password, from, fromName string) Mailer {
	return &smtpMailer{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.from, m.fromName)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	logger.ExternalServiceCall("smtp", "send", "to", strings.Join(msg.To, ","), "subject", msg.Subject)
	err := m.dialer.DialAndSend(gm)
	logger.ExternalServiceResult("smtp", "send", err)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridMailer(apiKey, from, fromName string) Mailer {
	return &sendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, msg EmailMessage) error {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(m.fromName, m.from))
	message.Subject = msg.Subject

	personalization := mail.NewPersonalization()
	for _, to := range msg.To {
		personalization.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(personalization)
	message.AddContent(mail.NewContent("text/plain", msg.Body))

	logger.ExternalServiceCall("sendgrid", "send", "to", strings.Join(msg.To, ","), "subject", msg.Subject)
	response, err := m.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// logMailer writes messages to the log instead of sending them. Used in development.
type logMailer struct{}

func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(ctx context.Context, msg EmailMessage) error {
	logger.InfoContext(ctx, "Email (log provider)", "to", strings.Join(msg.To, ","), "subject", msg.Subject, "body", msg.Body)
	return nil
}

// NewMailerFromConfig picks the mailer named by the email provider setting
func NewMailerFromConfig(cfg *config.Config) Mailer {
	switch cfg.Email.Provider {
	case "smtp":
		return NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.Email.From, cfg.Email.FromName)
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGrid.APIKey, cfg.Email.From, cfg.Email.FromName)
	default:
		return NewLogMailer()
	}
}
