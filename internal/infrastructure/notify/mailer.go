// Package notify holds the notification senders used by the dispatcher:
// SMTP mail for the admin notice and visitor confirmation, and Kafka for
// lead lifecycle events.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/contactdesk/leadgate/internal/core/ports"
)

// SMTPConfig holds the outgoing mail settings.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
	// TLS requires STARTTLS when true; otherwise it is used when offered.
	TLS bool
}

// deliverer abstracts the SMTP client so rendering can be tested offline.
type deliverer interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer sends the admin notice and the visitor confirmation.
type Mailer struct {
	client     deliverer
	from       string
	adminEmail string
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.TLS {
		opts[1] = mail.WithTLSPolicy(mail.TLSMandatory)
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From, adminEmail: cfg.AdminEmail}, nil
}

// Send delivers an admin notice or a visitor confirmation.
func (m *Mailer) Send(ctx context.Context, n ports.Notification) error {
	msg, err := m.message(n)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", n.Kind, err)
	}
	return nil
}

func (m *Mailer) message(n ports.Notification) (*mail.Msg, error) {
	var (
		to      string
		content mailContent
		err     error
	)
	switch n.Kind {
	case ports.NotifyAdmin:
		if m.adminEmail == "" {
			return nil, fmt.Errorf("admin notice: no admin address configured")
		}
		to = m.adminEmail
		content, err = renderAdminNotice(n.Lead)
	case ports.NotifyVisitor:
		to = n.Lead.Email
		content, err = renderVisitorConfirmation(n.Lead)
	default:
		return nil, fmt.Errorf("mailer: unsupported notification kind %q", n.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", n.Kind, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(content.Subject)
	msg.SetBodyString(mail.TypeTextPlain, content.Body)
	return msg, nil
}
