package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// Mailer sends a single rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NotificationError wraps a failed delivery. It is logged and never returned to API callers.
type NotificationError struct {
	IssueID string
	Kind    EventKind
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s for issue %s: %v", e.Kind, e.IssueID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// DisabledMailer is used when no mail credentials are configured.
type DisabledMailer struct{}

func (DisabledMailer) Send(_ context.Context, msg Message) error {
	log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Mail transport not configured, skipping")
	return nil
}
