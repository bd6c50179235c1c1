package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/pkordes/boutique/internal/domain"
)

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Recipient string
}

// Sender delivers a prepared message. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPNotifier emails every order to a fixed recipient.
type SMTPNotifier struct {
	sender    Sender
	from      string
	recipient string
}

// NewSMTPNotifier dials nothing up front; a connection is made per order.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("notify.NewSMTPNotifier: host is required")
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
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
		return nil, fmt.Errorf("notify.NewSMTPNotifier: %w", err)
	}
	return NewSMTPNotifierWithSender(client, cfg.From, cfg.Recipient), nil
}

// NewSMTPNotifierWithSender builds a notifier around an existing sender.
func NewSMTPNotifierWithSender(sender Sender, from, recipient string) *SMTPNotifier {
	return &SMTPNotifier{sender: sender, from: from, recipient: recipient}
}

// NotifyOrder renders and sends the order email.
func (n *SMTPNotifier) NotifyOrder(ctx context.Context, o domain.Order) error {
	msg, err := n.message(o)
	if err != nil {
		return fmt.Errorf("notify.SMTPNotifier.NotifyOrder: %w", err)
	}
	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify.SMTPNotifier.NotifyOrder: send: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(o domain.Order) (*mail.Msg, error) {
	body, err := RenderOrder(o)
	if err != nil {
		return nil, err
	}
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(n.recipient); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if err := msg.ReplyTo(o.Email); err != nil {
		return nil, fmt.Errorf("reply-to: %w", err)
	}
	msg.Subject(Subject(o))
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}
