// Package notify delivers out-of-band messages such as two-factor codes.
package notify

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/internal/logging"
	"github.com/MrEthical07/authservice/secret"
)

// ErrUndeliverable is returned when a message could not be handed off.
var ErrUndeliverable = errors.New("notification undeliverable")

// Notifier sends a message to recipient. The recipient address is wrapped
// so it never reaches logs by accident.
type Notifier interface {
	Send(ctx context.Context, recipient secret.String, subject, body string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, recipient secret.String, subject, body string) error

func (f Func) Send(ctx context.Context, recipient secret.String, subject, body string) error {
	return f(ctx, recipient, subject, body)
}

// LogNotifier writes messages to a logger instead of delivering them. It is
// meant for local development, where the log is the inbox.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	if log == nil {
		log = logging.Nop{}
	}
	return &LogNotifier{log: log.With("component", "notifier")}
}

func (n *LogNotifier) Send(ctx context.Context, recipient secret.String, subject, body string) error {
	if recipient.Empty() {
		return ErrUndeliverable
	}
	n.log.Info(ctx, "notification", "to", logRecipient(recipient), "subject", subject, "body", body)
	return nil
}

// logRecipient masks the local part of email-shaped recipients. Anything else
// stays redacted.
func logRecipient(recipient secret.String) any {
	if id, err := credential.ParseIdentity(recipient.Reveal()); err == nil {
		return id
	}
	return recipient
}
