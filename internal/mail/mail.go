// Package mail delivers transactional email (welcome and password reset).
package mail

import (
	"context"
	"errors"
	"log/slog"
)

// ErrSendFailed wraps every delivery failure reported by a Sender.
var ErrSendFailed = errors.New("send email")

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is used when SMTP is not configured. It records the attempt and
// reports success.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Warn("email service not configured, skipping send",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
