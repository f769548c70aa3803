package service

import (
	"context"
	"log/slog"
	"time"

	"portfolio-api/internal/event"
	"portfolio-api/internal/mail"
)

// WelcomeMailer sends the welcome email for every user.registered event.
// Failures are logged and never reach the registering request.
type WelcomeMailer struct {
	mailer      mail.Sender
	frontendURL string
	timeout     time.Duration
}

func NewWelcomeMailer(mailer mail.Sender, frontendURL string, timeout time.Duration) *WelcomeMailer {
	return &WelcomeMailer{mailer: mailer, frontendURL: frontendURL, timeout: timeout}
}

// Run consumes events until the channel is closed.
func (w *WelcomeMailer) Run(events <-chan event.Event) {
	for e := range events {
		if e.Type != event.TypeUserRegistered {
			continue
		}
		payload, ok := e.Payload.(event.UserRegistered)
		if !ok {
			continue
		}
		w.send(payload)
	}
}

func (w *WelcomeMailer) send(u event.UserRegistered) {
	msg, err := mail.WelcomeMessage(u.Email, u.Name, w.frontendURL)
	if err != nil {
		slog.Error("render welcome email", "user_id", u.UserID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.mailer.Send(ctx, msg); err != nil {
		slog.Warn("welcome email failed", "user_id", u.UserID, "error", err)
	}
}
