package testutil

import (
	"context"
	"sync"

	"portfolio-api/internal/mail"
)

// Mailer records every message. When Err is set, Send fails with it and
// nothing is recorded.
type Mailer struct {
	mu       sync.Mutex
	messages []mail.Message
	Err      error
	// Block makes Send wait for the context to end.
	Block bool
}

func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	err, block := m.Err, m.Block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	return nil
}

func (m *Mailer) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

func (m *Mailer) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

// Last returns the most recent message, or false when none was sent.
func (m *Mailer) Last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return mail.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}
