package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSender stops calling the wrapped sender after repeated failures so a
// dead mail server fails requests fast instead of holding them for the full
// send timeout.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSender(next Sender, maxFailures uint32, openFor time.Duration) *BreakerSender {
	st := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerSender{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerSender) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Send(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

func (b *BreakerSender) State() gobreaker.State {
	return b.cb.State()
}
