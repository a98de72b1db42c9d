package notification

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSender wraps a Sender with a circuit breaker so that a misbehaving
// mail server fails fast instead of tying up request handlers.
type BreakerSender struct {
	inner   Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerSender wraps the given sender with a circuit breaker.
func NewBreakerSender(inner Sender, logger *zap.Logger) *BreakerSender {
	settings := gobreaker.Settings{
		Name:        "email-sender",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("email circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerSender{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// SendInvitation delivers through the breaker.
func (s *BreakerSender) SendInvitation(ctx context.Context, email InvitationEmail) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.inner.SendInvitation(ctx, email)
	})
	return err
}
