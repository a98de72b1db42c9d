package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingSender struct {
	calls int
	err   error
}

func (f *failingSender) SendInvitation(_ context.Context, _ InvitationEmail) error {
	f.calls++
	return f.err
}

func TestBreakerSenderOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingSender{err: errors.New("smtp down")}
	sender := NewBreakerSender(inner, zap.NewNop())

	ctx := context.Background()
	email := InvitationEmail{To: "dev@example.com"}

	for i := 0; i < 5; i++ {
		err := sender.SendInvitation(ctx, email)
		require.Error(t, err)
	}
	assert.Equal(t, 5, inner.calls)

	// The breaker is open now; the inner sender is no longer reached.
	err := sender.SendInvitation(ctx, email)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, inner.calls)
}

func TestBreakerSenderPassesThroughSuccess(t *testing.T) {
	inner := &failingSender{}
	sender := NewBreakerSender(inner, zap.NewNop())

	err := sender.SendInvitation(context.Background(), InvitationEmail{To: "dev@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}
