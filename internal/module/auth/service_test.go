package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepository struct {
	users map[uuid.UUID]*User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[uuid.UUID]*User)}
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user *User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepository) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func newTestAuthService(t *testing.T) (*Service, *fakeUserRepository) {
	t.Helper()
	repo := newFakeUserRepository()
	jwt := NewJWTManager(&JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "scrumify"})
	return NewService(repo, jwt, zap.NewNop()), repo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		svc, repo := newTestAuthService(t)

		token, err := svc.Register(ctx, &RegisterRequest{
			Email:    "Dev@Example.com",
			Name:     "Dev",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, token.AccessToken)
		assert.Equal(t, "dev@example.com", token.User.Email)
		assert.Len(t, repo.users, 1)

		for _, user := range repo.users {
			assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, _ := newTestAuthService(t)

		_, err := svc.Register(ctx, &RegisterRequest{Email: "dev@example.com", Name: "Dev", Password: "hunter2hunter2"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &RegisterRequest{Email: "DEV@example.com", Name: "Dev 2", Password: "hunter2hunter2"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		svc, _ := newTestAuthService(t)

		_, err := svc.Register(ctx, &RegisterRequest{Email: "dev@example.com", Name: "Dev", Password: "hunter2hunter2"})
		require.NoError(t, err)

		token, err := svc.Login(ctx, &LoginRequest{Email: "dev@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		svc, _ := newTestAuthService(t)

		_, err := svc.Register(ctx, &RegisterRequest{Email: "dev@example.com", Name: "Dev", Password: "hunter2hunter2"})
		require.NoError(t, err)

		_, err = svc.Login(ctx, &LoginRequest{Email: "dev@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		svc, _ := newTestAuthService(t)

		_, err := svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "whatever12345"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
