package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service provides authentication business logic.
type Service struct {
	repo   Repository
	jwt    *JWTManager
	logger *zap.Logger
}

// NewService creates a new auth service.
func NewService(repo Repository, jwt *JWTManager, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		jwt:    jwt,
		logger: logger,
	}
}

// Register creates a new user account and issues an access token.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return s.issueToken(user)
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GetUser returns the user with the given ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) issueToken(user *User) (*TokenResponse, error) {
	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(),
	}, nil
}
