package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearthledger/hearthledger/internal/auth"
	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/storage"
)

// AuthService wires the authenticator and token manager together for
// the API layer.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

// Register creates a new user account and returns it with a session
// token.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*models.User, string, error) {
	if email == "" || displayName == "" {
		return nil, "", auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		slog.Warn("Registration failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns it with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}

// CurrentUser fetches the full user record for an authenticated ID.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	return user, nil
}
