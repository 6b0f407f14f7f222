// Package auth implements registration, login, and cookie-session
// authentication on top of the store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/calloway/vellum/internal/apperr"
	"github.com/calloway/vellum/internal/store"
)

// Service manages user accounts and sessions.
type Service struct {
	db  *store.DB
	ttl time.Duration
}

// NewService creates an auth service issuing sessions with the given TTL.
func NewService(db *store.DB, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{db: db, ttl: ttl}
}

// Register creates a user account and logs it in, returning the user and a
// fresh session token. A taken username or email yields
// apperr.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, username, email, password, firstName, lastName string) (*store.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hash password: %w", err)
	}
	u := &store.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.db.CreateUser(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns the user and a fresh session token.
// An unknown username or wrong password yields apperr.ErrUnauthenticated.
func (s *Service) Login(ctx context.Context, username, password string) (*store.User, string, error) {
	u, err := s.db.GetUserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.ErrUnauthenticated
	}
	token, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout invalidates a session token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.db.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user. Expired or unknown
// tokens yield apperr.ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (*store.User, error) {
	u, err := s.db.SessionUser(ctx, token)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// TTL returns the session lifetime, for cookie expiry.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

func (s *Service) issueSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.db.CreateSession(ctx, token, userID, time.Now().Add(s.ttl)); err != nil {
		return "", err
	}
	return token, nil
}
