package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/boutique/internal/domain"
)

// CredentialChecker verifies the admin username and password.
type CredentialChecker interface {
	Verify(username, password string) bool
}

// TokenIssuer issues and verifies session tokens.
type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// AuthService logs the admin in and checks session tokens.
type AuthService struct {
	creds  CredentialChecker
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(creds CredentialChecker, tokens TokenIssuer) *AuthService {
	return &AuthService{creds: creds, tokens: tokens}
}

// Login checks the credentials and issues a session.
// Wrong credentials return domain.ErrUnauthorized without saying which part was wrong.
func (s *AuthService) Login(_ context.Context, username, password string) (domain.Session, error) {
	if username == "" || password == "" || !s.creds.Verify(username, password) {
		return domain.Session{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	token, exp, err := s.tokens.Issue(username)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return domain.Session{Token: token, ExpiresAt: exp}, nil
}

// Authenticate returns the subject of a valid session token.
func (s *AuthService) Authenticate(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: missing session", domain.ErrUnauthorized)
	}
	return s.tokens.Verify(token)
}
