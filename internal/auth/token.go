package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/boutique/internal/domain"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

const issuer = "boutique"

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer. secret must be at least MinSecretLength bytes.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth.NewIssuer: secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("auth.NewIssuer: ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the issuer reading time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	c := *i
	c.now = now
	return &c
}

// TTL returns how long issued tokens stay valid.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue returns a token for subject and its expiry.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth.Issuer.Issue: %w", err)
	}
	return token, exp, nil
}

// Verify checks the token signature, issuer and expiry and returns its
// subject. Every failure wraps domain.ErrUnauthorized.
func (i *Issuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Verify: %w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("auth.Issuer.Verify: %w: missing subject", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}
