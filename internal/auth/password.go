// Package auth verifies the admin credentials and issues the signed session
// tokens that gate the admin API.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth.HashPassword: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Credentials is the single admin username/password pair.
type Credentials struct {
	username string
	hash     string
}

// NewCredentials builds the admin credentials. When passwordHash is empty the
// plain password is hashed once here so it never has to be kept around.
func NewCredentials(username, password, passwordHash string) (*Credentials, error) {
	if username == "" {
		return nil, errors.New("auth.NewCredentials: username is required")
	}
	hash := passwordHash
	if hash == "" {
		if password == "" {
			return nil, errors.New("auth.NewCredentials: a password or password hash is required")
		}
		var err error
		if hash, err = HashPassword(password); err != nil {
			return nil, err
		}
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("auth.NewCredentials: password hash: %w", err)
	}
	return &Credentials{username: username, hash: hash}, nil
}

// Username returns the admin username.
func (c *Credentials) Username() string { return c.username }

// Verify reports whether username and password match. The username is
// compared in constant time and the password check always runs.
func (c *Credentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := CheckPassword(password, c.hash)
	return userOK && passOK
}
