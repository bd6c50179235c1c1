package domain

import "time"

// Session is a signed admin session token and its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
