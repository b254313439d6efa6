package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// TokenTTL is the fixed validity window of a registration token.
const TokenTTL = 24 * time.Hour

// RegistrationToken is a single-use credential gating courier self-registration.
type RegistrationToken struct {
	ID        int64
	Token     string
	Used      bool
	UsedByID  *int64
	CreatedBy string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// ValidAt reports whether the token can still be consumed at the given moment.
func (t RegistrationToken) ValidAt(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// NewTokenString generates a high-entropy URL-safe token string (32 random bytes).
func NewTokenString() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
