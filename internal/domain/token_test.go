package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kuryer-manager/internal/domain"
)

func TestRegistrationToken_ValidAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tok := domain.RegistrationToken{ExpiresAt: now.Add(domain.TokenTTL)}

	require.True(t, tok.ValidAt(now))
	require.True(t, tok.ValidAt(now.Add(domain.TokenTTL-time.Second)))
	require.False(t, tok.ValidAt(now.Add(domain.TokenTTL)))

	tok.Used = true
	require.False(t, tok.ValidAt(now))
}

func TestNewTokenString(t *testing.T) {
	t.Parallel()

	a := domain.NewTokenString()
	b := domain.NewTokenString()
	require.NotEqual(t, a, b)
	require.NotContains(t, a, "/")
	require.NotContains(t, a, "+")
	require.NotContains(t, a, "=")
	require.GreaterOrEqual(t, len(a), 40)
}
