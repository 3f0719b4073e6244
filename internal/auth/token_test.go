package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

func TestNewTokenManagerRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenManager("")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tm, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	token, err := tm.Issue("alice@example.com", time.Hour, ScopeAccess)
	require.NoError(t, err)

	claims, err := tm.Verify(token, ScopeAccess)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
	require.Equal(t, ScopeAccess, claims.Scope)
	require.NotEmpty(t, claims.ID)
}

func TestTokenExpired(t *testing.T) {
	tm, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	token, err := tm.Issue("alice@example.com", -time.Minute, ScopeAccess)
	require.NoError(t, err)

	_, err = tm.Verify(token, ScopeAccess)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestTokenZeroTTLIsExpired(t *testing.T) {
	tm, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	token, err := tm.Issue("alice@example.com", 0, ScopeAccess)
	require.NoError(t, err)

	_, err = tm.Verify(token, ScopeAccess)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("issuer-secret")
	require.NoError(t, err)
	verifier, err := NewTokenManager("other-secret")
	require.NoError(t, err)

	token, err := issuer.Issue("alice@example.com", time.Hour, ScopeAccess)
	require.NoError(t, err)

	_, err = verifier.Verify(token, ScopeAccess)
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenMalformed(t *testing.T) {
	tm, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		_, err = tm.Verify(bad, ScopeAccess)
		require.ErrorIs(t, err, ErrTokenMalformed)
	}
}

func TestTokenScopeEnforced(t *testing.T) {
	tm, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	reset, err := tm.Issue("alice@example.com", time.Hour, ScopePasswordReset)
	require.NoError(t, err)

	// A reset token must never be usable as a session credential.
	_, err = tm.Verify(reset, ScopeAccess)
	require.ErrorIs(t, err, ErrTokenScope)
	require.True(t, errors.Is(err, httpx.ErrUnauthorized))

	claims, err := tm.Verify(reset, ScopePasswordReset)
	require.NoError(t, err)
	require.Equal(t, ScopePasswordReset, claims.Scope)
}
