package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

// Token scopes. The scope is part of the signed payload and Verify enforces
// it, so a reset token can never be replayed as an access token.
const (
	ScopeAccess        = "access"
	ScopeRefresh       = "refresh"
	ScopeEmailConfirm  = "email_confirm"
	ScopePasswordReset = "reset_password"
)

// Token verification failures. All wrap httpx.ErrUnauthorized so the wire
// response is a uniform 401; the distinction is kept for logs and tests.
var (
	ErrTokenExpired   = fmt.Errorf("%w: token expired", httpx.ErrUnauthorized)
	ErrTokenSignature = fmt.Errorf("%w: invalid token signature", httpx.ErrUnauthorized)
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", httpx.ErrUnauthorized)
	ErrTokenScope     = fmt.Errorf("%w: unexpected token scope", httpx.ErrUnauthorized)
)

// Claims carries the registered JWT claims plus the token scope.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"token_scope,omitempty"`
}

// TokenManager issues and verifies HMAC-SHA256 signed tokens. It is
// stateless; token validity is computed entirely from the signed payload.
type TokenManager struct {
	secret []byte
}

// NewTokenManager constructs a TokenManager. An empty secret is a
// configuration bug and is rejected so startup fails fast.
func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must be provided")
	}
	return &TokenManager{secret: []byte(secret)}, nil
}

// Issue signs a token binding the subject to an expiry instant and scope.
func (m *TokenManager) Issue(subject string, ttl time.Duration, scope string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	})
	return token.SignedString(m.secret)
}

// Verify parses and validates a token, enforcing the expected scope.
func (m *TokenManager) Verify(tokenString, wantScope string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Scope != wantScope {
		return nil, ErrTokenScope
	}
	return claims, nil
}
