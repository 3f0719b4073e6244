package auth

import (
	"fmt"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

// Login failure reasons. They stay distinct at the service level so callers
// and tests can tell them apart; the HTTP layer collapses invalid email and
// invalid password into one response to avoid user enumeration.
var (
	ErrInvalidEmail      = fmt.Errorf("%w: invalid email", httpx.ErrUnauthorized)
	ErrEmailNotConfirmed = fmt.Errorf("%w: email not confirmed", httpx.ErrUnauthorized)
	ErrInvalidPassword   = fmt.Errorf("%w: invalid password", httpx.ErrUnauthorized)
	ErrRefreshMismatch   = fmt.Errorf("%w: refresh token revoked", httpx.ErrUnauthorized)
)

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
