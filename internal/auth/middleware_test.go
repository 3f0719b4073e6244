package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
	"github.com/contactdesk/contactdesk/internal/users"
)

type staticUserLoader struct {
	user *users.User
}

func (l staticUserLoader) Me(ctx context.Context, email string) (*users.User, error) {
	if l.user == nil || l.user.Email != email {
		return nil, fmt.Errorf("%w: user %s", httpx.ErrNotFound, email)
	}
	return l.user, nil
}

func okHandler(captured **users.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = users.FromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator(t *testing.T) {
	tm, err := NewTokenManager("unit-test-secret")
	require.NoError(t, err)

	account := &users.User{ID: 1, Email: "alice@example.com", Role: users.RoleUser, Confirmed: true}
	mw := Middleware{Tokens: tm, Users: staticUserLoader{user: account}}

	var seen *users.User
	handler := mw.Authenticator(okHandler(&seen))

	access, err := tm.Issue("alice@example.com", time.Hour, ScopeAccess)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid bearer token", "Bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong prefix", "Token " + access, http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				require.NotNil(t, seen)
				require.Equal(t, account.Email, seen.Email)
			} else {
				require.Nil(t, seen)
				require.Contains(t, rec.Body.String(), "could not validate credentials")
			}
		})
	}
}

func TestAuthenticatorRejectsNonAccessScopes(t *testing.T) {
	tm, err := NewTokenManager("unit-test-secret")
	require.NoError(t, err)

	account := &users.User{ID: 1, Email: "alice@example.com", Role: users.RoleUser}
	mw := Middleware{Tokens: tm, Users: staticUserLoader{user: account}}
	handler := mw.Authenticator(okHandler(nil))

	for _, scope := range []string{ScopeRefresh, ScopeEmailConfirm, ScopePasswordReset} {
		token, err := tm.Issue("alice@example.com", time.Hour, scope)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "scope %s must not grant access", scope)
	}
}

func TestAuthenticatorUnknownSubject(t *testing.T) {
	tm, err := NewTokenManager("unit-test-secret")
	require.NoError(t, err)

	mw := Middleware{Tokens: tm, Users: staticUserLoader{}}
	handler := mw.Authenticator(okHandler(nil))

	token, err := tm.Issue("deleted@example.com", time.Hour, ScopeAccess)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(users.RoleAdmin)(okHandler(nil))

	serve := func(user *users.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/users/avatar", nil)
		if user != nil {
			req = req.WithContext(users.ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusUnauthorized, serve(nil).Code)
	require.Equal(t, http.StatusForbidden, serve(&users.User{Role: users.RoleUser}).Code)
	require.Equal(t, http.StatusForbidden, serve(&users.User{Role: users.Role("superuser")}).Code)
	require.Equal(t, http.StatusOK, serve(&users.User{Role: users.RoleAdmin}).Code)
}
