package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
	"github.com/contactdesk/contactdesk/internal/users"
)

// UserLoader resolves the account behind a verified token subject.
// *users.Service satisfies it with a cache-backed lookup.
type UserLoader interface {
	Me(ctx context.Context, email string) (*users.User, error)
}

// Middleware wires bearer-token authentication for HTTP handlers.
type Middleware struct {
	Tokens *TokenManager
	Users  UserLoader
	Logger *slog.Logger
}

// Authenticator verifies the Authorization header, loads the account and
// stores it in the request context. Every failure is a uniform 401.
func (m Middleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "could not validate credentials")
			return
		}
		claims, err := m.Tokens.Verify(raw, ScopeAccess)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "could not validate credentials")
			return
		}
		user, err := m.Users.Me(r.Context(), claims.Subject)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(users.ContextWithUser(r.Context(), user)))
	})
}

// RequireRole rejects requests whose authenticated user does not hold the
// given role.
func (m Middleware) RequireRole(role users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := users.FromContext(r.Context())
			if user == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "could not validate credentials")
				return
			}
			if !user.Role.Valid() || user.Role != role {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient privileges")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
