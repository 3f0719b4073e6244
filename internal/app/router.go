package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contactdesk/contactdesk/internal/auth"
	"github.com/contactdesk/contactdesk/internal/contacts"
	"github.com/contactdesk/contactdesk/internal/observability"
	"github.com/contactdesk/contactdesk/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Pool            *pgxpool.Pool
	AuthHandler     *auth.Handler
	AuthMiddleware  auth.Middleware
	UsersHandler    *users.Handler
	ContactsHandler *contacts.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with ContactDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				if params.Logger != nil {
					params.Logger.Error("healthz db ping", slog.Any("error", err))
				}
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/users", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticator)
		params.UsersHandler.MountRoutes(r, params.AuthMiddleware.RequireRole(users.RoleAdmin))
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticator)
		params.ContactsHandler.MountRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
