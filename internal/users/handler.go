package users

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

const maxAvatarBytes = 5 << 20

// Profile is the public representation of an account.
type Profile struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Avatar   *string `json:"avatar,omitempty"`
}

// NewProfile maps a user to its public representation.
func NewProfile(u *User) Profile {
	return Profile{ID: u.ID, Email: u.Email, FullName: u.FullName, Avatar: u.Avatar}
}

// Handler wires HTTP endpoints for account profiles.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers profile routes on the provided router. The router
// must already carry the bearer-auth middleware; requireAdmin additionally
// gates the avatar route.
func (h *Handler) MountRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/me", h.me)
	r.With(requireAdmin).Patch("/avatar", h.updateAvatar)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	current := FromContext(r.Context())
	if current == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	user, err := h.service.Me(r.Context(), current.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProfile(user))
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	current := FromContext(r.Context())
	if current == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid multipart payload", httpx.ErrValidation))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: file field required", httpx.ErrValidation))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		h.logger.Error("read avatar upload", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.UpdateAvatar(r.Context(), current.Email, data, header.Header.Get("Content-Type"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProfile(user))
}
