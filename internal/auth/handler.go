package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
	"github.com/contactdesk/contactdesk/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/refresh_token", h.refresh)
	r.Get("/confirmed_email/{token}", h.confirmEmail)
	r.Post("/request_email", h.requestEmail)
	r.Post("/reset_password_request", h.resetPasswordRequest)
	r.Post("/reset_password", h.resetPassword)
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=100"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	user, err := h.service.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, users.NewProfile(user))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	// OAuth2 password-grant style form body: username carries the email.
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid form body", httpx.ErrValidation))
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		httpx.RespondError(w, fmt.Errorf("%w: username and password required", httpx.ErrValidation))
		return
	}

	pair, err := h.service.Authenticate(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailNotConfirmed):
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "email not confirmed")
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidPassword):
			// One message for both so the endpoint does not reveal which
			// part of the credentials was wrong.
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		default:
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: refresh_token required", httpx.ErrValidation))
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) confirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	already, err := h.service.ConfirmEmail(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if already {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Email confirmed"})
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) requestEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: valid email required", httpx.ErrValidation))
		return
	}

	already, err := h.service.ResendConfirmation(r.Context(), req.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if already {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Check your email for confirmation."})
}

func (h *Handler) resetPasswordRequest(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: valid email required", httpx.ErrValidation))
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent"})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
