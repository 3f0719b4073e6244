package contacts

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
	"github.com/contactdesk/contactdesk/internal/users"
)

// Handler wires HTTP endpoints for the contacts module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: validator.New()}
}

// MountRoutes registers contact routes; the router must already carry the
// bearer-auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/search/", h.search)
	r.Get("/birthdays/", h.birthdays)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

func currentUserID(r *http.Request, w http.ResponseWriter) (int64, bool) {
	user := users.FromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return 0, false
	}
	return user.ID, true
}

func contactID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id must be a positive integer", httpx.ErrValidation)
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, w)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	contacts, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contactsOrEmpty(contacts))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, w)
	if !ok {
		return
	}
	var req CreateContactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	contact, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, contact)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, w)
	if !ok {
		return
	}
	id, err := contactID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	contact, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, w)
	if !ok {
		return
	}
	id, err := contactID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateContactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	contact, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, w)
	if !ok {
		return
	}
	id, err := contactID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, w)
	if !ok {
		return
	}
	contacts, err := h.service.Search(r.Context(), userID, r.URL.Query().Get("query"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contactsOrEmpty(contacts))
}

func (h *Handler) birthdays(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r, w)
	if !ok {
		return
	}
	contacts, err := h.service.UpcomingBirthdays(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contactsOrEmpty(contacts))
}

// contactsOrEmpty keeps empty results rendering as [] instead of null.
func contactsOrEmpty(contacts []Contact) []Contact {
	if contacts == nil {
		return []Contact{}
	}
	return contacts
}
