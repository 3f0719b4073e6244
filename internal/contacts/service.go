package contacts

import (
	"context"
	"fmt"
	"time"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

const (
	defaultListLimit = 10
	maxListLimit     = 500

	// birthdayWindowDays is the forward range of the upcoming-birthday query.
	birthdayWindowDays = 7
)

// RepositoryPort defines data access methods for contacts.
type RepositoryPort interface {
	Create(ctx context.Context, contact Contact) (*Contact, error)
	Get(ctx context.Context, userID, id int64) (*Contact, error)
	List(ctx context.Context, req ListContactsRequest) ([]Contact, error)
	Update(ctx context.Context, contact Contact) (*Contact, error)
	Delete(ctx context.Context, userID, id int64) error
	Search(ctx context.Context, userID int64, term string) ([]Contact, error)
	UpcomingBirthdays(ctx context.Context, userID int64, w Window) ([]Contact, error)
}

// Service handles contact business logic. now is injectable for the
// birthday-window tests.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new contact for the owner.
func (s *Service) Create(ctx context.Context, userID int64, req CreateContactRequest) (*Contact, error) {
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", httpx.ErrValidation)
	}
	contact := Contact{
		UserID:      userID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: dob,
		Notes:       req.Notes,
	}
	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return created, nil
}

// Get fetches one of the owner's contacts.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Contact, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a page of the owner's contacts.
func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Contact, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, ListContactsRequest{UserID: userID, Limit: limit, Offset: offset})
}

// Update merges the partial request into the stored contact and persists it.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateContactRequest) (*Contact, error) {
	existing, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := merge(existing, req); err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", httpx.ErrValidation)
	}
	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return updated, nil
}

// Delete removes one of the owner's contacts.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

// Search performs a case-insensitive substring search over name, email and
// phone. An empty result is not an error.
func (s *Service) Search(ctx context.Context, userID int64, term string) ([]Contact, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: query required", httpx.ErrValidation)
	}
	return s.repo.Search(ctx, userID, term)
}

// UpcomingBirthdays returns contacts whose birthday falls within the next
// seven days, month boundaries included.
func (s *Service) UpcomingBirthdays(ctx context.Context, userID int64) ([]Contact, error) {
	window := UpcomingWindow(s.now(), birthdayWindowDays)
	return s.repo.UpcomingBirthdays(ctx, userID, window)
}
