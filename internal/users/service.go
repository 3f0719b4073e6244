package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

// RepositoryPort defines data access methods needed by the service.
type RepositoryPort interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateAvatar(ctx context.Context, email, url string) error
}

// AvatarStore uploads avatar images and returns their public URL.
// Re-uploading the same key overwrites the previous image.
type AvatarStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service handles account profile logic.
type Service struct {
	repo    RepositoryPort
	avatars AvatarStore
	cache   *Cache
	logger  *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, avatars AvatarStore, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, avatars: avatars, cache: cache, logger: logger}
}

// Me returns the account for the given email, served from cache when warm.
func (s *Service) Me(ctx context.Context, email string) (*User, error) {
	return s.cache.Fetch(ctx, email, func(ctx context.Context) (*User, error) {
		return s.repo.FindByEmail(ctx, email)
	})
}

// UpdateAvatar uploads a new avatar image and persists its URL. Only admin
// accounts may change their avatar; the cached user entry is invalidated so
// the next request observes the new URL.
func (s *Service) UpdateAvatar(ctx context.Context, email string, data []byte, contentType string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case RoleAdmin:
	case RoleUser:
		return nil, fmt.Errorf("%w: insufficient privileges", httpx.ErrForbidden)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrForbidden, user.Role)
	}

	url, err := s.avatars.Upload(ctx, fmt.Sprintf("avatars/%d", user.ID), data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	if err := s.repo.UpdateAvatar(ctx, email, url); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, email); err != nil && s.logger != nil {
		s.logger.Warn("invalidate user cache", slog.String("email", email), slog.Any("error", err))
	}

	user.Avatar = &url
	return user, nil
}
