package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
	"github.com/contactdesk/contactdesk/internal/users"
)

// Repository defines persistence operations for the auth flows.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Create(ctx context.Context, user users.User) (int64, error)
	ConfirmEmail(ctx context.Context, email string) error
	ResetCredentials(ctx context.Context, email, passwordHash string) error
	UpdateRefreshToken(ctx context.Context, email string, token *string) error
}

// Dispatcher enqueues transactional email for background delivery. Failures
// are logged by the service, never surfaced to the originating request.
type Dispatcher interface {
	EnqueueConfirmationEmail(ctx context.Context, to, name, token string) error
	EnqueueResetEmail(ctx context.Context, to, name, token string) error
}

// ServiceConfig carries the token lifetimes.
type ServiceConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ConfirmTTL time.Duration
	ResetTTL   time.Duration
}

// Service wraps registration, login, confirmation and password-reset rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
	mail   Dispatcher
	cache  *users.Cache
	cfg    ServiceConfig
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager, mail Dispatcher, cache *users.Cache, cfg ServiceConfig, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, mail: mail, cache: cache, cfg: cfg, logger: logger}
}

// Signup registers a new unconfirmed account and queues the confirmation
// email. The role is always RoleUser; promotion is an operational step.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (*users.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := users.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         users.RoleUser,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	s.sendConfirmation(ctx, user.Email, user.FullName)
	return &user, nil
}

// Authenticate validates credentials and issues a token pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if !user.Confirmed {
		return nil, ErrEmailNotConfirmed
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}
	return s.issuePair(ctx, user.Email)
}

// Refresh rotates the token pair when the presented refresh token matches
// the one stored for the account.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, ScopeRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrRefreshMismatch
		}
		return nil, err
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrRefreshMismatch
	}
	return s.issuePair(ctx, user.Email)
}

// ConfirmEmail activates the account referenced by a confirmation token.
// It reports whether the account was already confirmed.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	claims, err := s.tokens.Verify(token, ScopeEmailConfirm)
	if err != nil {
		return false, err
	}
	user, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, fmt.Errorf("%w: verification error", httpx.ErrValidation)
		}
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	if err := s.repo.ConfirmEmail(ctx, user.Email); err != nil {
		return false, err
	}
	s.invalidate(ctx, user.Email)
	return false, nil
}

// ResendConfirmation re-sends the confirmation email. Unknown addresses are
// silently accepted so the endpoint does not reveal account existence.
func (s *Service) ResendConfirmation(ctx context.Context, email string) (alreadyConfirmed bool, err error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	s.sendConfirmation(ctx, user.Email, user.FullName)
	return false, nil
}

// RequestPasswordReset queues a reset email holding a reset-scoped token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(user.Email, s.cfg.ResetTTL, ScopePasswordReset)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.mail.EnqueueResetEmail(ctx, user.Email, user.FullName, token); err != nil {
		s.logger.Error("enqueue reset email", slog.String("email", user.Email), slog.Any("error", err))
	}
	return nil
}

// ResetPassword replaces the password for the subject of a valid reset
// token. The repository revokes any outstanding refresh token in the same
// transaction.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token, ScopePasswordReset)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.ResetCredentials(ctx, claims.Subject, hash); err != nil {
		return err
	}
	s.invalidate(ctx, claims.Subject)
	return nil
}

func (s *Service) issuePair(ctx context.Context, email string) (*TokenPair, error) {
	access, err := s.tokens.Issue(email, s.cfg.AccessTTL, ScopeAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(email, s.cfg.RefreshTTL, ScopeRefresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.repo.UpdateRefreshToken(ctx, email, &refresh); err != nil {
		return nil, err
	}
	s.invalidate(ctx, email)
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *Service) sendConfirmation(ctx context.Context, email, name string) {
	token, err := s.tokens.Issue(email, s.cfg.ConfirmTTL, ScopeEmailConfirm)
	if err != nil {
		s.logger.Error("issue confirmation token", slog.String("email", email), slog.Any("error", err))
		return
	}
	if err := s.mail.EnqueueConfirmationEmail(ctx, email, name, token); err != nil {
		s.logger.Error("enqueue confirmation email", slog.String("email", email), slog.Any("error", err))
	}
}

func (s *Service) invalidate(ctx context.Context, email string) {
	if err := s.cache.Invalidate(ctx, email); err != nil {
		s.logger.Warn("invalidate user cache", slog.String("email", email), slog.Any("error", err))
	}
}
