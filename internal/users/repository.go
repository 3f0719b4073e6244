package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contactdesk/contactdesk/internal/platform/db"
	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, avatar, refresh_token, confirmed, role, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var (
		u            User
		avatar       pgtype.Text
		refreshToken pgtype.Text
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &avatar, &refreshToken, &u.Confirmed, &u.Role, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", httpx.ErrNotFound)
		}
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

// FindByEmail fetches a user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// Create persists a new account and returns its id.
func (r *Repository) Create(ctx context.Context, user User) (int64, error) {
	const query = `
		INSERT INTO users (email, password_hash, full_name, confirmed, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, user.Email, user.PasswordHash, user.FullName, user.Confirmed, user.Role).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%w: account already exists", httpx.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

// ConfirmEmail marks the account as confirmed.
func (r *Repository) ConfirmEmail(ctx context.Context, email string) error {
	return r.update(ctx, `UPDATE users SET confirmed = TRUE, updated_at = NOW() WHERE email = $1`, email)
}

// UpdateAvatar replaces the stored avatar URL.
func (r *Repository) UpdateAvatar(ctx context.Context, email, url string) error {
	return r.update(ctx, `UPDATE users SET avatar = $2, updated_at = NOW() WHERE email = $1`, email, url)
}

// ResetCredentials replaces the password hash and revokes the refresh token
// in one transaction, so a reset can never leave a live session behind.
func (r *Repository) ResetCredentials(ctx context.Context, email, passwordHash string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET password_hash = $2, refresh_token = NULL, updated_at = NOW()
			WHERE email = $1
		`, email, passwordHash)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: user", httpx.ErrNotFound)
		}
		return nil
	})
}

// UpdateRefreshToken stores the latest refresh token; nil clears it.
func (r *Repository) UpdateRefreshToken(ctx context.Context, email string, token *string) error {
	value := pgtype.Text{}
	if token != nil {
		value = pgtype.Text{String: *token, Valid: true}
	}
	return r.update(ctx, `UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE email = $1`, email, value)
}

func (r *Repository) update(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", httpx.ErrNotFound)
	}
	return nil
}
