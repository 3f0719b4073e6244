package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for contacts. Every
// query is scoped by the owning user id.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const contactColumns = `id, user_id, name, email, phone, date_of_birth, notes, created_at, updated_at`

func scanContact(row pgx.Row) (*Contact, error) {
	var (
		c         Contact
		dob       pgtype.Date
		notes     pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &dob, &notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: contact", httpx.ErrNotFound)
		}
		return nil, err
	}
	c.DateOfBirth = dob.Time
	if notes.Valid {
		c.Notes = &notes.String
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func collectContacts(rows pgx.Rows) ([]Contact, error) {
	defer rows.Close()
	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// Create persists a new contact and returns it with generated fields set.
func (r *Repository) Create(ctx context.Context, contact Contact) (*Contact, error) {
	query := fmt.Sprintf(`
		INSERT INTO contacts (user_id, name, email, phone, date_of_birth, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, contactColumns)
	notes := pgtype.Text{}
	if contact.Notes != nil {
		notes = pgtype.Text{String: *contact.Notes, Valid: true}
	}
	return scanContact(r.pool.QueryRow(ctx, query,
		contact.UserID, contact.Name, contact.Email, contact.Phone,
		pgtype.Date{Time: contact.DateOfBirth, Valid: true}, notes,
	))
}

// Get fetches a single contact owned by userID.
func (r *Repository) Get(ctx context.Context, userID, id int64) (*Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE user_id = $1 AND id = $2`, contactColumns)
	return scanContact(r.pool.QueryRow(ctx, query, userID, id))
}

// List returns a page of the owner's contacts ordered by name.
func (r *Repository) List(ctx context.Context, req ListContactsRequest) ([]Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE user_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`, contactColumns)
	rows, err := r.pool.Query(ctx, query, req.UserID, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// Update rewrites all mutable columns of a merged contact.
func (r *Repository) Update(ctx context.Context, contact Contact) (*Contact, error) {
	query := fmt.Sprintf(`
		UPDATE contacts
		SET name = $3, email = $4, phone = $5, date_of_birth = $6, notes = $7, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING %s
	`, contactColumns)
	notes := pgtype.Text{}
	if contact.Notes != nil {
		notes = pgtype.Text{String: *contact.Notes, Valid: true}
	}
	return scanContact(r.pool.QueryRow(ctx, query,
		contact.UserID, contact.ID, contact.Name, contact.Email, contact.Phone,
		pgtype.Date{Time: contact.DateOfBirth, Valid: true}, notes,
	))
}

// Delete removes a contact owned by userID.
func (r *Repository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: contact", httpx.ErrNotFound)
	}
	return nil
}

// Search performs a case-insensitive substring match on name, email and
// phone within the owner's contacts.
func (r *Repository) Search(ctx context.Context, userID int64, term string) ([]Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE user_id = $1
		  AND (name ILIKE $2 OR email ILIKE $2 OR phone ILIKE $2)
		ORDER BY name, id
	`, contactColumns)
	rows, err := r.pool.Query(ctx, query, userID, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// UpcomingBirthdays returns the owner's contacts whose birthday month/day
// falls inside the window, ignoring birth years.
func (r *Repository) UpcomingBirthdays(ctx context.Context, userID int64, w Window) ([]Contact, error) {
	var (
		query string
		args  []any
	)
	if w.SameMonth() {
		query = fmt.Sprintf(`
			SELECT %s FROM contacts
			WHERE user_id = $1
			  AND EXTRACT(MONTH FROM date_of_birth) = $2
			  AND EXTRACT(DAY FROM date_of_birth) BETWEEN $3 AND $4
			ORDER BY EXTRACT(MONTH FROM date_of_birth), EXTRACT(DAY FROM date_of_birth), id
		`, contactColumns)
		args = []any{userID, int(w.StartMonth), w.StartDay, w.EndDay}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM contacts
			WHERE user_id = $1
			  AND ((EXTRACT(MONTH FROM date_of_birth) = $2 AND EXTRACT(DAY FROM date_of_birth) >= $3)
			    OR (EXTRACT(MONTH FROM date_of_birth) = $4 AND EXTRACT(DAY FROM date_of_birth) <= $5))
			ORDER BY EXTRACT(MONTH FROM date_of_birth), EXTRACT(DAY FROM date_of_birth), id
		`, contactColumns)
		args = []any{userID, int(w.StartMonth), w.StartDay, int(w.EndMonth), w.EndDay}
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}
