package contacts

import "time"

// Contact is an address-book entry owned by exactly one user.
type Contact struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateContactRequest carries validated data for a new contact.
type CreateContactRequest struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required,max=20"`
	DateOfBirth string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// UpdateContactRequest carries a partial update; nil fields are untouched.
type UpdateContactRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=150"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// merge applies the request onto an existing contact field by field, so a
// payload can never touch columns outside this list.
func merge(c *Contact, req UpdateContactRequest) error {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return err
		}
		c.DateOfBirth = dob
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	return nil
}

// ListContactsRequest carries pagination for the owner-scoped listing.
type ListContactsRequest struct {
	UserID int64
	Limit  int
	Offset int
}
