package types

import "time"

// DefaultImage is the profile image reference given to new accounts.
const DefaultImage = "default.jpg"

// User represents an account in the system.
// It contains identity, profile asset references, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address. It is stored lower-cased and
	// is unique across accounts.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Image references the user's profile picture (a path or URL
	// produced by the asset storage backend).
	Image string `json:"image" db:"image"`

	// Resume references the user's uploaded resume document. It is
	// empty until a resume has been uploaded.
	Resume string `json:"resume" db:"resume"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"date" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserUpdate is a partial update of a user record. Nil fields are left unchanged.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Image        *string
	Resume       *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.PasswordHash == nil && u.Image == nil && u.Resume == nil
}
