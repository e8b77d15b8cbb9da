package domain

import (
	"context"
	"time"
)

// User is an account in the credential store. PasswordHash is write-only
// from the API's perspective; no response path ever serializes it.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Bio          string
	ProfileImage *string // stored avatar filename, nil when absent
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileUpdate carries the optional fields of a profile update request.
// Nil pointers leave the corresponding column untouched.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Bio      *string
}

// UserRepository defines persistence operations for users. Uniqueness of
// username and email is enforced by the store's UNIQUE constraints;
// implementations translate violations into ErrDuplicateUsername and
// ErrDuplicateEmail rather than pre-checking.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) error
	SetProfileImage(ctx context.Context, id int64, filename *string) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	Delete(ctx context.Context, id int64) error
}
