package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abdoir/affinity-server/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AdminService implements admin-only user management. Self-protection (an
// admin can never delete or demote their own account) lives here, not in
// the store.
type AdminService struct {
	users      domain.UserRepository
	files      domain.FileStore
	bcryptCost int
}

// NewAdminService creates a new AdminService.
func NewAdminService(users domain.UserRepository, files domain.FileStore, bcryptCost int) *AdminService {
	return &AdminService{users: users, files: files, bcryptCost: bcryptCost}
}

// ListUsers returns all users, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// CreateUser creates an account with the same validation as registration,
// plus an explicit admin flag.
func (s *AdminService) CreateUser(ctx context.Context, username, email, password string, isAdmin bool) (*domain.User, error) {
	if err := ValidateCredentials(username, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the named admin account unless a user with that email
// already exists. It reports whether an account was created, so startup can
// call it unconditionally on every boot.
func (s *AdminService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	if _, err := s.CreateUser(ctx, username, email, password, true); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteUser removes another user's account and their avatar file. Deleting
// the acting admin's own account is always refused.
func (s *AdminService) DeleteUser(ctx context.Context, targetID, actingID int64) error {
	if targetID == actingID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if user.ProfileImage != nil {
		// Best effort; the row removal matters more than the file.
		s.files.Delete(ctx, avatarPrefix+*user.ProfileImage)
	}

	return s.users.Delete(ctx, targetID)
}

// SetAdminStatus flips another user's admin flag and returns the updated
// record. Modifying the acting admin's own status is always refused.
func (s *AdminService) SetAdminStatus(ctx context.Context, targetID, actingID int64, isAdmin bool) (*domain.User, error) {
	if targetID == actingID {
		return nil, fmt.Errorf("%w: cannot modify your own admin status", domain.ErrInvalidInput)
	}

	if err := s.users.SetAdmin(ctx, targetID, isAdmin); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, targetID)
}
