package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/google/uuid"
)

const (
	maxAvatarSize = 5 << 20 // 5 MiB
	maxBioLength  = 200

	avatarPrefix = "profiles/"
)

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProfileService mutates the authenticated user's own record: profile
// fields and the avatar file lifecycle.
type ProfileService struct {
	users domain.UserRepository
	files domain.FileStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users domain.UserRepository, files domain.FileStore) *ProfileService {
	return &ProfileService{users: users, files: files}
}

// UpdateProfile applies any subset of username/email/bio to the user's
// record. Absent fields stay unchanged; collisions with another user's
// username or email surface as duplicate errors from the store.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Username == nil && update.Email == nil && update.Bio == nil {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}

	var problems []string
	if update.Username != nil {
		trimmed := strings.TrimSpace(*update.Username)
		if len(trimmed) < 3 {
			problems = append(problems, "username must be at least 3 characters")
		} else {
			update.Username = &trimmed
		}
	}
	if update.Email != nil && !validEmail(*update.Email) {
		problems = append(problems, "a valid email is required")
	}
	if update.Bio != nil && len(*update.Bio) > maxBioLength {
		problems = append(problems, fmt.Sprintf("bio must be %d characters or less", maxBioLength))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}

	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return s.users.GetByID(ctx, userID)
}

// UploadAvatar stores a new avatar and points the user's record at it. The
// previous file, if any, is removed first; a user holds at most one avatar
// file at a time.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID int64, contentType string, data []byte) (string, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: only image uploads are accepted, got %s", domain.ErrInvalidInput, contentType)
	}
	if len(data) > maxAvatarSize {
		return "", fmt.Errorf("%w: image exceeds the 5MiB limit", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	// Best-effort removal of the old file; a leftover blob is preferable to
	// failing the upload.
	if user.ProfileImage != nil {
		s.files.Delete(ctx, avatarPrefix+*user.ProfileImage)
	}

	filename := uuid.NewString() + ext
	if err := s.files.Save(ctx, avatarPrefix+filename, data, contentType); err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}

	if err := s.users.SetProfileImage(ctx, userID, &filename); err != nil {
		s.files.Delete(ctx, avatarPrefix+filename)
		return "", fmt.Errorf("set profile image: %w", err)
	}

	return filename, nil
}

// DeleteAvatar removes the user's avatar file and clears the reference.
func (s *ProfileService) DeleteAvatar(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user.ProfileImage == nil {
		return fmt.Errorf("%w: no profile image to delete", domain.ErrInvalidInput)
	}

	if err := s.files.Delete(ctx, avatarPrefix+*user.ProfileImage); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete avatar file: %w", err)
	}

	if err := s.users.SetProfileImage(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear profile image: %w", err)
	}
	return nil
}

// Avatar returns the stored avatar bytes and their content type for static
// serving under the public uploads path.
func (s *ProfileService) Avatar(ctx context.Context, filename string) ([]byte, string, error) {
	// Filenames are generated server-side; anything with a path separator
	// is not one of ours.
	if filename != path.Base(filename) || filename == "." || filename == "" {
		return nil, "", domain.ErrNotFound
	}

	data, err := s.files.Get(ctx, avatarPrefix+filename)
	if err != nil {
		return nil, "", err
	}
	return data, http.DetectContentType(data), nil
}
