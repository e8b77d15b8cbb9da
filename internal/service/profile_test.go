package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/abdoir/affinity-server/internal/service"
	"github.com/abdoir/affinity-server/internal/storage/disk"
)

// pngHeader is enough of a PNG for content-type sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newTestProfileService(t *testing.T) (*service.ProfileService, *domain.User, domain.UserRepository) {
	t.Helper()
	db := newTestDB(t)

	files, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("disk.New: %v", err)
	}

	user := &domain.User{
		Username:     "profileuser",
		Email:        "profile@example.com",
		PasswordHash: "x",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	return service.NewProfileService(db.Users(), files), user, db.Users()
}

func strPtr(s string) *string { return &s }

func TestProfileService_UpdateProfile_PartialUpdate(t *testing.T) {
	profiles, user, _ := newTestProfileService(t)

	updated, err := profiles.UpdateProfile(context.Background(), user.ID, domain.ProfileUpdate{
		Bio: strPtr("researching binding affinity"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if updated.Bio != "researching binding affinity" {
		t.Fatalf("expected bio to change, got %q", updated.Bio)
	}
	if updated.Username != "profileuser" || updated.Email != "profile@example.com" {
		t.Fatal("absent fields must stay unchanged")
	}
}

func TestProfileService_UpdateProfile_NoFields(t *testing.T) {
	profiles, user, _ := newTestProfileService(t)

	_, err := profiles.UpdateProfile(context.Background(), user.ID, domain.ProfileUpdate{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileService_UpdateProfile_Validation(t *testing.T) {
	profiles, user, _ := newTestProfileService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		update domain.ProfileUpdate
	}{
		{"short username", domain.ProfileUpdate{Username: strPtr("ab")}},
		{"bad email", domain.ProfileUpdate{Email: strPtr("nope")}},
		{"long bio", domain.ProfileUpdate{Bio: strPtr(strings.Repeat("a", 201))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := profiles.UpdateProfile(ctx, user.ID, tt.update); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestProfileService_UpdateProfile_DuplicateEmail(t *testing.T) {
	profiles, user, users := newTestProfileService(t)
	ctx := context.Background()

	other := &domain.User{Username: "other", Email: "other@example.com", PasswordHash: "x"}
	if err := users.Create(ctx, other); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	_, err := profiles.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Email: strPtr("other@example.com")})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestProfileService_AvatarLifecycle(t *testing.T) {
	profiles, user, users := newTestProfileService(t)
	ctx := context.Background()

	filename, err := profiles.UploadAvatar(ctx, user.ID, "image/png", pngHeader)
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if !strings.HasSuffix(filename, ".png") {
		t.Fatalf("expected .png filename, got %q", filename)
	}

	stored, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ProfileImage == nil || *stored.ProfileImage != filename {
		t.Fatalf("expected profile image %q to be recorded", filename)
	}

	data, contentType, err := profiles.Avatar(ctx, filename)
	if err != nil {
		t.Fatalf("Avatar: %v", err)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Fatal("avatar bytes do not round-trip")
	}
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %s", contentType)
	}

	// A second upload replaces the first file.
	second, err := profiles.UploadAvatar(ctx, user.ID, "image/png", pngHeader)
	if err != nil {
		t.Fatalf("second UploadAvatar: %v", err)
	}
	if second == filename {
		t.Fatal("expected a fresh filename for the replacement")
	}
	if _, _, err := profiles.Avatar(ctx, filename); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected the old file to be gone, got %v", err)
	}

	if err := profiles.DeleteAvatar(ctx, user.ID); err != nil {
		t.Fatalf("DeleteAvatar: %v", err)
	}
	stored, err = users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ProfileImage != nil {
		t.Fatal("expected profile image reference to be cleared")
	}
}

func TestProfileService_UploadAvatar_RejectsNonImage(t *testing.T) {
	profiles, user, _ := newTestProfileService(t)

	_, err := profiles.UploadAvatar(context.Background(), user.ID, "application/pdf", []byte("%PDF-1.4"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileService_UploadAvatar_RejectsOversized(t *testing.T) {
	profiles, user, _ := newTestProfileService(t)

	big := make([]byte, (5<<20)+1)
	copy(big, pngHeader)
	_, err := profiles.UploadAvatar(context.Background(), user.ID, "image/png", big)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileService_DeleteAvatar_NoneSet(t *testing.T) {
	profiles, user, _ := newTestProfileService(t)

	err := profiles.DeleteAvatar(context.Background(), user.ID)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileService_Avatar_RejectsTraversal(t *testing.T) {
	profiles, _, _ := newTestProfileService(t)

	for _, name := range []string{"../secret.db", "a/b.png", ""} {
		if _, _, err := profiles.Avatar(context.Background(), name); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("filename %q: expected ErrNotFound, got %v", name, err)
		}
	}
}
