package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/abdoir/affinity-server/internal/service"
	"github.com/abdoir/affinity-server/internal/storage/disk"
)

func newTestAdminService(t *testing.T) (*service.AdminService, domain.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	files, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("disk.New: %v", err)
	}
	return service.NewAdminService(db.Users(), files, 4), db.Users()
}

func TestAdminService_CreateUser_WithAdminFlag(t *testing.T) {
	admin, _ := newTestAdminService(t)

	user, err := admin.CreateUser(context.Background(), "opsadmin", "ops@example.com", "password123", true)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !user.IsAdmin {
		t.Fatal("expected admin flag to be set")
	}
}

func TestAdminService_CreateUser_Validation(t *testing.T) {
	admin, _ := newTestAdminService(t)

	_, err := admin.CreateUser(context.Background(), "x", "bad", "no", false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdminService_ListUsers_NewestFirst(t *testing.T) {
	admin, _ := newTestAdminService(t)
	ctx := context.Background()

	if _, err := admin.CreateUser(ctx, "first", "first@example.com", "password123", false); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := admin.CreateUser(ctx, "second", "second@example.com", "password123", false); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	users, err := admin.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestAdminService_DeleteUser(t *testing.T) {
	admin, users := newTestAdminService(t)
	ctx := context.Background()

	actor, err := admin.CreateUser(ctx, "actor", "actor@example.com", "password123", true)
	if err != nil {
		t.Fatalf("CreateUser actor: %v", err)
	}
	target, err := admin.CreateUser(ctx, "target", "target@example.com", "password123", false)
	if err != nil {
		t.Fatalf("CreateUser target: %v", err)
	}

	if err := admin.DeleteUser(ctx, target.ID, actor.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := users.GetByID(ctx, target.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected target gone, got %v", err)
	}
}

func TestAdminService_DeleteUser_SelfRefused(t *testing.T) {
	admin, _ := newTestAdminService(t)
	ctx := context.Background()

	actor, err := admin.CreateUser(ctx, "selfdel", "selfdel@example.com", "password123", true)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := admin.DeleteUser(ctx, actor.ID, actor.ID); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self-deletion, got %v", err)
	}
}

func TestAdminService_DeleteUser_Missing(t *testing.T) {
	admin, _ := newTestAdminService(t)

	if err := admin.DeleteUser(context.Background(), 9999, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminService_SetAdminStatus(t *testing.T) {
	admin, _ := newTestAdminService(t)
	ctx := context.Background()

	actor, err := admin.CreateUser(ctx, "granter", "granter@example.com", "password123", true)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	target, err := admin.CreateUser(ctx, "grantee", "grantee@example.com", "password123", false)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	updated, err := admin.SetAdminStatus(ctx, target.ID, actor.ID, true)
	if err != nil {
		t.Fatalf("SetAdminStatus: %v", err)
	}
	if !updated.IsAdmin {
		t.Fatal("expected grantee to be admin")
	}

	updated, err = admin.SetAdminStatus(ctx, target.ID, actor.ID, false)
	if err != nil {
		t.Fatalf("SetAdminStatus revoke: %v", err)
	}
	if updated.IsAdmin {
		t.Fatal("expected grantee to be demoted")
	}
}

func TestAdminService_EnsureAdmin_Idempotent(t *testing.T) {
	admin, users := newTestAdminService(t)
	ctx := context.Background()

	created, err := admin.EnsureAdmin(ctx, "boss", "boss@example.com", "password123")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the account")
	}

	// A second boot with the same settings must not create another row.
	created, err = admin.EnsureAdmin(ctx, "boss", "boss@example.com", "password123")
	if err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	if created {
		t.Fatal("expected second call to be a no-op")
	}

	all, err := users.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(all))
	}
	if !all[0].IsAdmin {
		t.Fatal("seeded account must be an admin")
	}
}

func TestAdminService_SetAdminStatus_SelfRefused(t *testing.T) {
	admin, _ := newTestAdminService(t)
	ctx := context.Background()

	actor, err := admin.CreateUser(ctx, "selfmod", "selfmod@example.com", "password123", true)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err = admin.SetAdminStatus(ctx, actor.ID, actor.ID, false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self-modification, got %v", err)
	}
}
