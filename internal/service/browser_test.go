package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/abdoir/affinity-server/internal/service"
)

func newTestBrowserService(t *testing.T, allowUnsafe bool) *service.BrowserService {
	t.Helper()
	db := newTestDB(t)

	// Seed a couple of rows to browse.
	for _, u := range []*domain.User{
		{Username: "alice", Email: "alice@example.com", PasswordHash: "x"},
		{Username: "bob", Email: "bob@example.com", PasswordHash: "x"},
	} {
		if err := db.Users().Create(context.Background(), u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	return service.NewBrowserService(db.Browser(), allowUnsafe)
}

func TestBrowserService_Tables(t *testing.T) {
	browser := newTestBrowserService(t, false)

	tables, err := browser.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}

	found := false
	for _, table := range tables {
		if table == "users" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected users table, got %v", tables)
	}
}

func TestBrowserService_Schema(t *testing.T) {
	browser := newTestBrowserService(t, false)

	columns, err := browser.Schema(context.Background(), "users")
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}

	byName := map[string]domain.Column{}
	for _, c := range columns {
		byName[c.Name] = c
	}
	if !byName["id"].PrimaryKey {
		t.Fatal("expected id to be the primary key")
	}
	if !byName["email"].NotNull {
		t.Fatal("expected email to be NOT NULL")
	}
}

func TestBrowserService_Schema_UnknownTable(t *testing.T) {
	browser := newTestBrowserService(t, false)

	_, err := browser.Schema(context.Background(), "users; DROP TABLE users")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBrowserService_ListRows_Pagination(t *testing.T) {
	browser := newTestBrowserService(t, false)
	ctx := context.Background()

	rows, total, err := browser.ListRows(ctx, "users", 1, 0)
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row with limit 1, got %d", len(rows))
	}

	rows, _, err = browser.ListRows(ctx, "users", 0, 0)
	if err != nil {
		t.Fatalf("ListRows with defaults: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected default limit to return both rows, got %d", len(rows))
	}
}

func TestBrowserService_Query_SelectOnly(t *testing.T) {
	browser := newTestBrowserService(t, false)
	ctx := context.Background()

	rows, err := browser.Query(ctx, "SELECT username FROM users WHERE email = ?", []any{"alice@example.com"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 || rows[0]["username"] != "alice" {
		t.Fatalf("unexpected result: %v", rows)
	}

	for _, q := range []string{"", "DELETE FROM users", "update users set bio = 'x'"} {
		if _, err := browser.Query(ctx, q, nil); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("query %q: expected ErrInvalidInput, got %v", q, err)
		}
	}
}

func TestBrowserService_RowMutations(t *testing.T) {
	browser := newTestBrowserService(t, false)
	ctx := context.Background()

	id, err := browser.InsertRow(ctx, "users", map[string]any{
		"username":      "carol",
		"email":         "carol@example.com",
		"password_hash": "x",
		"created_at":    "2026-01-01 00:00:00",
		"updated_at":    "2026-01-01 00:00:00",
	})
	if err != nil {
		t.Fatalf("InsertRow: %v", err)
	}
	if id == 0 {
		t.Fatal("expected an insert id")
	}

	changes, err := browser.UpdateRow(ctx, "users", "1", map[string]any{"bio": "updated"})
	if err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if changes != 1 {
		t.Fatalf("expected 1 change, got %d", changes)
	}

	changes, err = browser.DeleteRow(ctx, "users", "1")
	if err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	if changes != 1 {
		t.Fatalf("expected 1 change, got %d", changes)
	}
}

func TestBrowserService_RowMutations_Validation(t *testing.T) {
	browser := newTestBrowserService(t, false)
	ctx := context.Background()

	if _, err := browser.InsertRow(ctx, "users", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty data: expected ErrInvalidInput, got %v", err)
	}
	if _, err := browser.InsertRow(ctx, "users", map[string]any{"nope": 1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown column: expected ErrInvalidInput, got %v", err)
	}
	if _, err := browser.UpdateRow(ctx, "missing", "1", map[string]any{"bio": "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown table: expected ErrInvalidInput, got %v", err)
	}
}

func TestBrowserService_Execute_GatedByDefault(t *testing.T) {
	browser := newTestBrowserService(t, false)
	ctx := context.Background()

	if _, err := browser.Execute(ctx, "DELETE FROM users", nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, _, err := browser.ClearAll(ctx); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestBrowserService_Execute_WhenEnabled(t *testing.T) {
	browser := newTestBrowserService(t, true)
	ctx := context.Background()

	result, err := browser.Execute(ctx, "UPDATE users SET bio = ?", []any{"bulk"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.RowsAffected != 2 {
		t.Fatalf("expected 2 rows affected, got %d", result.RowsAffected)
	}

	result, err = browser.Execute(ctx, "SELECT COUNT(*) AS n FROM users", nil)
	if err != nil {
		t.Fatalf("Execute select: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected one result row, got %d", len(result.Rows))
	}

	if _, err := browser.Execute(ctx, "   ", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank sql: expected ErrInvalidInput, got %v", err)
	}
}

func TestBrowserService_ClearAll_WhenEnabled(t *testing.T) {
	browser := newTestBrowserService(t, true)

	details, total, err := browser.ClearAll(context.Background())
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if total < 2 {
		t.Fatalf("expected at least the 2 seeded users deleted, got %d", total)
	}
	if len(details) == 0 {
		t.Fatal("expected per-table details")
	}
}
