package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdoir/affinity-server/internal/domain"
)

// ClearedTable reports the outcome of clearing one table.
type ClearedTable struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// BrowserService fronts the admin database browser. Every table or column
// identifier a caller supplies is validated against the live catalog before
// any SQL text is assembled; the raw execute and clear-all operations are
// additionally gated by configuration.
type BrowserService struct {
	browser     domain.Browser
	allowUnsafe bool
}

// NewBrowserService creates a new BrowserService.
func NewBrowserService(browser domain.Browser, allowUnsafe bool) *BrowserService {
	return &BrowserService{browser: browser, allowUnsafe: allowUnsafe}
}

// Tables lists all user tables in the store.
func (s *BrowserService) Tables(ctx context.Context) ([]string, error) {
	return s.browser.Tables(ctx)
}

// Schema describes the columns of a known table.
func (s *BrowserService) Schema(ctx context.Context, table string) ([]domain.Column, error) {
	if err := s.validateTable(ctx, table); err != nil {
		return nil, err
	}
	return s.browser.Columns(ctx, table)
}

// ListRows returns a page of rows plus the table's total row count.
func (s *BrowserService) ListRows(ctx context.Context, table string, limit, offset int) ([]map[string]any, int64, error) {
	if err := s.validateTable(ctx, table); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.browser.Rows(ctx, table, limit, offset)
}

// Query runs an ad-hoc read-only query. Anything that does not start with
// SELECT is refused.
func (s *BrowserService) Query(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return nil, fmt.Errorf("%w: only SELECT queries are allowed on this endpoint", domain.ErrInvalidInput)
	}
	return s.browser.Select(ctx, trimmed, params)
}

// InsertRow inserts a single row built from a column map.
func (s *BrowserService) InsertRow(ctx context.Context, table string, data map[string]any) (int64, error) {
	if err := s.validateColumns(ctx, table, data); err != nil {
		return 0, err
	}
	return s.browser.Insert(ctx, table, data)
}

// UpdateRow updates the row with the given id from a column map and returns
// the number of affected rows.
func (s *BrowserService) UpdateRow(ctx context.Context, table, id string, data map[string]any) (int64, error) {
	if err := s.validateColumns(ctx, table, data); err != nil {
		return 0, err
	}
	return s.browser.Update(ctx, table, id, data)
}

// DeleteRow deletes the row with the given id and returns the number of
// affected rows.
func (s *BrowserService) DeleteRow(ctx context.Context, table, id string) (int64, error) {
	if err := s.validateTable(ctx, table); err != nil {
		return 0, err
	}
	return s.browser.DeleteRow(ctx, table, id)
}

// Execute runs arbitrary SQL. Disabled unless unsafe operations were
// explicitly enabled at startup.
func (s *BrowserService) Execute(ctx context.Context, stmt string, params []any) (*domain.ExecResult, error) {
	if !s.allowUnsafe {
		return nil, fmt.Errorf("%w: unsafe database operations are disabled", domain.ErrForbidden)
	}
	if strings.TrimSpace(stmt) == "" {
		return nil, fmt.Errorf("%w: sql is required", domain.ErrInvalidInput)
	}
	return s.browser.Exec(ctx, stmt, params)
}

// ClearAll deletes every row from every user table, reporting the outcome
// per table. Disabled unless unsafe operations were explicitly enabled.
func (s *BrowserService) ClearAll(ctx context.Context) ([]ClearedTable, int64, error) {
	if !s.allowUnsafe {
		return nil, 0, fmt.Errorf("%w: unsafe database operations are disabled", domain.ErrForbidden)
	}

	tables, err := s.browser.Tables(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list tables: %w", err)
	}

	var total int64
	results := make([]ClearedTable, 0, len(tables))
	for _, table := range tables {
		deleted, err := s.browser.DeleteAll(ctx, table)
		if err != nil {
			results = append(results, ClearedTable{Table: table, Error: err.Error()})
			continue
		}
		total += deleted
		results = append(results, ClearedTable{Table: table, Deleted: deleted})
	}
	return results, total, nil
}

func (s *BrowserService) validateTable(ctx context.Context, table string) error {
	tables, err := s.browser.Tables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for _, t := range tables {
		if t == table {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown table %q", domain.ErrInvalidInput, table)
}

func (s *BrowserService) validateColumns(ctx context.Context, table string, data map[string]any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: data object is required", domain.ErrInvalidInput)
	}
	if err := s.validateTable(ctx, table); err != nil {
		return err
	}

	columns, err := s.browser.Columns(ctx, table)
	if err != nil {
		return fmt.Errorf("describe table: %w", err)
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c.Name] = true
	}
	for name := range data {
		if !known[name] {
			return fmt.Errorf("%w: unknown column %q in table %q", domain.ErrInvalidInput, name, table)
		}
	}
	return nil
}
