package domain

import "context"

// Column describes one column of a browsable table.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
}

// ExecResult reports the outcome of a raw statement. Rows is populated for
// SELECT statements, the counters for everything else.
type ExecResult struct {
	Rows         []map[string]any `json:"result,omitempty"`
	RowsAffected int64            `json:"changes"`
	LastInsertID int64            `json:"last_insert_id,omitempty"`
}

// Browser exposes schema introspection and generic row access for the admin
// database browser. Implementations interpolate identifiers only after the
// caller has validated them against Tables/Columns; values always travel
// through placeholders.
type Browser interface {
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]Column, error)
	Rows(ctx context.Context, table string, limit, offset int) ([]map[string]any, int64, error)
	Select(ctx context.Context, query string, params []any) ([]map[string]any, error)
	Insert(ctx context.Context, table string, data map[string]any) (int64, error)
	Update(ctx context.Context, table string, id string, data map[string]any) (int64, error)
	DeleteRow(ctx context.Context, table string, id string) (int64, error)
	Exec(ctx context.Context, stmt string, params []any) (*ExecResult, error)
	DeleteAll(ctx context.Context, table string) (int64, error)
}
