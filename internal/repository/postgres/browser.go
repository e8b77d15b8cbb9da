package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/abdoir/affinity-server/internal/domain"
)

// Browser implements domain.Browser by introspecting the pg_catalog and
// information_schema views. Identifiers are quoted before interpolation
// and callers validate them against Tables/Columns first.
type Browser struct {
	db *sqlx.DB
}

func NewBrowser(db *DB) *Browser {
	return &Browser{db: db.Sqlx}
}

func (b *Browser) Tables(ctx context.Context) ([]string, error) {
	var tables []string
	err := b.db.SelectContext(ctx, &tables, `
		SELECT tablename FROM pg_catalog.pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
		ORDER BY tablename`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

func (b *Browser) Columns(ctx context.Context, table string) ([]domain.Column, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable = 'NO',
		       EXISTS (
		           SELECT 1
		           FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage kcu
		             ON kcu.constraint_name = tc.constraint_name
		            AND kcu.table_schema = tc.table_schema
		           WHERE tc.constraint_type = 'PRIMARY KEY'
		             AND tc.table_schema = 'public'
		             AND tc.table_name = c.table_name
		             AND kcu.column_name = c.column_name
		       )
		FROM information_schema.columns c
		WHERE c.table_schema = 'public' AND c.table_name = $1
		ORDER BY c.ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	columns := []domain.Column{}
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.Name, &col.Type, &col.NotNull, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (b *Browser) Rows(ctx context.Context, table string, limit, offset int) ([]map[string]any, int64, error) {
	var total int64
	err := b.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count rows: %w", err)
	}

	rows, err := b.db.QueryxContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT $1 OFFSET $2", quoteIdent(table)),
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select rows: %w", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (b *Browser) Select(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	rows, err := b.db.QueryxContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func (b *Browser) Insert(ctx context.Context, table string, data map[string]any) (int64, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = quoteIdent(k)
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = data[k]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))

	// RETURNING id reports the new row's id for serial tables. Scanning
	// into any cannot fail on non-integer ids, so a scan result never
	// triggers a second insert; only a statement that did not execute at
	// all (no id column) falls through to the plain insert.
	var raw any
	err := b.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&raw)
	if err == nil {
		if id, ok := raw.(int64); ok {
			return id, nil
		}
		return 0, nil
	}
	if !isUndefinedColumn(err) {
		return 0, err
	}

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}
	return 0, nil
}

// isUndefinedColumn reports a 42703 undefined_column error, the only case
// where the RETURNING insert is known not to have run.
func isUndefinedColumn(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42703"
}

func (b *Browser) Update(ctx context.Context, table, id string, data map[string]any) (int64, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		args = append(args, data[k])
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdent(k), len(args))
	}
	args = append(args, id)

	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
			quoteIdent(table), strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *Browser) DeleteRow(ctx context.Context, table, id string) (int64, error) {
	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", quoteIdent(table)), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *Browser) Exec(ctx context.Context, stmt string, params []any) (*domain.ExecResult, error) {
	trimmed := strings.TrimSpace(strings.ToUpper(stmt))
	if strings.HasPrefix(trimmed, "SELECT") {
		rows, err := b.Select(ctx, stmt, params)
		if err != nil {
			return nil, err
		}
		return &domain.ExecResult{Rows: rows}, nil
	}

	res, err := b.db.ExecContext(ctx, stmt, params...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	return &domain.ExecResult{RowsAffected: affected}, nil
}

func (b *Browser) DeleteAll(ctx context.Context, table string) (int64, error) {
	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s", quoteIdent(table)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func scanRows(rows *sqlx.Rows) ([]map[string]any, error) {
	result := []map[string]any{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
