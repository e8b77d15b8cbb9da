package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/abdoir/affinity-server/internal/domain"
)

// Browser implements domain.Browser by introspecting sqlite_master and
// table_info pragmas. Table and column names are never taken from the
// request directly; callers validate them against Tables/Columns first,
// and identifiers are quoted before interpolation.
type Browser struct {
	db *sql.DB
}

func NewBrowser(db *DB) *Browser {
	return &Browser{db: db.SqlDB}
}

func (b *Browser) Tables(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (b *Browser) Columns(ctx context.Context, table string) ([]domain.Column, error) {
	rows, err := b.db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	columns := []domain.Column{}
	for rows.Next() {
		var (
			cid       int
			col       domain.Column
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk != 0
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

	rows, err := b.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT ? OFFSET ?", quoteIdent(table)),
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
	rows, err := b.db.QueryContext(ctx, query, params...)
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
		marks[i] = "?"
		args[i] = data[k]
	}

	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", ")),
		args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
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
		sets[i] = quoteIdent(k) + " = ?"
		args = append(args, data[k])
	}
	args = append(args, id)

	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
			quoteIdent(table), strings.Join(sets, ", ")),
		args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *Browser) DeleteRow(ctx context.Context, table, id string) (int64, error) {
	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdent(table)), id)
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
	lastID, _ := res.LastInsertId()
	return &domain.ExecResult{RowsAffected: affected, LastInsertID: lastID}, nil
}

func (b *Browser) DeleteAll(ctx context.Context, table string) (int64, error) {
	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s", quoteIdent(table)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// quoteIdent wraps an identifier in double quotes, doubling any embedded
// quote so the value cannot break out of the identifier position.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// scanRows reads all rows into generic maps. BLOB/text values arrive as
// []byte from the driver and are converted to strings so they serialize
// as JSON strings instead of base64.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	result := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
