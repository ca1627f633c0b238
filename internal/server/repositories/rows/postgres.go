package rows

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/jackc/pgx/v5"
)

var ErrUnscoped = errors.New("statement has no where clause")

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// builder accumulates positional arguments and hands out $n placeholders.
type builder struct {
	sb   strings.Builder
	args []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) where(preds []rowstore.Predicate) error {
	for i, p := range preds {
		if i == 0 {
			b.sb.WriteString(" WHERE ")
		} else {
			b.sb.WriteString(" AND ")
		}
		col := ident(p.Column)
		switch p.Op {
		case rowstore.OpEq:
			b.sb.WriteString(col + " = " + b.arg(p.Value))
		case rowstore.OpGte:
			b.sb.WriteString(col + " >= " + b.arg(p.Value))
		case rowstore.OpLt:
			b.sb.WriteString(col + " < " + b.arg(p.Value))
		case rowstore.OpIs:
			if p.Value != nil {
				return fmt.Errorf("%s: is only accepts null", p.Column)
			}
			b.sb.WriteString(col + " IS NULL")
		default:
			return fmt.Errorf("%s: unknown operator %q", p.Column, p.Op)
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *PostgresRepository) Select(ctx context.Context, table string, columns []string, where []rowstore.Predicate, order []rowstore.Order) ([]map[string]any, error) {
	b := &builder{}
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = ident(c)
	}
	b.sb.WriteString("SELECT " + strings.Join(cols, ", ") + " FROM " + ident(table))
	if err := b.where(where); err != nil {
		return nil, err
	}
	for i, o := range order {
		if i == 0 {
			b.sb.WriteString(" ORDER BY ")
		} else {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(ident(o.Column))
		if o.Desc {
			b.sb.WriteString(" DESC")
		} else {
			b.sb.WriteString(" ASC")
		}
	}

	rows, err := r.db.QueryContext(ctx, b.sb.String(), b.args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	result, err := dbx.ScanMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, table string, values map[string]any) error {
	if len(values) == 0 {
		return fmt.Errorf("insert into %s: no values", table)
	}
	b := &builder{}
	keys := sortedKeys(values)
	cols := make([]string, len(keys))
	ph := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = ident(k)
		ph[i] = b.arg(values[k])
	}
	b.sb.WriteString("INSERT INTO " + ident(table) + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")")

	if _, err := r.db.ExecContext(ctx, b.sb.String(), b.args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, table string, values map[string]any, where []rowstore.Predicate) (int64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("update %s: no values", table)
	}
	if len(where) == 0 {
		return 0, ErrUnscoped
	}
	b := &builder{}
	keys := sortedKeys(values)
	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = ident(k) + " = " + b.arg(values[k])
	}
	b.sb.WriteString("UPDATE " + ident(table) + " SET " + strings.Join(sets, ", "))
	if err := b.where(where); err != nil {
		return 0, err
	}
	return r.exec(ctx, b)
}

func (r *PostgresRepository) Delete(ctx context.Context, table string, where []rowstore.Predicate) (int64, error) {
	if len(where) == 0 {
		return 0, ErrUnscoped
	}
	b := &builder{}
	b.sb.WriteString("DELETE FROM " + ident(table))
	if err := b.where(where); err != nil {
		return 0, err
	}
	return r.exec(ctx, b)
}

func (r *PostgresRepository) exec(ctx context.Context, b *builder) (int64, error) {
	res, err := r.db.ExecContext(ctx, b.sb.String(), b.args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
