// Package rows runs generic row-store statements against PostgreSQL.
// Table and column names are assumed to be vetted by the caller; they are
// still quoted as identifiers.
package rows

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
)

type Repository interface {
	Select(ctx context.Context, table string, columns []string, where []rowstore.Predicate, order []rowstore.Order) ([]map[string]any, error)
	Insert(ctx context.Context, table string, values map[string]any) error
	Update(ctx context.Context, table string, values map[string]any, where []rowstore.Predicate) (int64, error)
	Delete(ctx context.Context, table string, where []rowstore.Predicate) (int64, error)
}
