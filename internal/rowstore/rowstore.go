// Package rowstore describes the row-oriented remote data store: named
// tables of loosely typed rows, filtered by simple predicates and ordered by
// columns. The server implements it over Postgres and the client reaches it
// through gRPC; both speak the types declared here.
package rowstore

import (
	"context"
	"fmt"
)

// Op is a predicate comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	// OpIs only accepts a nil value and matches SQL NULL.
	OpIs Op = "is"
)

// Valid reports whether op is one of the known operators.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpGte, OpLt, OpIs:
		return true
	}
	return false
}

// Predicate compares Column against Value.
type Predicate struct {
	Column string `json:"column"`
	Op     Op     `json:"op"`
	Value  any    `json:"value"`
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Column, p.Op, p.Value)
}

func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

func Gte(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpGte, Value: value}
}

func Lt(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpLt, Value: value}
}

func IsNull(column string) Predicate {
	return Predicate{Column: column, Op: OpIs}
}

// Order sorts by Column, ascending unless Desc is set.
type Order struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Query selects rows of Table matching every predicate in Where.
type Query struct {
	Table   string      `json:"table"`
	Where   []Predicate `json:"where,omitempty"`
	OrderBy []Order     `json:"order_by,omitempty"`
}

// Row maps column names to values.
type Row map[string]any

// Store is the remote row store. Mutations return no entities; callers
// re-select when they need fresh state.
type Store interface {
	Select(ctx context.Context, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) error
	// Update sets values on every row matching where and reports how many rows changed.
	Update(ctx context.Context, table string, values Row, where ...Predicate) (int64, error)
	Delete(ctx context.Context, table string, where ...Predicate) (int64, error)
}
