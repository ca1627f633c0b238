// Package rowstoretest provides an in-memory rowstore.Store for tests.
package rowstoretest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/google/uuid"
)

// Method names used by SetError, Hook and Calls.
const (
	MethodSelect = "select"
	MethodInsert = "insert"
	MethodUpdate = "update"
	MethodDelete = "delete"
)

// Memory is a goroutine-safe rowstore.Store. Inserted rows get an "id" and a
// "created_at" when absent, like the real backend.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]rowstore.Row
	errs   map[string]error
	calls  []Call

	// Now stamps created_at on insert.
	Now func() time.Time
	// Hook runs before every operation, outside the store lock. A non-nil
	// error fails the call. Tests use it to block or reorder calls.
	Hook func(ctx context.Context, method, table string) error
}

// Call records one store invocation.
type Call struct {
	Method string
	Table  string
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]rowstore.Row),
		errs:   make(map[string]error),
		Now:    time.Now,
	}
}

// Seed appends rows to table verbatim.
func (m *Memory) Seed(table string, rows ...rowstore.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.tables[table] = append(m.tables[table], copyRow(r))
	}
}

// Rows returns a copy of every row in table, in insertion order.
func (m *Memory) Rows(table string) []rowstore.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]rowstore.Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// SetError makes method fail with err on table ("" matches every table).
// A nil err clears the failure.
func (m *Memory) SetError(method, table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + "/" + table
	if err == nil {
		delete(m.errs, key)
		return
	}
	m.errs[key] = err
}

// Calls returns every recorded invocation in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times method was invoked ("" counts all).
func (m *Memory) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if method == "" || c.Method == method {
			n++
		}
	}
	return n
}

func (m *Memory) begin(ctx context.Context, method, table string) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, Table: table})
	err := m.errs[method+"/"+table]
	if err == nil {
		err = m.errs[method+"/"]
	}
	hook := m.Hook
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		if err := hook(ctx, method, table); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (m *Memory) Select(ctx context.Context, q rowstore.Query) ([]rowstore.Row, error) {
	if err := m.begin(ctx, MethodSelect, q.Table); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]rowstore.Row, 0)
	for _, r := range m.tables[q.Table] {
		ok, err := matchesAll(r, q.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, copyRow(r))
		}
	}

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c, err := compare(out[i][o.Column], out[j][o.Column])
			if err != nil {
				sortErr = err
				return false
			}
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, row rowstore.Row) error {
	if err := m.begin(ctx, MethodInsert, table); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r := copyRow(row)
	if _, ok := r["id"]; !ok {
		r["id"] = uuid.NewString()
	}
	if _, ok := r["created_at"]; !ok {
		r["created_at"] = m.Now().UTC()
	}
	m.tables[table] = append(m.tables[table], r)
	return nil
}

func (m *Memory) Update(ctx context.Context, table string, values rowstore.Row, where ...rowstore.Predicate) (int64, error) {
	if err := m.begin(ctx, MethodUpdate, table); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, r := range m.tables[table] {
		ok, err := matchesAll(r, where)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		for k, v := range values {
			r[k] = copyValue(v)
		}
		n++
	}
	return n, nil
}

func (m *Memory) Delete(ctx context.Context, table string, where ...rowstore.Predicate) (int64, error) {
	if err := m.begin(ctx, MethodDelete, table); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	doomed := make([]bool, len(rows))
	for i, r := range rows {
		ok, err := matchesAll(r, where)
		if err != nil {
			return 0, err
		}
		doomed[i] = ok
	}

	kept := make([]rowstore.Row, 0, len(rows))
	var n int64
	for i, r := range rows {
		if doomed[i] {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return n, nil
}

func matchesAll(r rowstore.Row, where []rowstore.Predicate) (bool, error) {
	for _, p := range where {
		ok, err := matches(r, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(r rowstore.Row, p rowstore.Predicate) (bool, error) {
	v := r[p.Column]
	switch p.Op {
	case rowstore.OpIs:
		if p.Value != nil {
			return false, fmt.Errorf("is: only null is supported, got %v", p.Value)
		}
		return v == nil, nil
	case rowstore.OpEq, rowstore.OpGte, rowstore.OpLt:
		// SQL comparison with NULL is never true.
		if v == nil || p.Value == nil {
			return false, nil
		}
		c, err := compare(v, p.Value)
		if err != nil {
			return false, fmt.Errorf("%s: %w", p, err)
		}
		switch p.Op {
		case rowstore.OpEq:
			return c == 0, nil
		case rowstore.OpGte:
			return c >= 0, nil
		default:
			return c < 0, nil
		}
	default:
		return false, fmt.Errorf("unsupported operator %q", p.Op)
	}
}

// compare orders two values of the same kind. Times may be given as
// time.Time or RFC 3339 strings. nil sorts first.
func compare(a, b any) (int, error) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, nil
		case a == nil:
			return -1, nil
		default:
			return 1, nil
		}
	}

	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb), nil
		}
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return strings.Compare(av, bv), nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		default:
			return 1, nil
		}
	}

	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func copyRow(r rowstore.Row) rowstore.Row {
	out := make(rowstore.Row, len(r))
	for k, v := range r {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case []any:
		return append([]any(nil), s...)
	}
	return v
}
