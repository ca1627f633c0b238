package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// RowService exposes the whitelisted tables to clients. Every statement is
// confined to rows owned by the calling user.
type RowService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sanitizer   *bluemonday.Policy
	now         func() time.Time
	newID       func() string
}

func NewRowService(db *sql.DB, m repomanager.RepositoryManager) *RowService {
	return &RowService{
		db:          db,
		repomanager: m,
		sanitizer:   bluemonday.UGCPolicy(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

func lookupTable(name string) (tableSchema, error) {
	t, ok := Tables[name]
	if !ok {
		return tableSchema{}, invalid("unknown table %q", name)
	}
	return t, nil
}

func (s *RowService) Select(ctx context.Context, userID string, q rowstore.Query) ([]rowstore.Row, error) {
	t, err := lookupTable(q.Table)
	if err != nil {
		return nil, err
	}
	where, err := s.scope(t, userID, q.Where)
	if err != nil {
		return nil, err
	}
	for _, o := range q.OrderBy {
		if _, ok := t.column(o.Column); !ok {
			return nil, invalid("unknown column %q", o.Column)
		}
	}

	rows, err := s.repomanager.Rows(s.db).Select(ctx, q.Table, t.selectable(), where, q.OrderBy)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}

	out := make([]rowstore.Row, 0, len(rows))
	for _, r := range rows {
		row, err := fromDB(t, r)
		if err != nil {
			return nil, fmt.Errorf("select %s: %w", q.Table, err)
		}
		out = append(out, row)
	}
	return out, nil
}

// Insert stores row for userID; the id, owner and creation time are
// assigned here.
func (s *RowService) Insert(ctx context.Context, userID, table string, row rowstore.Row) error {
	t, err := lookupTable(table)
	if err != nil {
		return err
	}
	values, err := s.writable(ctx, t, userID, row)
	if err != nil {
		return err
	}
	for _, c := range t.columns {
		if _, ok := values[c.name]; !ok && !c.managed {
			return invalid("column %q is required", c.name)
		}
	}

	values[colID] = s.newID()
	values[colUserID] = userID
	values[colCreatedAt] = s.now().UTC()

	if err := s.repomanager.Rows(s.db).Insert(ctx, table, values); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *RowService) Update(ctx context.Context, userID, table string, values rowstore.Row, where []rowstore.Predicate) (int64, error) {
	t, err := lookupTable(table)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, invalid("nothing to update")
	}
	set, err := s.writable(ctx, t, userID, values)
	if err != nil {
		return 0, err
	}
	scoped, err := s.scope(t, userID, where)
	if err != nil {
		return 0, err
	}

	n, err := s.repomanager.Rows(s.db).Update(ctx, table, set, scoped)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	return n, nil
}

func (s *RowService) Delete(ctx context.Context, userID, table string, where []rowstore.Predicate) (int64, error) {
	t, err := lookupTable(table)
	if err != nil {
		return 0, err
	}
	scoped, err := s.scope(t, userID, where)
	if err != nil {
		return 0, err
	}

	n, err := s.repomanager.Rows(s.db).Delete(ctx, table, scoped)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return n, nil
}

// scope validates client predicates and prepends the owner predicate.
func (s *RowService) scope(t tableSchema, userID string, where []rowstore.Predicate) ([]rowstore.Predicate, error) {
	out := make([]rowstore.Predicate, 0, len(where)+1)
	out = append(out, rowstore.Eq(colUserID, userID))
	for _, p := range where {
		c, ok := t.column(p.Column)
		if !ok || c.name == colUserID {
			return nil, invalid("unknown column %q", p.Column)
		}
		if !p.Op.Valid() {
			return nil, invalid("unknown operator %q", p.Op)
		}
		if p.Op == rowstore.OpIs {
			if p.Value != nil {
				return nil, invalid("%s: is only accepts null", p.Column)
			}
			out = append(out, p)
			continue
		}
		v, err := toDB(c, p.Value)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, invalid("%s: compare with null using is", p.Column)
		}
		out = append(out, rowstore.Predicate{Column: p.Column, Op: p.Op, Value: v})
	}
	return out, nil
}

// writable converts client values, rejecting managed columns and dangling
// references.
func (s *RowService) writable(ctx context.Context, t tableSchema, userID string, row rowstore.Row) (map[string]any, error) {
	values := make(map[string]any, len(row)+3)
	for name, raw := range row {
		c, ok := t.column(name)
		if !ok {
			return nil, invalid("unknown column %q", name)
		}
		if c.managed {
			return nil, invalid("column %q is assigned by the server", name)
		}
		v, err := toDB(c, raw)
		if err != nil {
			return nil, err
		}
		if c.html {
			v = s.sanitizer.Sanitize(v.(string))
		}
		values[name] = v
	}

	for col, target := range t.references {
		id, ok := values[col].(string)
		if !ok {
			continue
		}
		found, err := s.repomanager.Rows(s.db).Select(ctx, target, []string{colID},
			[]rowstore.Predicate{rowstore.Eq(colUserID, userID), rowstore.Eq(colID, id)}, nil)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", col, err)
		}
		if len(found) == 0 {
			return nil, invalid("%s: no such %s row %s", col, target, id)
		}
	}
	return values, nil
}

func toDB(c column, v any) (any, error) {
	switch c.kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("%s: expected string, got %T", c.name, v)
		}
		return s, nil

	case KindNullableText:
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, invalid("%s: expected string or null, got %T", c.name, v)
		}
		return s, nil

	case KindUUID, KindNullableUUID:
		if v == nil || v == "" {
			if c.kind == KindNullableUUID {
				return nil, nil
			}
			return nil, invalid("%s: missing id", c.name)
		}
		s, ok := v.(string)
		if !ok {
			return nil, invalid("%s: expected id string, got %T", c.name, v)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, invalid("%s: malformed id %q", c.name, s)
		}
		return id.String(), nil

	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, invalid("%s: expected bool, got %T", c.name, v)
		}
		return b, nil

	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, invalid("%s: bad timestamp %q", c.name, t)
			}
			return parsed.UTC(), nil
		}
		return nil, invalid("%s: expected timestamp, got %T", c.name, v)

	case KindStringList:
		var items []string
		switch l := v.(type) {
		case nil:
			items = []string{}
		case []string:
			items = l
		case []any:
			items = make([]string, 0, len(l))
			for _, it := range l {
				s, ok := it.(string)
				if !ok {
					return nil, invalid("%s: expected string item, got %T", c.name, it)
				}
				items = append(items, s)
			}
		default:
			return nil, invalid("%s: expected list, got %T", c.name, v)
		}
		b, err := json.Marshal(items)
		if err != nil {
			return nil, invalid("%s: %v", c.name, err)
		}
		return string(b), nil
	}
	return nil, invalid("%s: unsupported column", c.name)
}

// fromDB turns driver values into wire values: ids as strings, lists as
// []string.
func fromDB(t tableSchema, r map[string]any) (rowstore.Row, error) {
	out := make(rowstore.Row, len(r))
	for name, v := range r {
		c, ok := t.column(name)
		if !ok {
			continue
		}
		switch c.kind {
		case KindUUID, KindNullableUUID:
			switch id := v.(type) {
			case [16]byte:
				v = uuid.UUID(id).String()
			case []byte:
				v = string(id)
			}
		case KindStringList:
			list, err := decodeList(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			v = list
		case KindText, KindNullableText:
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
		}
		out[name] = v
	}
	return out, nil
}

func decodeList(v any) ([]string, error) {
	var raw []byte
	switch l := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return l, nil
	case []any:
		out := make([]string, 0, len(l))
		for _, it := range l {
			out = append(out, fmt.Sprint(it))
		}
		return out, nil
	case string:
		raw = []byte(l)
	case []byte:
		raw = l
	default:
		return nil, fmt.Errorf("unexpected list value %T", v)
	}
	out := []string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
