package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
)

const (
	tableEntries  = "entries"
	tableSections = "sections"

	colID          = "id"
	colTitle       = "title"
	colContent     = "content"
	colTags        = "tags"
	colSectionID   = "section_id"
	colAttachments = "attachments"
	colPrivate     = "private"
	colCreatedAt   = "created_at"
	colName        = "name"
	colDescription = "description"
	colColor       = "color"
)

// entryFromRow validates a store row against the entry schema.
func entryFromRow(r rowstore.Row) (Entry, error) {
	var (
		e   Entry
		err error
	)
	if e.ID, err = requiredString(r, colID); err != nil {
		return Entry{}, err
	}
	if e.Title, err = optionalString(r, colTitle); err != nil {
		return Entry{}, err
	}
	if e.Content, err = optionalString(r, colContent); err != nil {
		return Entry{}, err
	}
	if e.Date, err = requiredTime(r, colCreatedAt); err != nil {
		return Entry{}, err
	}
	if e.Tags, err = stringList(r, colTags); err != nil {
		return Entry{}, err
	}
	if e.SectionID, err = optionalString(r, colSectionID); err != nil {
		return Entry{}, err
	}
	if e.Attachments, err = stringList(r, colAttachments); err != nil {
		return Entry{}, err
	}
	if e.Private, err = optionalBool(r, colPrivate); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// sectionFromRow validates a store row against the section schema.
func sectionFromRow(r rowstore.Row) (Section, error) {
	var (
		s   Section
		err error
	)
	if s.ID, err = requiredString(r, colID); err != nil {
		return Section{}, err
	}
	if s.Name, err = requiredString(r, colName); err != nil {
		return Section{}, err
	}
	if s.Description, err = optionalString(r, colDescription); err != nil {
		return Section{}, err
	}
	if s.Color, err = optionalString(r, colColor); err != nil {
		return Section{}, err
	}
	if s.CreatedAt, err = requiredTime(r, colCreatedAt); err != nil {
		return Section{}, err
	}
	return s, nil
}

// entryValues is the full set of writable entry columns.
func entryValues(e Entry) rowstore.Row {
	return rowstore.Row{
		colTitle:       e.Title,
		colContent:     e.Content,
		colTags:        nonNil(e.Tags),
		colSectionID:   nullable(e.SectionID),
		colAttachments: nonNil(e.Attachments),
		colPrivate:     e.Private,
	}
}

func sectionValues(s Section) rowstore.Row {
	return rowstore.Row{
		colName:        s.Name,
		colDescription: nullable(s.Description),
		colColor:       s.Color,
	}
}

func patchValues(p SectionPatch) rowstore.Row {
	values := rowstore.Row{}
	if p.Name != nil {
		values[colName] = *p.Name
	}
	if p.Description != nil {
		values[colDescription] = nullable(*p.Description)
	}
	if p.Color != nil {
		values[colColor] = *p.Color
	}
	return values
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func schemaErr(col, reason string) error {
	return &ValidationError{Field: col, Reason: reason}
}

func requiredString(r rowstore.Row, col string) (string, error) {
	s, err := optionalString(r, col)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", schemaErr(col, "missing")
	}
	return s, nil
}

func optionalString(r rowstore.Row, col string) (string, error) {
	switch v := r[col].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", schemaErr(col, fmt.Sprintf("expected string, got %T", v))
	}
}

func optionalBool(r rowstore.Row, col string) (bool, error) {
	switch v := r[col].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, schemaErr(col, fmt.Sprintf("expected bool, got %T", v))
	}
}

func requiredTime(r rowstore.Row, col string) (time.Time, error) {
	switch v := r[col].(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, schemaErr(col, "bad timestamp "+v)
		}
		return t, nil
	case nil:
		return time.Time{}, schemaErr(col, "missing")
	default:
		return time.Time{}, schemaErr(col, fmt.Sprintf("expected timestamp, got %T", v))
	}
}

// stringList accepts []string, []any of strings or a JSON array string.
func stringList(r rowstore.Row, col string) ([]string, error) {
	switch v := r[col].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, schemaErr(col, fmt.Sprintf("expected string item, got %T", item))
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		out := []string{}
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, schemaErr(col, "expected JSON array")
		}
		return out, nil
	default:
		return nil, schemaErr(col, fmt.Sprintf("expected list, got %T", v))
	}
}
