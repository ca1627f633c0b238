package journal

import (
	"strings"
	"time"
)

// Entry is a journal entry. ID and Date are assigned by the backend.
type Entry struct {
	ID      string
	Title   string
	Content string // rich-text markup, stored as given
	Date    time.Time
	Tags    []string
	// SectionID is empty for unfiled entries.
	SectionID   string
	Attachments []string
	Private     bool
}

// HasTag reports whether tag is one of the entry's tags.
func (e Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Section is a folder grouping entries.
type Section struct {
	ID          string
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}

// SectionPatch carries a partial section update; nil fields are left alone.
type SectionPatch struct {
	Name        *string
	Description *string
	Color       *string
}

// Actor is the signed-in user as seen by the client.
type Actor struct {
	ID    string
	Email string
}

// NormalizeTag trims and lowercases raw tag input.
func NormalizeTag(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// AddTag appends raw to tags after normalizing it. Empty input and tags
// already present are ignored. The input slice is not modified.
func AddTag(tags []string, raw string) []string {
	tag := NormalizeTag(raw)
	out := append([]string(nil), tags...)
	if tag == "" {
		return out
	}
	for _, t := range out {
		if t == tag {
			return out
		}
	}
	return append(out, tag)
}

// RemoveTag returns tags without tag.
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// ParseTags builds a tag list from comma separated input using AddTag rules.
func ParseTags(input string) []string {
	tags := []string{}
	for _, part := range strings.Split(input, ",") {
		tags = AddTag(tags, part)
	}
	return tags
}
