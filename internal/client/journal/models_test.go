package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddTag(t *testing.T) {
	tags := AddTag(nil, "  Work ")
	assert.Equal(t, []string{"work"}, tags)

	tags = AddTag(tags, "WORK")
	assert.Equal(t, []string{"work"}, tags)

	tags = AddTag(tags, "   ")
	assert.Equal(t, []string{"work"}, tags)

	next := AddTag(tags, "Ideas")
	assert.Equal(t, []string{"work", "ideas"}, next)
	assert.Equal(t, []string{"work"}, tags, "input must not be modified")
}

func TestRemoveTag(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, RemoveTag([]string{"a", "b", "c"}, "b"))
	assert.Equal(t, []string{"a"}, RemoveTag([]string{"a"}, "zzz"))
	assert.Empty(t, RemoveTag(nil, "a"))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"travel", "food"}, ParseTags("Travel, food ,TRAVEL,,"))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestEntryHasTag(t *testing.T) {
	e := Entry{Tags: []string{"a", "b"}}
	assert.True(t, e.HasTag("b"))
	assert.False(t, e.HasTag("B"))
}
