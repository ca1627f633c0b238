package services

// ColumnKind says how a column's wire value is checked and converted.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNullableText
	KindUUID
	KindNullableUUID
	KindBool
	KindTime
	KindStringList
)

type column struct {
	name string
	kind ColumnKind
	// managed columns are assigned by the server and never written by clients
	managed bool
	// html columns are sanitised before they are stored
	html bool
}

type tableSchema struct {
	columns []column
	// references maps a column to the table whose id it must name
	references map[string]string
}

func (t tableSchema) column(name string) (column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// selectable lists the columns returned to clients; the owner column stays
// on the server.
func (t tableSchema) selectable() []string {
	out := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if c.name != colUserID {
			out = append(out, c.name)
		}
	}
	return out
}

const (
	colID        = "id"
	colUserID    = "user_id"
	colCreatedAt = "created_at"
)

// Tables is the set of tables reachable through the row API.
var Tables = map[string]tableSchema{
	"sections": {
		columns: []column{
			{name: colID, kind: KindUUID, managed: true},
			{name: colUserID, kind: KindUUID, managed: true},
			{name: "name", kind: KindText},
			{name: "description", kind: KindNullableText},
			{name: "color", kind: KindText},
			{name: colCreatedAt, kind: KindTime, managed: true},
		},
	},
	"entries": {
		columns: []column{
			{name: colID, kind: KindUUID, managed: true},
			{name: colUserID, kind: KindUUID, managed: true},
			{name: "title", kind: KindText},
			{name: "content", kind: KindText, html: true},
			{name: "tags", kind: KindStringList},
			{name: "section_id", kind: KindNullableUUID},
			{name: "attachments", kind: KindStringList},
			{name: "private", kind: KindBool},
			{name: colCreatedAt, kind: KindTime, managed: true},
		},
		references: map[string]string{"section_id": "sections"},
	},
}
