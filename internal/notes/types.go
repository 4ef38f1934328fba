package notes

import (
	"strings"
	"time"
)

// Note is a memo with space-separated tags.
// ID and CreationDate are fixed at creation; Memo and Tags may be modified
// through the owning Notebook.
type Note struct {
	ID           int64     `json:"id" yaml:"id"`
	Memo         string    `json:"memo" yaml:"memo"`
	Tags         string    `json:"tags" yaml:"tags"`
	CreationDate time.Time `json:"creation_date" yaml:"creation_date"`
}

// Match reports whether filter occurs in the memo or in the tags.
// The match is a case-sensitive substring test with no tokenization.
func (n *Note) Match(filter string) bool {
	return strings.Contains(n.Memo, filter) || strings.Contains(n.Tags, filter)
}

// TagList splits Tags on whitespace.
func (n *Note) TagList() []string {
	return strings.Fields(n.Tags)
}

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
