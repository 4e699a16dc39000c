package query

import (
	"strings"
)

// Search is a case-insensitive multi-column text match. Rows matching the term
// exactly in any column are ranked ahead of substring-only matches.
type Search struct {
	Term    string
	Columns []string
}

// NewSearch returns nil for a blank term, which disables search entirely.
func NewSearch(term string, columns ...string) *Search {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return nil
	}
	return &Search{Term: term, Columns: columns}
}

// Exact is the parameter for the exact-match test.
func (s *Search) Exact() string {
	return strings.ToLower(s.Term)
}

// Pattern is the LIKE parameter for the substring test, with wildcards escaped.
func (s *Search) Pattern() string {
	return "%" + EscapeLike(strings.ToLower(s.Term)) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters using backslash as the escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
