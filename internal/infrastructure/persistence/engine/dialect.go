package engine

import (
	"encoding/json"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Dialect renders the few constructs that differ between stores.
type Dialect interface {
	Name() string
	// In renders a set membership test bound as one parameter.
	In(column string, values []string) (string, any)
}

// Postgres binds sets as a text array: col = ANY(?).
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) In(column string, values []string) (string, any) {
	return column + " = ANY(?)", pq.Array(values)
}

// SQLite binds sets as a JSON array expanded by json_each.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) In(column string, values []string) (string, any) {
	b, _ := json.Marshal(values)
	return column + " IN (SELECT value FROM json_each(?))", string(b)
}

// DialectFor picks the dialect of an open connection. Unknown drivers get Postgres.
func DialectFor(db *gorm.DB) Dialect {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return SQLite{}
	}
	return Postgres{}
}
