package query

import (
	"sort"
	"strings"

	"github.com/finops/backend/internal/domain/shared"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortKey is one whitelisted ordering column.
type SortKey struct {
	// Expr is the SQL expression ordered on.
	Expr string
	// Text keys are compared through LOWER().
	Text bool
	// LowCardinality keys get the table tie-break appended.
	LowCardinality bool
}

// SortTable is the per-entity whitelist of sort keys.
type SortTable struct {
	Keys             map[string]SortKey
	DefaultKey       string
	DefaultDirection Direction
	// TieBreak orders rows sharing a low-cardinality key, newest first.
	TieBreak string
	// Unique is the primary key expression, appended last for a total order.
	Unique string
}

// Sort is a resolved sort request.
type Sort struct {
	Key       string    `json:"sort_by"`
	Direction Direction `json:"sort_order"`
	spec      SortKey
	table     *SortTable
}

// OrderTerm is one ORDER BY item.
type OrderTerm struct {
	Expr      string
	Direction Direction
}

// Order is the full ordering of a query. Priority is set while ranked search is
// active and always sorts first.
type Order struct {
	Priority *Search
	Terms    []OrderTerm
}

// Resolve validates key and direction against the table. Empty values fall back
// to the table defaults; unknown values are rejected.
func (t *SortTable) Resolve(key, direction string) (Sort, error) {
	key = strings.TrimSpace(key)
	direction = strings.ToLower(strings.TrimSpace(direction))

	var errs shared.ValidationErrors
	if key == "" {
		key = t.DefaultKey
	}
	spec, ok := t.Keys[key]
	if !ok {
		errs.Add("sort_by", "must be one of: "+strings.Join(t.KeyNames(), ", "), key)
	}

	dir := t.DefaultDirection
	switch Direction(direction) {
	case "":
	case Asc, Desc:
		dir = Direction(direction)
	default:
		errs.Add("sort_order", "must be asc or desc", direction)
	}
	if err := errs.Err(); err != nil {
		return Sort{}, err
	}
	return Sort{Key: key, Direction: dir, spec: spec, table: t}, nil
}

// KeyNames lists the whitelisted keys in stable order.
func (t *SortTable) KeyNames() []string {
	names := make([]string, 0, len(t.Keys))
	for k := range t.Keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Order builds the ordering, ranking exact search matches first when search is non-nil.
func (s Sort) Order(search *Search) Order {
	expr := s.spec.Expr
	if s.spec.Text {
		expr = "LOWER(" + expr + ")"
	}
	o := Order{Priority: search}
	o.Terms = append(o.Terms, OrderTerm{Expr: expr, Direction: s.Direction})
	if s.table == nil {
		return o
	}
	if s.spec.LowCardinality && s.table.TieBreak != "" && s.table.TieBreak != s.spec.Expr {
		o.Terms = append(o.Terms, OrderTerm{Expr: s.table.TieBreak, Direction: Desc})
	}
	if s.table.Unique != "" {
		o.Terms = append(o.Terms, OrderTerm{Expr: s.table.Unique, Direction: Asc})
	}
	return o
}
