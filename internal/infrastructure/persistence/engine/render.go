// Package engine runs list queries described by query.Plan against a gorm
// connection. Conditions are rendered once into '?' placeholders so the count
// and data statements share the same WHERE text and parameter prefix.
package engine

import (
	"fmt"
	"strings"

	"github.com/finops/backend/internal/domain/query"
)

// Source describes one queryable read model.
type Source struct {
	// Name is used in logs, metrics and error messages.
	Name string
	// Select is the projection list.
	Select string
	// From is the FROM clause including joins.
	From string
	// Search lists the columns matched by ranked search.
	Search []string
	// Sort is the sort key whitelist.
	Sort *query.SortTable
}

// Statement is rendered SQL with positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Renderer turns conditions and orderings into SQL fragments.
type Renderer struct {
	dialect Dialect
}

// NewRenderer creates a Renderer for a dialect.
func NewRenderer(d Dialect) Renderer {
	return Renderer{dialect: d}
}

// Where renders AND-ed conditions. The result has no leading WHERE keyword and
// is empty when there are no conditions.
func (r Renderer) Where(conds []query.Condition) (string, []any) {
	parts := make([]string, 0, len(conds))
	var args []any
	for _, c := range conds {
		sql, a := r.condition(c)
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args
}

func (r Renderer) condition(c query.Condition) (string, []any) {
	switch c := c.(type) {
	case query.Equal:
		return c.Column + " = ?", []any{c.Value}
	case query.Range:
		var parts []string
		var args []any
		if c.Min != nil {
			parts = append(parts, c.Column+" >= ?")
			args = append(args, c.Min)
		}
		if c.Max != nil {
			parts = append(parts, c.Column+" <= ?")
			args = append(args, c.Max)
		}
		return strings.Join(parts, " AND "), args
	case query.In:
		sql, arg := r.dialect.In(c.Column, c.Values)
		return sql, []any{arg}
	case query.DateRange:
		var parts []string
		var args []any
		if c.From != nil {
			parts = append(parts, "DATE("+c.Column+") >= ?")
			args = append(args, c.From.Format(query.DateLayout))
		}
		if c.To != nil {
			parts = append(parts, "DATE("+c.Column+") <= ?")
			args = append(args, c.To.Format(query.DateLayout))
		}
		return strings.Join(parts, " AND "), args
	case *query.Search:
		return r.search(c)
	default:
		panic(fmt.Sprintf("engine: unsupported condition %T", c))
	}
}

func (r Renderer) search(s *query.Search) (string, []any) {
	if s == nil {
		return "", nil
	}
	parts := make([]string, 0, 2*len(s.Columns))
	args := make([]any, 0, 2*len(s.Columns))
	for _, col := range s.Columns {
		parts = append(parts, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
		args = append(args, s.Pattern())
	}
	exact, exactArgs := r.exact(s)
	parts = append(parts, exact)
	args = append(args, exactArgs...)
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func (r Renderer) exact(s *query.Search) (string, []any) {
	parts := make([]string, 0, len(s.Columns))
	args := make([]any, 0, len(s.Columns))
	for _, col := range s.Columns {
		parts = append(parts, "LOWER("+col+") = ?")
		args = append(args, s.Exact())
	}
	return strings.Join(parts, " OR "), args
}

// OrderBy renders an ordering without the ORDER BY keyword.
func (r Renderer) OrderBy(o query.Order) (string, []any) {
	var parts []string
	var args []any
	if o.Priority != nil {
		exact, exactArgs := r.exact(o.Priority)
		parts = append(parts, "CASE WHEN ("+exact+") THEN 0 ELSE 1 END ASC")
		args = append(args, exactArgs...)
	}
	for _, t := range o.Terms {
		dir := "ASC"
		if t.Direction == query.Desc {
			dir = "DESC"
		}
		parts = append(parts, t.Expr+" "+dir)
	}
	return strings.Join(parts, ", "), args
}

// Count renders the count statement of a plan.
func (r Renderer) Count(src Source, plan query.Plan) Statement {
	where, args := r.Where(plan.Where())
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(src.From)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	return Statement{SQL: b.String(), Args: args}
}

// Data renders the windowed data statement of a plan. Its arguments start with
// exactly the arguments of Count.
func (r Renderer) Data(src Source, plan query.Plan) Statement {
	where, args := r.Where(plan.Where())
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(src.Select)
	b.WriteString(" FROM ")
	b.WriteString(src.From)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	if order, orderArgs := r.OrderBy(plan.Order); order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
		args = append(args, orderArgs...)
	}
	if plan.Page.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, plan.Page.Limit, plan.Page.Offset())
	}
	return Statement{SQL: b.String(), Args: args}
}
