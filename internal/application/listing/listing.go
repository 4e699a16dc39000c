// Package listing turns a raw parameter bag into a query plan and runs it
// through a read engine. Every list endpoint and export shares this path.
package listing

import (
	"context"
	"net/url"

	"github.com/finops/backend/internal/domain/query"
)

// Finder runs a plan against one read source.
type Finder[T any] interface {
	Find(ctx context.Context, plan query.Plan) (*query.Page[T], error)
}

// Reader is a Finder that can also load a single row.
type Reader[T any] interface {
	Finder[T]
	First(ctx context.Context, resource string, conds ...query.Condition) (*T, error)
}

// Walker streams every row of a plan in chunks.
type Walker[T any] interface {
	Each(ctx context.Context, plan query.Plan, size int, fn func([]T) error) error
	Count(ctx context.Context, plan query.Plan) (int64, error)
}

// Spec describes how one entity is listed.
type Spec struct {
	Sort   *query.SortTable
	Search []string
	// Parse reads the entity filters. Parse errors are collected by v; a
	// returned error (inverted range) is merged into the same report.
	Parse func(v *query.Values) ([]query.Condition, error)
}

// Prepared is a validated plan plus the echo of what was applied.
type Prepared struct {
	Plan    query.Plan
	Applied query.Applied
}

// WithDefaultSort returns a copy of raw sorted by key and direction unless
// raw names its own sort.
func WithDefaultSort(raw url.Values, key, direction string) url.Values {
	out := url.Values{}
	for k, v := range raw {
		out[k] = v
	}
	if out.Get("sort_by") == "" {
		out.Set("sort_by", key)
		if out.Get("sort_order") == "" {
			out.Set("sort_order", direction)
		}
	}
	return out
}

// Prepare parses raw into a plan. Every parameter problem is reported in one
// validation error.
func Prepare(spec Spec, raw url.Values) (*Prepared, error) {
	v := query.NewValues(raw)
	var conds []query.Condition
	if spec.Parse != nil {
		var err error
		conds, err = spec.Parse(v)
		v.Merge("filters", err)
	}
	req := v.List(spec.Sort)
	if err := v.Err(); err != nil {
		return nil, err
	}
	plan := query.NewPlan(conds, req, spec.Search...)
	return &Prepared{Plan: plan, Applied: plan.Applied(v.Applied())}, nil
}

// Result is the list envelope: rows, pagination and the applied echo.
type Result[R any] struct {
	Data       []R            `json:"data"`
	Pagination query.PageInfo `json:"pagination"`
	query.Applied
}

// List prepares raw, runs it through f and converts every row.
func List[T, R any](ctx context.Context, f Finder[T], spec Spec, raw url.Values, convert func(T) R) (*Result[R], error) {
	p, err := Prepare(spec, raw)
	if err != nil {
		return nil, err
	}
	page, err := f.Find(ctx, p.Plan)
	if err != nil {
		return nil, err
	}
	data := make([]R, 0, len(page.Rows))
	for _, row := range page.Rows {
		data = append(data, convert(row))
	}
	return &Result[R]{Data: data, Pagination: page.Info, Applied: p.Applied}, nil
}
