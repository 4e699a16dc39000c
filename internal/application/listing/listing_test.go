package listing

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/finops/backend/internal/domain/query"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name string
}

type fakeFinder struct {
	plans []query.Plan
	rows  []row
	total int64
	err   error
}

func (f *fakeFinder) Find(_ context.Context, plan query.Plan) (*query.Page[row], error) {
	f.plans = append(f.plans, plan)
	if f.err != nil {
		return nil, f.err
	}
	return &query.Page[row]{Rows: f.rows, Info: query.NewPageInfo(plan.Page, f.total)}, nil
}

var testSpec = Spec{
	Sort: &query.SortTable{
		Keys: map[string]query.SortKey{
			"name":       {Expr: "x.name", Text: true},
			"created_at": {Expr: "x.created_at"},
		},
		DefaultKey:       "name",
		DefaultDirection: query.Asc,
		Unique:           "x.id",
	},
	Search: []string{"x.name"},
	Parse: func(v *query.Values) ([]query.Condition, error) {
		return query.NewBuilder().
			IntRange("x.n", "n", v.Int("min_n"), v.Int("max_n")).
			Build()
	},
}

func TestList(t *testing.T) {
	f := &fakeFinder{rows: []row{{Name: "a"}, {Name: "b"}}, total: 12}
	res, err := List(context.Background(), f, testSpec,
		url.Values{"page": {"2"}, "limit": {"5"}, "min_n": {"1"}, "search": {"  Acme "}},
		func(r row) string { return r.Name })
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, res.Data)
	assert.Equal(t, 2, res.Pagination.CurrentPage)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)
	assert.Equal(t, map[string]string{"min_n": "1"}, res.Filters)
	assert.Equal(t, "Acme", res.Search)
	assert.Equal(t, "name", res.Sort.Key)

	require.Len(t, f.plans, 1)
	assert.Len(t, f.plans[0].Conditions, 1)
	assert.NotNil(t, f.plans[0].Search)
}

func TestList_ReportsEveryParameterError(t *testing.T) {
	f := &fakeFinder{}
	_, err := List(context.Background(), f, testSpec,
		url.Values{"limit": {"ten"}, "min_n": {"5"}, "max_n": {"1"}, "sort_by": {"password"}},
		func(r row) row { return r })
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	fields := make([]string, 0, len(de.Details))
	for _, d := range de.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "limit")
	assert.Contains(t, fields, "sort_by")
	assert.Len(t, fields, 3)
	assert.Empty(t, f.plans)
}

func TestList_EmptyPageHasEmptyData(t *testing.T) {
	res, err := List(context.Background(), &fakeFinder{}, testSpec, nil, func(r row) row { return r })
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, 10, res.Pagination.PerPage)
	assert.Empty(t, res.Search)
}

func TestList_PropagatesStorageError(t *testing.T) {
	boom := shared.WrapStorageError("list things", errors.New("down"))
	_, err := List(context.Background(), &fakeFinder{err: boom}, testSpec, nil, func(r row) row { return r })
	assert.True(t, shared.IsKind(err, shared.KindStorage))
}
