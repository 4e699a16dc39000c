package engine

import (
	"testing"
	"time"

	"github.com/finops/backend/internal/domain/query"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSource = Source{
	Name:   "transactions",
	Select: "t.id, t.amount, c.name AS client_name",
	From:   "transactions t JOIN clients c ON c.id = t.client_id",
	Search: []string{"c.name", "CAST(t.amount AS TEXT)"},
	Sort: &query.SortTable{
		Keys: map[string]query.SortKey{
			"created_at":  {Expr: "t.created_at"},
			"client_name": {Expr: "c.name", Text: true, LowCardinality: true},
		},
		DefaultKey:       "created_at",
		DefaultDirection: query.Desc,
		TieBreak:         "t.created_at",
		Unique:           "t.id",
	},
}

func TestRenderer_Where(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dialect  Dialect
		cond     query.Condition
		wantSQL  string
		wantArgs int
	}{
		{"equal", Postgres{}, query.Equal{Column: "t.type", Value: "deposit"}, "t.type = ?", 1},
		{"min only", Postgres{}, query.Range{Column: "t.amount", Min: decimal.NewFromInt(5)}, "t.amount >= ?", 1},
		{"max only", Postgres{}, query.Range{Column: "t.amount", Max: decimal.NewFromInt(5)}, "t.amount <= ?", 1},
		{"both bounds", Postgres{}, query.Range{Column: "t.amount", Min: 1, Max: 2}, "t.amount >= ? AND t.amount <= ?", 2},
		{"set postgres", Postgres{}, query.In{Column: "t.client_id", Values: []string{"a", "b"}}, "t.client_id = ANY(?)", 1},
		{"set sqlite", SQLite{}, query.In{Column: "t.client_id", Values: []string{"a", "b"}}, "t.client_id IN (SELECT value FROM json_each(?))", 1},
		{"dates", Postgres{}, query.DateRange{Column: "t.created_at", From: &from, To: &to}, "DATE(t.created_at) >= ? AND DATE(t.created_at) <= ?", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := NewRenderer(tt.dialect).Where([]query.Condition{tt.cond})
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestRenderer_SetParamIsSingleArray(t *testing.T) {
	_, args := NewRenderer(Postgres{}).Where([]query.Condition{
		query.In{Column: "t.client_id", Values: []string{"a", "b", "c"}},
	})
	require.Len(t, args, 1)
	arr, ok := args[0].(*pq.StringArray)
	require.True(t, ok)
	assert.Equal(t, pq.StringArray{"a", "b", "c"}, *arr)

	_, args = NewRenderer(SQLite{}).Where([]query.Condition{
		query.In{Column: "t.client_id", Values: []string{"a", "b"}},
	})
	assert.Equal(t, []any{`["a","b"]`}, args)
}

func TestRenderer_DateParamsAreDateOnly(t *testing.T) {
	from := time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC)
	_, args := NewRenderer(Postgres{}).Where([]query.Condition{
		query.DateRange{Column: "t.created_at", From: &from},
	})
	assert.Equal(t, []any{"2024-03-09"}, args)
}

func TestRenderer_CountAndDataSharePrefix(t *testing.T) {
	r := NewRenderer(Postgres{})
	plan := query.NewPlan(
		[]query.Condition{query.Equal{Column: "t.type", Value: "withdraw"}},
		query.ListRequest{
			Page:   query.NewPageRequest(3, 20),
			Search: "Acme",
			Sort:   mustSort(t, "client_name", "asc"),
		},
		testSource.Search...,
	)

	count := r.Count(testSource, plan)
	data := r.Data(testSource, plan)

	assert.Equal(t,
		`SELECT COUNT(*) FROM transactions t JOIN clients c ON c.id = t.client_id WHERE t.type = ? AND `+
			`(LOWER(c.name) LIKE ? ESCAPE '\' OR LOWER(CAST(t.amount AS TEXT)) LIKE ? ESCAPE '\' OR `+
			`LOWER(c.name) = ? OR LOWER(CAST(t.amount AS TEXT)) = ?)`,
		count.SQL)
	assert.Equal(t, []any{"withdraw", "%acme%", "%acme%", "acme", "acme"}, count.Args)

	assert.Contains(t, data.SQL, "SELECT t.id, t.amount, c.name AS client_name FROM ")
	assert.Contains(t, data.SQL,
		`ORDER BY CASE WHEN (LOWER(c.name) = ? OR LOWER(CAST(t.amount AS TEXT)) = ?) THEN 0 ELSE 1 END ASC, `+
			`LOWER(c.name) ASC, t.created_at DESC, t.id ASC LIMIT ? OFFSET ?`)
	require.GreaterOrEqual(t, len(data.Args), len(count.Args))
	assert.Equal(t, count.Args, data.Args[:len(count.Args)])
	assert.Equal(t, []any{"acme", "acme", 20, 40}, data.Args[len(count.Args):])
}

func TestRenderer_NoConditions(t *testing.T) {
	plan := query.NewPlan(nil, query.ListRequest{
		Page: query.NewPageRequest(1, 10),
		Sort: mustSort(t, "", ""),
	})
	count := NewRenderer(SQLite{}).Count(testSource, plan)
	assert.NotContains(t, count.SQL, "WHERE")
	assert.Empty(t, count.Args)
}

func mustSort(t *testing.T, key, dir string) query.Sort {
	t.Helper()
	s, err := testSource.Sort.Resolve(key, dir)
	require.NoError(t, err)
	return s
}
