package backoffice

import (
	"time"

	"github.com/finops/backend/internal/domain/query"
	"github.com/shopspring/decimal"
)

// Column aliases of the read sources: c = clients, b = banks, k = cards,
// t = transactions, tc = per-owner transaction counts.

// CounterpartyFilter filters clients, banks and cards.
type CounterpartyFilter struct {
	MinTransactions *int64
	MaxTransactions *int64
	From            *time.Time
	To              *time.Time
}

// ParseCounterpartyFilter reads min_transactions, max_transactions,
// start_date and end_date.
func ParseCounterpartyFilter(v *query.Values) CounterpartyFilter {
	return CounterpartyFilter{
		MinTransactions: v.Int("min_transactions"),
		MaxTransactions: v.Int("max_transactions"),
		From:            v.Date("start_date"),
		To:              v.Date("end_date"),
	}
}

// Conditions renders the filter for a source aliased as alias.
func (f CounterpartyFilter) Conditions(alias string) ([]query.Condition, error) {
	return query.NewBuilder().
		IntRange("COALESCE(tc.transaction_count, 0)", "transactions", f.MinTransactions, f.MaxTransactions).
		Dates(alias+".created_at", f.From, f.To).
		Build()
}

// TransactionFilter filters transactions.
type TransactionFilter struct {
	ClientIDs  []string
	BankIDs    []string
	CardIDs    []string
	Type       *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	MinCharges *decimal.Decimal
	MaxCharges *decimal.Decimal
	From       *time.Time
	To         *time.Time
}

// ParseTransactionFilter reads the transaction filter parameters. client_id
// is accepted as an alias of client_ids.
func ParseTransactionFilter(v *query.Values) TransactionFilter {
	f := TransactionFilter{
		ClientIDs:  v.UUIDs("client_ids"),
		BankIDs:    v.UUIDs("bank_ids"),
		CardIDs:    v.UUIDs("card_ids"),
		Type:       v.Enum("transaction_type", "deposit", "withdraw"),
		MinAmount:  v.Decimal("min_amount"),
		MaxAmount:  v.Decimal("max_amount"),
		MinCharges: v.Decimal("min_charges"),
		MaxCharges: v.Decimal("max_charges"),
		From:       v.Date("start_date"),
		To:         v.Date("end_date"),
	}
	if id := v.UUID("client_id"); id != nil {
		f.ClientIDs = append(f.ClientIDs, id.String())
	}
	return f
}

// Conditions renders the filter. Inverted ranges are a validation error.
func (f TransactionFilter) Conditions() ([]query.Condition, error) {
	b := query.NewBuilder().
		In("t.client_id", f.ClientIDs).
		In("t.bank_id", f.BankIDs).
		In("t.card_id", f.CardIDs)
	if f.Type != nil {
		b.Eq("t.transaction_type", *f.Type)
	}
	return b.
		DecimalRange("t.transaction_amount", "amount", f.MinAmount, f.MaxAmount).
		DecimalRange("t.widthdraw_charges", "charges", f.MinCharges, f.MaxCharges).
		Dates("t.created_at", f.From, f.To).
		Build()
}

var (
	// ClientSearchColumns are matched by the client list search.
	ClientSearchColumns = []string{"c.name", "c.email", "c.mobile_number", "c.address", "c.remark"}
	// BankSearchColumns are matched by the bank list search.
	BankSearchColumns = []string{"b.name", "b.remark"}
	// CardSearchColumns are matched by the card list search.
	CardSearchColumns = []string{"k.name", "k.remark"}
	// TransactionSearchColumns are matched by the transaction list search.
	TransactionSearchColumns = []string{
		"c.name", "b.name", "k.name", "t.remark", "CAST(t.transaction_amount AS TEXT)",
	}
)

// ClientSort is the client sort whitelist.
var ClientSort = &query.SortTable{
	Keys: map[string]query.SortKey{
		"name":              {Expr: "c.name", Text: true},
		"email":             {Expr: "c.email", Text: true, LowCardinality: true},
		"created_at":        {Expr: "c.created_at"},
		"updated_at":        {Expr: "c.updated_at"},
		"transaction_count": {Expr: "COALESCE(tc.transaction_count, 0)", LowCardinality: true},
	},
	DefaultKey:       "name",
	DefaultDirection: query.Asc,
	TieBreak:         "c.created_at",
	Unique:           "c.id",
}

// BankSort is the bank sort whitelist.
var BankSort = instrumentSort("b")

// CardSort is the card sort whitelist.
var CardSort = instrumentSort("k")

func instrumentSort(alias string) *query.SortTable {
	return &query.SortTable{
		Keys: map[string]query.SortKey{
			"name":              {Expr: alias + ".name", Text: true},
			"created_at":        {Expr: alias + ".created_at"},
			"updated_at":        {Expr: alias + ".updated_at"},
			"transaction_count": {Expr: "COALESCE(tc.transaction_count, 0)", LowCardinality: true},
		},
		DefaultKey:       "name",
		DefaultDirection: query.Asc,
		TieBreak:         alias + ".created_at",
		Unique:           alias + ".id",
	}
}

// TransactionSort is the transaction sort whitelist.
var TransactionSort = &query.SortTable{
	Keys: map[string]query.SortKey{
		"created_at":         {Expr: "t.created_at"},
		"updated_at":         {Expr: "t.updated_at"},
		"transaction_amount": {Expr: "t.transaction_amount"},
		"widthdraw_charges":  {Expr: "t.widthdraw_charges", LowCardinality: true},
		"transaction_type":   {Expr: "t.transaction_type", LowCardinality: true},
		"client_name":        {Expr: "c.name", Text: true, LowCardinality: true},
		"bank_name":          {Expr: "COALESCE(b.name, '')", Text: true, LowCardinality: true},
		"card_name":          {Expr: "COALESCE(k.name, '')", Text: true, LowCardinality: true},
	},
	DefaultKey:       "created_at",
	DefaultDirection: query.Desc,
	TieBreak:         "t.created_at",
	Unique:           "t.id",
}
