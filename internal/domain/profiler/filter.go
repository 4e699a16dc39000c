package profiler

import (
	"time"

	"github.com/finops/backend/internal/domain/query"
	"github.com/shopspring/decimal"
)

// Column aliases of the read sources: pc = profiler_clients, pb =
// profiler_banks, p = profiler_profiles, pt = profiler_transactions,
// pn = per-owner profile counts, ptc = per-profile transaction counts.

// RemainingExpr computes the remaining balance of p.
const RemainingExpr = "(p.current_balance - p.total_withdrawn_amount)"

// OwnerFilter filters profiler clients and banks.
type OwnerFilter struct {
	MinProfiles *int64
	MaxProfiles *int64
	From        *time.Time
	To          *time.Time
}

// ParseOwnerFilter reads min_profiles, max_profiles, start_date and end_date.
func ParseOwnerFilter(v *query.Values) OwnerFilter {
	return OwnerFilter{
		MinProfiles: v.Int("min_profiles"),
		MaxProfiles: v.Int("max_profiles"),
		From:        v.Date("start_date"),
		To:          v.Date("end_date"),
	}
}

// Conditions renders the filter for a source aliased as alias.
func (f OwnerFilter) Conditions(alias string) ([]query.Condition, error) {
	return query.NewBuilder().
		IntRange("COALESCE(pn.profile_count, 0)", "profiles", f.MinProfiles, f.MaxProfiles).
		Dates(alias+".created_at", f.From, f.To).
		Build()
}

// ProfileFilter filters profiles.
type ProfileFilter struct {
	ClientIDs    []string
	BankIDs      []string
	Status       *string
	CarryForward *bool
	MinBalance   *decimal.Decimal
	MaxBalance   *decimal.Decimal
	MinRemaining *decimal.Decimal
	MaxRemaining *decimal.Decimal
	From         *time.Time
	To           *time.Time
}

// ParseProfileFilter reads the profile filter parameters.
func ParseProfileFilter(v *query.Values) ProfileFilter {
	f := ProfileFilter{
		ClientIDs:    v.UUIDs("client_ids"),
		BankIDs:      v.UUIDs("bank_ids"),
		Status:       v.Enum("status", string(ProfileStatusActive), string(ProfileStatusDone)),
		CarryForward: v.Bool("carry_forward_enabled"),
		MinBalance:   v.Decimal("min_balance"),
		MaxBalance:   v.Decimal("max_balance"),
		MinRemaining: v.Decimal("min_remaining"),
		MaxRemaining: v.Decimal("max_remaining"),
		From:         v.Date("start_date"),
		To:           v.Date("end_date"),
	}
	if id := v.UUID("client_id"); id != nil {
		f.ClientIDs = append(f.ClientIDs, id.String())
	}
	if id := v.UUID("bank_id"); id != nil {
		f.BankIDs = append(f.BankIDs, id.String())
	}
	return f
}

// Conditions renders the filter.
func (f ProfileFilter) Conditions() ([]query.Condition, error) {
	b := query.NewBuilder().
		In("p.client_id", f.ClientIDs).
		In("p.bank_id", f.BankIDs)
	if f.Status != nil {
		b.Eq("p.status", *f.Status)
	}
	if f.CarryForward != nil {
		b.Eq("p.carry_forward_enabled", *f.CarryForward)
	}
	return b.
		DecimalRange("p.current_balance", "balance", f.MinBalance, f.MaxBalance).
		DecimalRange(RemainingExpr, "remaining", f.MinRemaining, f.MaxRemaining).
		Dates("p.created_at", f.From, f.To).
		Build()
}

// TransactionFilter filters profiler transactions.
type TransactionFilter struct {
	ProfileIDs []string
	ClientIDs  []string
	BankIDs    []string
	Type       *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	From       *time.Time
	To         *time.Time
}

// ParseTransactionFilter reads the profiler transaction filter parameters.
func ParseTransactionFilter(v *query.Values) TransactionFilter {
	f := TransactionFilter{
		ProfileIDs: v.UUIDs("profile_ids"),
		ClientIDs:  v.UUIDs("client_ids"),
		BankIDs:    v.UUIDs("bank_ids"),
		Type:       v.Enum("transaction_type", "deposit", "withdraw"),
		MinAmount:  v.Decimal("min_amount"),
		MaxAmount:  v.Decimal("max_amount"),
		From:       v.Date("start_date"),
		To:         v.Date("end_date"),
	}
	if id := v.UUID("profile_id"); id != nil {
		f.ProfileIDs = append(f.ProfileIDs, id.String())
	}
	if id := v.UUID("client_id"); id != nil {
		f.ClientIDs = append(f.ClientIDs, id.String())
	}
	return f
}

// Conditions renders the filter.
func (f TransactionFilter) Conditions() ([]query.Condition, error) {
	b := query.NewBuilder().
		In("pt.profile_id", f.ProfileIDs).
		In("p.client_id", f.ClientIDs).
		In("p.bank_id", f.BankIDs)
	if f.Type != nil {
		b.Eq("pt.transaction_type", *f.Type)
	}
	return b.
		DecimalRange("pt.amount", "amount", f.MinAmount, f.MaxAmount).
		Dates("pt.created_at", f.From, f.To).
		Build()
}

var (
	// ClientSearchColumns are matched by the profiler client search.
	ClientSearchColumns = []string{"pc.name", "pc.email", "pc.mobile_number", "pc.remark"}
	// BankSearchColumns are matched by the profiler bank search.
	BankSearchColumns = []string{"pb.bank_name", "pb.remark"}
	// ProfileSearchColumns are matched by the profile search.
	ProfileSearchColumns = []string{
		"pc.name", "pb.bank_name", "p.notes", "CAST(p.pre_planned_deposit_amount AS TEXT)",
	}
	// TransactionSearchColumns are matched by the profiler transaction search.
	TransactionSearchColumns = []string{
		"pc.name", "pb.bank_name", "pt.notes", "CAST(pt.amount AS TEXT)",
	}
)

// ClientSort is the profiler client sort whitelist.
var ClientSort = &query.SortTable{
	Keys: map[string]query.SortKey{
		"name":          {Expr: "pc.name", Text: true},
		"email":         {Expr: "pc.email", Text: true, LowCardinality: true},
		"created_at":    {Expr: "pc.created_at"},
		"profile_count": {Expr: "COALESCE(pn.profile_count, 0)", LowCardinality: true},
	},
	DefaultKey:       "name",
	DefaultDirection: query.Asc,
	TieBreak:         "pc.created_at",
	Unique:           "pc.id",
}

// BankSort is the profiler bank sort whitelist.
var BankSort = &query.SortTable{
	Keys: map[string]query.SortKey{
		"bank_name":     {Expr: "pb.bank_name", Text: true},
		"created_at":    {Expr: "pb.created_at"},
		"profile_count": {Expr: "COALESCE(pn.profile_count, 0)", LowCardinality: true},
	},
	DefaultKey:       "bank_name",
	DefaultDirection: query.Asc,
	TieBreak:         "pb.created_at",
	Unique:           "pb.id",
}

// ProfileSort is the profile sort whitelist.
var ProfileSort = &query.SortTable{
	Keys: map[string]query.SortKey{
		"created_at":                 {Expr: "p.created_at"},
		"updated_at":                 {Expr: "p.updated_at"},
		"client_name":                {Expr: "pc.name", Text: true, LowCardinality: true},
		"bank_name":                  {Expr: "pb.bank_name", Text: true, LowCardinality: true},
		"pre_planned_deposit_amount": {Expr: "p.pre_planned_deposit_amount"},
		"current_balance":            {Expr: "p.current_balance"},
		"total_withdrawn_amount":     {Expr: "p.total_withdrawn_amount"},
		"remaining_balance":          {Expr: RemainingExpr},
		"status":                     {Expr: "p.status", LowCardinality: true},
		"transaction_count":          {Expr: "COALESCE(ptc.transaction_count, 0)", LowCardinality: true},
	},
	DefaultKey:       "created_at",
	DefaultDirection: query.Desc,
	TieBreak:         "p.created_at",
	Unique:           "p.id",
}

// TransactionSort is the profiler transaction sort whitelist.
var TransactionSort = &query.SortTable{
	Keys: map[string]query.SortKey{
		"created_at":              {Expr: "pt.created_at"},
		"amount":                  {Expr: "pt.amount"},
		"withdraw_charges_amount": {Expr: "pt.withdraw_charges_amount", LowCardinality: true},
		"transaction_type":        {Expr: "pt.transaction_type", LowCardinality: true},
		"client_name":             {Expr: "pc.name", Text: true, LowCardinality: true},
		"bank_name":               {Expr: "pb.bank_name", Text: true, LowCardinality: true},
	},
	DefaultKey:       "created_at",
	DefaultDirection: query.Desc,
	TieBreak:         "pt.created_at",
	Unique:           "pt.id",
}
