// Package report folds ordered transaction rows into per-group signed totals.
package report

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Entry is one transaction fed to the Aggregator.
type Entry struct {
	// GroupKey identifies the group: a client name, or a profile id.
	GroupKey   string
	GroupLabel string
	Type       shared.TransactionType
	Amount     decimal.Decimal
	// Charges is the withdraw charge of the row: the stored frozen amount when
	// the source has one, otherwise amount × pct / 100.
	Charges decimal.Decimal
	At      time.Time
	Bank    string
	Card    string
	Remark  string
}

// SignedAmount is +Amount for deposits and -Amount for withdrawals.
func (e Entry) SignedAmount() decimal.Decimal {
	return e.Type.Signed(e.Amount)
}

// Group is the folded result of one group.
//
// TransactionAmount and FinalAmount are display values: for a group that only
// ever withdrew (IsOnlyWithdraw) both show the charges total instead of the
// negative transaction sum. RawTransactionAmount keeps the signed sum.
type Group struct {
	Key                  string          `json:"key"`
	Label                string          `json:"label"`
	TransactionCount     int             `json:"transaction_count"`
	DepositTotal         decimal.Decimal `json:"deposit_total"`
	WithdrawTotal        decimal.Decimal `json:"withdraw_total"`
	RawTransactionAmount decimal.Decimal `json:"raw_transaction_amount"`
	TransactionAmount    decimal.Decimal `json:"transaction_amount"`
	WithdrawCharges      decimal.Decimal `json:"widthdraw_charges"`
	FinalAmount          decimal.Decimal `json:"final_amount"`
	IsOnlyWithdraw       bool            `json:"isOnlyWithdraw"`
	FirstTransactionAt   time.Time       `json:"first_transaction_at"`
	LastTransactionAt    time.Time       `json:"last_transaction_at"`
	Display              Display         `json:"display"`
	Entries              []Entry         `json:"-"`

	sawDeposit bool
}

// Display holds the formatted currency values of a group or total.
type Display struct {
	TransactionAmount string `json:"transaction_amount"`
	WithdrawCharges   string `json:"widthdraw_charges"`
	FinalAmount       string `json:"final_amount"`
}

// Totals sums the display values over all groups.
type Totals struct {
	GroupCount        int             `json:"group_count"`
	TransactionCount  int             `json:"transaction_count"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	WithdrawCharges   decimal.Decimal `json:"widthdraw_charges"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	Display           Display         `json:"display"`
}

// Aggregator folds entries into groups, keeping first-seen group order.
// The zero value is not usable; call NewAggregator.
type Aggregator struct {
	groups      map[string]*Group
	order       []string
	keepEntries bool
}

// NewAggregator creates an Aggregator. With keepEntries each group retains its
// entries for detailed rendering.
func NewAggregator(keepEntries bool) *Aggregator {
	return &Aggregator{groups: make(map[string]*Group), keepEntries: keepEntries}
}

// Add folds one entry into its group.
func (a *Aggregator) Add(e Entry) {
	g, ok := a.groups[e.GroupKey]
	if !ok {
		label := e.GroupLabel
		if label == "" {
			label = e.GroupKey
		}
		g = &Group{
			Key:                  e.GroupKey,
			Label:                label,
			DepositTotal:         decimal.Zero,
			WithdrawTotal:        decimal.Zero,
			RawTransactionAmount: decimal.Zero,
			WithdrawCharges:      decimal.Zero,
			FirstTransactionAt:   e.At,
		}
		a.groups[e.GroupKey] = g
		a.order = append(a.order, e.GroupKey)
	}

	g.TransactionCount++
	switch e.Type {
	case shared.TransactionTypeDeposit:
		g.DepositTotal = g.DepositTotal.Add(e.Amount)
		g.sawDeposit = true
	case shared.TransactionTypeWithdraw:
		g.WithdrawTotal = g.WithdrawTotal.Add(e.Amount)
	}
	g.RawTransactionAmount = g.RawTransactionAmount.Add(e.SignedAmount())
	g.WithdrawCharges = g.WithdrawCharges.Add(e.Charges)
	if e.At.Before(g.FirstTransactionAt) {
		g.FirstTransactionAt = e.At
	}
	if e.At.After(g.LastTransactionAt) {
		g.LastTransactionAt = e.At
	}
	if a.keepEntries {
		g.Entries = append(g.Entries, e)
	}
}

// Len is the number of groups seen so far.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Groups finalizes and returns the groups in first-seen order.
func (a *Aggregator) Groups() []Group {
	out := make([]Group, 0, len(a.order))
	for _, key := range a.order {
		g := *a.groups[key]
		g.IsOnlyWithdraw = !g.sawDeposit && g.TransactionCount > 0
		if g.IsOnlyWithdraw {
			g.TransactionAmount = g.WithdrawCharges
			g.FinalAmount = g.WithdrawCharges
		} else {
			g.TransactionAmount = g.RawTransactionAmount
			g.FinalAmount = g.RawTransactionAmount.Add(g.WithdrawCharges)
		}
		g.Display = display(g.TransactionAmount, g.WithdrawCharges, g.FinalAmount)
		out = append(out, g)
	}
	return out
}

// Total sums the displayed values of groups.
func Total(groups []Group) Totals {
	t := Totals{
		GroupCount:        len(groups),
		TransactionAmount: decimal.Zero,
		WithdrawCharges:   decimal.Zero,
		FinalAmount:       decimal.Zero,
	}
	for _, g := range groups {
		t.TransactionCount += g.TransactionCount
		t.TransactionAmount = t.TransactionAmount.Add(g.TransactionAmount)
		t.WithdrawCharges = t.WithdrawCharges.Add(g.WithdrawCharges)
		t.FinalAmount = t.FinalAmount.Add(g.FinalAmount)
	}
	t.Display = display(t.TransactionAmount, t.WithdrawCharges, t.FinalAmount)
	return t
}

func display(amount, charges, final decimal.Decimal) Display {
	return Display{
		TransactionAmount: FormatCurrency(amount),
		WithdrawCharges:   FormatCurrency(charges),
		FinalAmount:       FormatCurrency(final),
	}
}
