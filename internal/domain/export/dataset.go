package export

import (
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/report"
)

// Dataset binds a row type to its export name, field set and report grouping.
type Dataset[R any] struct {
	Name   string
	Title  string
	Fields *FieldSet[R]
	// Entry maps a row to its aggregation entry for grouped documents.
	Entry func(R) report.Entry
}

// Transactions exports back-office transactions grouped by client.
var Transactions = Dataset[backoffice.TransactionRecord]{
	Name:  "transactions",
	Title: "client transaction report",
	Fields: NewFieldSet(
		Field[backoffice.TransactionRecord]{Key: "id", Label: "ID", Width: 36, Optional: true,
			Value: func(r backoffice.TransactionRecord) any { return r.ID }},
		Field[backoffice.TransactionRecord]{Key: "created_at", Label: "Date", Width: 19,
			Value: func(r backoffice.TransactionRecord) any { return r.CreatedAt }},
		Field[backoffice.TransactionRecord]{Key: "client_name", Label: "Client", Width: 18,
			Value: func(r backoffice.TransactionRecord) any { return r.ClientName }},
		Field[backoffice.TransactionRecord]{Key: "bank_name", Label: "Bank", Width: 14,
			Value: func(r backoffice.TransactionRecord) any { return r.BankName }},
		Field[backoffice.TransactionRecord]{Key: "card_name", Label: "Card", Width: 14,
			Value: func(r backoffice.TransactionRecord) any { return r.CardName }},
		Field[backoffice.TransactionRecord]{Key: "transaction_type", Label: "Type", Width: 8,
			Value: func(r backoffice.TransactionRecord) any { return r.TransactionType }},
		Field[backoffice.TransactionRecord]{Key: "transaction_amount", Label: "Amount", Width: 10,
			Value: func(r backoffice.TransactionRecord) any { return r.TransactionAmount }},
		Field[backoffice.TransactionRecord]{Key: "widthdraw_charges", Label: "Withdraw Charges (%)", Width: 4,
			Value: func(r backoffice.TransactionRecord) any { return r.WidthdrawCharges }},
		Field[backoffice.TransactionRecord]{Key: "charge_amount", Label: "Charge Amount", Width: 7,
			Value: func(r backoffice.TransactionRecord) any { return r.ChargeAmount() }},
		Field[backoffice.TransactionRecord]{Key: "remark", Label: "Remark", Width: 24,
			Value: func(r backoffice.TransactionRecord) any { return r.Remark }},
	),
	Entry: func(r backoffice.TransactionRecord) report.Entry {
		return report.Entry{
			GroupKey: r.ClientName,
			Type:     r.TransactionType,
			Amount:   r.TransactionAmount,
			Charges:  r.ChargeAmount(),
			At:       r.CreatedAt,
			Bank:     r.BankName,
			Card:     r.CardName,
			Remark:   r.Remark,
		}
	},
}

// ProfilerTransactions exports profiler transactions grouped by profile.
var ProfilerTransactions = Dataset[profiler.TransactionRecord]{
	Name:  "profiler_transactions",
	Title: "profile transaction report",
	Fields: NewFieldSet(
		Field[profiler.TransactionRecord]{Key: "id", Label: "ID", Width: 36, Optional: true,
			Value: func(r profiler.TransactionRecord) any { return r.ID }},
		Field[profiler.TransactionRecord]{Key: "profile_id", Label: "Profile", Width: 36, Optional: true,
			Value: func(r profiler.TransactionRecord) any { return r.ProfileID }},
		Field[profiler.TransactionRecord]{Key: "created_at", Label: "Date", Width: 19,
			Value: func(r profiler.TransactionRecord) any { return r.CreatedAt }},
		Field[profiler.TransactionRecord]{Key: "client_name", Label: "Client", Width: 18,
			Value: func(r profiler.TransactionRecord) any { return r.ClientName }},
		Field[profiler.TransactionRecord]{Key: "bank_name", Label: "Bank", Width: 14,
			Value: func(r profiler.TransactionRecord) any { return r.BankName }},
		Field[profiler.TransactionRecord]{Key: "transaction_type", Label: "Type", Width: 8,
			Value: func(r profiler.TransactionRecord) any { return r.TransactionType }},
		Field[profiler.TransactionRecord]{Key: "amount", Label: "Amount", Width: 10,
			Value: func(r profiler.TransactionRecord) any { return r.Amount }},
		Field[profiler.TransactionRecord]{Key: "withdraw_charges_percentage", Label: "Charge (%)", Width: 4,
			Value: func(r profiler.TransactionRecord) any { return r.WithdrawChargesPercentage }},
		Field[profiler.TransactionRecord]{Key: "withdraw_charges_amount", Label: "Charge Amount", Width: 7,
			Value: func(r profiler.TransactionRecord) any { return r.WithdrawChargesAmount }},
		Field[profiler.TransactionRecord]{Key: "notes", Label: "Notes", Width: 24,
			Value: func(r profiler.TransactionRecord) any { return r.Notes }},
	),
	Entry: func(r profiler.TransactionRecord) report.Entry {
		return report.Entry{
			GroupKey:   r.ProfileID.String(),
			GroupLabel: r.ClientName + " / " + r.BankName,
			Type:       r.TransactionType,
			Amount:     r.Amount,
			Charges:    r.ChargeAmount(),
			At:         r.CreatedAt,
			Bank:       r.BankName,
			Remark:     r.Notes,
		}
	},
}
