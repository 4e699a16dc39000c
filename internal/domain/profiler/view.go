package profiler

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientSummary is a profiler client with its derived profile count.
type ClientSummary struct {
	ID           uuid.UUID
	Name         string
	Email        string
	MobileNumber string
	Remark       string
	ProfileCount int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BankSummary is a profiler bank with its derived profile count.
type BankSummary struct {
	ID           uuid.UUID
	BankName     string
	Remark       string
	ProfileCount int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileRecord is a profile joined with its client and bank names.
type ProfileRecord struct {
	ID                      uuid.UUID
	ClientID                uuid.UUID
	BankID                  uuid.UUID
	ClientName              string
	BankName                string
	PrePlannedDepositAmount decimal.Decimal
	CurrentBalance          decimal.Decimal
	TotalWithdrawnAmount    decimal.Decimal
	RemainingBalance        decimal.Decimal
	CarryForwardEnabled     bool
	Status                  ProfileStatus
	Notes                   string
	MarkedDoneAt            *time.Time
	CarriedFromID           *uuid.UUID
	TransactionCount        int64
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// TransactionRecord is a profiler transaction joined with its profile owner.
type TransactionRecord struct {
	ID                        uuid.UUID
	ProfileID                 uuid.UUID
	ClientID                  uuid.UUID
	BankID                    uuid.UUID
	ClientName                string
	BankName                  string
	TransactionType           shared.TransactionType
	Amount                    decimal.Decimal
	WithdrawChargesPercentage decimal.NullDecimal
	WithdrawChargesAmount     decimal.Decimal
	Notes                     string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// ChargeAmount is the unrounded withdraw charge used for aggregation. Rows
// without a percentage fall back to the stored amount.
func (r TransactionRecord) ChargeAmount() decimal.Decimal {
	if r.TransactionType == shared.TransactionTypeWithdraw && r.WithdrawChargesPercentage.Valid {
		return shared.ChargeAmount(r.Amount, r.WithdrawChargesPercentage.Decimal)
	}
	return r.WithdrawChargesAmount
}
