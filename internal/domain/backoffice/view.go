package backoffice

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientSummary is a client row with its derived transaction count.
type ClientSummary struct {
	ID               uuid.UUID
	Name             string
	Email            string
	MobileNumber     string
	Address          string
	Remark           string
	TransactionCount int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InstrumentSummary is a bank or card row with its derived transaction count.
type InstrumentSummary struct {
	ID               uuid.UUID
	Name             string
	Remark           string
	TransactionCount int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TransactionRecord is a transaction joined with its counterpart names.
type TransactionRecord struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	BankID            *uuid.UUID
	CardID            *uuid.UUID
	TransactionType   shared.TransactionType
	TransactionAmount decimal.Decimal
	WidthdrawCharges  decimal.Decimal
	Remark            string
	ClientName        string
	BankName          string
	CardName          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ChargeAmount returns the withdraw charge of the record.
func (r TransactionRecord) ChargeAmount() decimal.Decimal {
	return shared.ChargeAmount(r.TransactionAmount, r.WidthdrawCharges)
}
