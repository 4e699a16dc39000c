package backoffice

import (
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a deposit or withdrawal made by a client, optionally through
// a bank and with a card. Transactions are hard deleted.
type Transaction struct {
	shared.BaseEntity
	ClientID         uuid.UUID
	BankID           *uuid.UUID
	CardID           *uuid.UUID
	Type             shared.TransactionType
	Amount           decimal.Decimal
	ChargePercentage decimal.Decimal
	Remark           string
}

// TransactionInput carries the fields of a new transaction.
type TransactionInput struct {
	ClientID         uuid.UUID
	BankID           *uuid.UUID
	CardID           *uuid.UUID
	Type             shared.TransactionType
	Amount           decimal.Decimal
	ChargePercentage decimal.Decimal
	Remark           string
}

// TransactionPatch is a selective update. Setting BankID or CardID to
// uuid.Nil detaches the reference.
type TransactionPatch struct {
	ClientID         *uuid.UUID
	BankID           *uuid.UUID
	CardID           *uuid.UUID
	Type             *shared.TransactionType
	Amount           *decimal.Decimal
	ChargePercentage *decimal.Decimal
	Remark           *string
}

// NewTransaction creates a validated transaction.
func NewTransaction(in TransactionInput) (*Transaction, error) {
	t := &Transaction{
		BaseEntity:       shared.NewBaseEntity(),
		ClientID:         in.ClientID,
		BankID:           nonNil(in.BankID),
		CardID:           nonNil(in.CardID),
		Type:             in.Type,
		Amount:           in.Amount,
		ChargePercentage: in.ChargePercentage,
		Remark:           in.Remark,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply updates the fields set in p. The transaction is left unchanged when
// the result would be invalid.
func (t *Transaction) Apply(p TransactionPatch) error {
	next := *t
	if p.ClientID != nil {
		next.ClientID = *p.ClientID
	}
	if p.BankID != nil {
		next.BankID = nonNil(p.BankID)
	}
	if p.CardID != nil {
		next.CardID = nonNil(p.CardID)
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.ChargePercentage != nil {
		next.ChargePercentage = *p.ChargePercentage
	}
	if p.Remark != nil {
		next.Remark = *p.Remark
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.Touch()
	*t = next
	return nil
}

// Charges returns the withdraw charge implied by the stored percentage.
func (t *Transaction) Charges() decimal.Decimal {
	return shared.ChargeAmount(t.Amount, t.ChargePercentage)
}

func (t *Transaction) validate() error {
	var errs shared.ValidationErrors
	if t.ClientID == uuid.Nil {
		errs.Add("client_id", "is required")
	}
	if !t.Type.IsValid() {
		errs.Add("transaction_type", "must be one of: deposit, withdraw", string(t.Type))
	}
	errs.Merge("transaction_amount", shared.ValidateAmount("transaction_amount", t.Amount))
	errs.Merge("widthdraw_charges", shared.ValidatePercentage("widthdraw_charges", t.ChargePercentage))
	return errs.Err()
}

func nonNil(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}
