package profiler

import (
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a deposit or withdrawal on a profile. The withdraw charge is
// computed at creation and stored; later policy changes never touch it.
type Transaction struct {
	shared.BaseEntity
	ProfileID                 uuid.UUID
	Type                      shared.TransactionType
	Amount                    decimal.Decimal
	WithdrawChargesPercentage *decimal.Decimal
	WithdrawChargesAmount     decimal.Decimal
	Notes                     string
}

func newTransaction(profileID uuid.UUID, txType shared.TransactionType, amount decimal.Decimal, pct *decimal.Decimal, notes string) (*Transaction, error) {
	var errs shared.ValidationErrors
	if !txType.IsValid() {
		errs.Add("transaction_type", "must be one of: deposit, withdraw", string(txType))
	}
	errs.Merge("amount", shared.ValidateAmount("amount", amount))
	if pct != nil {
		errs.Merge("withdraw_charges_percentage", shared.ValidatePercentage("withdraw_charges_percentage", *pct))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	tx := &Transaction{
		BaseEntity:            shared.NewBaseEntity(),
		ProfileID:             profileID,
		Type:                  txType,
		Amount:                amount,
		WithdrawChargesAmount: decimal.Zero,
		Notes:                 notes,
	}
	if txType == shared.TransactionTypeWithdraw && pct != nil {
		p := *pct
		tx.WithdrawChargesPercentage = &p
		// cents, like the NUMERIC(18, 2) column; reports recompute it
		// unrounded through TransactionRecord.ChargeAmount
		tx.WithdrawChargesAmount = shared.ChargeAmount(amount, p).Round(2)
	}
	return tx, nil
}

// SetNotes replaces the free-text notes, the only mutable field.
func (t *Transaction) SetNotes(notes string) {
	t.Notes = notes
	t.Touch()
}
