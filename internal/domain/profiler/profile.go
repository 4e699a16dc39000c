// Package profiler models financial profiles: a planned deposit for one client
// at one bank, drawn down by withdrawals until the profile is marked done.
package profiler

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfileStatus is the lifecycle state of a profile.
type ProfileStatus string

const (
	ProfileStatusActive ProfileStatus = "active"
	ProfileStatusDone   ProfileStatus = "done"
)

// IsValid returns true if the status is valid
func (s ProfileStatus) IsValid() bool {
	return s == ProfileStatusActive || s == ProfileStatusDone
}

// Error codes raised by the ledger.
const (
	CodeProfileDone      = "PROFILE_DONE"
	CodeProfileNotActive = "PROFILE_NOT_ACTIVE"
)

// Profile is the running balance of one client at one bank.
//
// CurrentBalance opens at PrePlannedDepositAmount and moves only with
// deposits. A withdrawal leaves it untouched and grows TotalWithdrawnAmount
// instead, so RemainingBalance still drops by exactly the withdrawn amount
// while the two totals stay separately reportable. Charges are tracked on
// the transactions and never reduce the balance.
type Profile struct {
	shared.BaseEntity
	ClientID                uuid.UUID
	BankID                  uuid.UUID
	PrePlannedDepositAmount decimal.Decimal
	CurrentBalance          decimal.Decimal
	TotalWithdrawnAmount    decimal.Decimal
	CarryForwardEnabled     bool
	Status                  ProfileStatus
	Notes                   string
	MarkedDoneAt            *time.Time
	// CarriedFromID links a profile opened by carry-forward to its predecessor.
	CarriedFromID *uuid.UUID
}

// ProfileInput carries the fields of a new profile.
type ProfileInput struct {
	ClientID                uuid.UUID
	BankID                  uuid.UUID
	PrePlannedDepositAmount decimal.Decimal
	CarryForwardEnabled     bool
	Notes                   string
}

// ProfilePatch is a selective update. Only notes may change once the profile is done.
type ProfilePatch struct {
	PrePlannedDepositAmount *decimal.Decimal
	CarryForwardEnabled     *bool
	Notes                   *string
}

// NewProfile opens an active profile whose balance starts at the planned deposit.
func NewProfile(in ProfileInput) (*Profile, error) {
	var errs shared.ValidationErrors
	if in.ClientID == uuid.Nil {
		errs.Add("client_id", "is required")
	}
	if in.BankID == uuid.Nil {
		errs.Add("bank_id", "is required")
	}
	if in.PrePlannedDepositAmount.IsNegative() {
		errs.Add("pre_planned_deposit_amount", "must not be negative", in.PrePlannedDepositAmount.String())
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &Profile{
		BaseEntity:              shared.NewBaseEntity(),
		ClientID:                in.ClientID,
		BankID:                  in.BankID,
		PrePlannedDepositAmount: in.PrePlannedDepositAmount,
		CurrentBalance:          in.PrePlannedDepositAmount,
		TotalWithdrawnAmount:    decimal.Zero,
		CarryForwardEnabled:     in.CarryForwardEnabled,
		Status:                  ProfileStatusActive,
		Notes:                   in.Notes,
	}, nil
}

// RemainingBalance is CurrentBalance - TotalWithdrawnAmount.
func (p *Profile) RemainingBalance() decimal.Decimal {
	return p.CurrentBalance.Sub(p.TotalWithdrawnAmount)
}

// IsDone reports whether the profile is closed.
func (p *Profile) IsDone() bool {
	return p.Status == ProfileStatusDone
}

// Record appends a transaction to the profile and applies its balance effect.
// pct is only meaningful for withdrawals; the charge is computed here once and
// stored on the transaction.
func (p *Profile) Record(txType shared.TransactionType, amount decimal.Decimal, pct *decimal.Decimal, notes string) (*Transaction, error) {
	if p.IsDone() {
		return nil, shared.NewConflictError(CodeProfileDone, "Cannot add transactions to a completed profile")
	}
	tx, err := newTransaction(p.ID, txType, amount, pct, notes)
	if err != nil {
		return nil, err
	}
	p.apply(tx, false)
	return tx, nil
}

// Reverse removes the balance effect of tx, which must belong to the profile.
func (p *Profile) Reverse(tx *Transaction) error {
	if tx.ProfileID != p.ID {
		return shared.NewValidationError("Invalid request parameters",
			shared.FieldError{Field: "profile_id", Message: "transaction belongs to another profile"})
	}
	if p.IsDone() {
		return shared.NewConflictError(CodeProfileDone, "Cannot remove transactions from a completed profile")
	}
	p.apply(tx, true)
	return nil
}

func (p *Profile) apply(tx *Transaction, reverse bool) {
	amount := tx.Amount
	if reverse {
		amount = amount.Neg()
	}
	switch tx.Type {
	case shared.TransactionTypeDeposit:
		p.CurrentBalance = p.CurrentBalance.Add(amount)
	case shared.TransactionTypeWithdraw:
		p.TotalWithdrawnAmount = p.TotalWithdrawnAmount.Add(amount)
	}
	p.Touch()
}

// Apply updates the fields set in patch.
func (p *Profile) Apply(patch ProfilePatch) error {
	if p.IsDone() && (patch.PrePlannedDepositAmount != nil || patch.CarryForwardEnabled != nil) {
		return shared.NewConflictError(CodeProfileDone, "Completed profiles only accept note changes")
	}
	if patch.PrePlannedDepositAmount != nil {
		planned := *patch.PrePlannedDepositAmount
		if planned.IsNegative() {
			return shared.NewValidationError("Invalid request parameters", shared.FieldError{
				Field: "pre_planned_deposit_amount", Message: "must not be negative", Value: planned.String(),
			})
		}
		// the opening balance moves with the plan; deposits stay on top of it
		p.CurrentBalance = p.CurrentBalance.Add(planned.Sub(p.PrePlannedDepositAmount))
		p.PrePlannedDepositAmount = planned
	}
	if patch.CarryForwardEnabled != nil {
		p.CarryForwardEnabled = *patch.CarryForwardEnabled
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	p.Touch()
	return nil
}

// MarkDone closes an active profile.
func (p *Profile) MarkDone(now time.Time) error {
	if p.Status != ProfileStatusActive {
		return shared.NewConflictError(CodeProfileNotActive, "Only active profiles can be marked done")
	}
	p.Status = ProfileStatusDone
	p.MarkedDoneAt = &now
	p.UpdatedAt = now
	return nil
}

// CarryForward opens the successor of a done profile with the remaining
// balance as its planned deposit. It returns nil when carry-forward is off or
// nothing remains.
func (p *Profile) CarryForward() (*Profile, error) {
	if !p.IsDone() {
		return nil, shared.NewConflictError(CodeProfileNotActive, "Only completed profiles can carry forward")
	}
	remaining := p.RemainingBalance()
	if !p.CarryForwardEnabled || !remaining.IsPositive() {
		return nil, nil
	}
	next, err := NewProfile(ProfileInput{
		ClientID:                p.ClientID,
		BankID:                  p.BankID,
		PrePlannedDepositAmount: remaining,
		CarryForwardEnabled:     true,
		Notes:                   "Carried forward from profile " + p.ID.String(),
	})
	if err != nil {
		return nil, err
	}
	from := p.ID
	next.CarriedFromID = &from
	return next, nil
}
