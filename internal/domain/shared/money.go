package shared

import "github.com/shopspring/decimal"

// TransactionType discriminates the direction of a transaction.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
)

// TransactionTypes lists the accepted values in display order.
var TransactionTypes = []string{string(TransactionTypeDeposit), string(TransactionTypeWithdraw)}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdraw
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Signed returns amount for deposits and -amount for withdrawals.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionTypeWithdraw {
		return amount.Neg()
	}
	return amount
}

var hundred = decimal.NewFromInt(100)

// ChargeAmount returns amount × pct / 100, unrounded.
func ChargeAmount(amount, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(pct).Div(hundred)
}

// ValidatePercentage checks that pct lies in [0,100].
func ValidatePercentage(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return NewValidationError("Invalid request parameters",
			FieldError{Field: field, Message: "must be between 0 and 100", Value: pct.String()})
	}
	return nil
}

// ValidateAmount checks that amount is strictly positive.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError("Invalid request parameters",
			FieldError{Field: field, Message: "must be greater than 0", Value: amount.String()})
	}
	return nil
}
