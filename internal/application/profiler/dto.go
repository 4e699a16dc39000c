package profiler

import (
	"time"

	"github.com/finops/backend/internal/domain/profiler"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Client and bank DTOs
// =============================================================================

// CreateClientRequest creates a profiler client
type CreateClientRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Email        string `json:"email" binding:"omitempty,email,max=200"`
	MobileNumber string `json:"mobile_number" binding:"max=50"`
	Remark       string `json:"remark"`
}

// UpdateClientRequest is a selective update of a profiler client
type UpdateClientRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email        *string `json:"email" binding:"omitempty,email,max=200"`
	MobileNumber *string `json:"mobile_number" binding:"omitempty,max=50"`
	Remark       *string `json:"remark"`
}

// ClientResponse represents a profiler client in API responses
type ClientResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number"`
	Remark       string    `json:"remark"`
	ProfileCount int64     `json:"profile_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToClientResponse converts a client summary row to a response
func ToClientResponse(c profiler.ClientSummary) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		MobileNumber: c.MobileNumber,
		Remark:       c.Remark,
		ProfileCount: c.ProfileCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// CreateBankRequest creates a profiler bank
type CreateBankRequest struct {
	BankName string `json:"bank_name" binding:"required,min=1,max=200"`
	Remark   string `json:"remark"`
}

// UpdateBankRequest is a selective update of a profiler bank
type UpdateBankRequest struct {
	BankName *string `json:"bank_name" binding:"omitempty,min=1,max=200"`
	Remark   *string `json:"remark"`
}

// BankResponse represents a profiler bank in API responses
type BankResponse struct {
	ID           uuid.UUID `json:"id"`
	BankName     string    `json:"bank_name"`
	Remark       string    `json:"remark"`
	ProfileCount int64     `json:"profile_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToBankResponse converts a bank summary row to a response
func ToBankResponse(b profiler.BankSummary) BankResponse {
	return BankResponse{
		ID:           b.ID,
		BankName:     b.BankName,
		Remark:       b.Remark,
		ProfileCount: b.ProfileCount,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// =============================================================================
// Profile DTOs
// =============================================================================

// CreateProfileRequest opens a profile
type CreateProfileRequest struct {
	ClientID                uuid.UUID        `json:"client_id" binding:"required"`
	BankID                  uuid.UUID        `json:"bank_id" binding:"required"`
	PrePlannedDepositAmount *decimal.Decimal `json:"pre_planned_deposit_amount" binding:"required"`
	CarryForwardEnabled     bool             `json:"carry_forward_enabled"`
	Notes                   string           `json:"notes"`
}

// UpdateProfileRequest is a selective update of a profile
type UpdateProfileRequest struct {
	PrePlannedDepositAmount *decimal.Decimal `json:"pre_planned_deposit_amount"`
	CarryForwardEnabled     *bool            `json:"carry_forward_enabled"`
	Notes                   *string          `json:"notes"`
}

// ProfileResponse represents a profile in API responses
type ProfileResponse struct {
	ID                      uuid.UUID       `json:"id"`
	ClientID                uuid.UUID       `json:"client_id"`
	BankID                  uuid.UUID       `json:"bank_id"`
	ClientName              string          `json:"client_name"`
	BankName                string          `json:"bank_name"`
	PrePlannedDepositAmount decimal.Decimal `json:"pre_planned_deposit_amount"`
	CurrentBalance          decimal.Decimal `json:"current_balance"`
	TotalWithdrawnAmount    decimal.Decimal `json:"total_withdrawn_amount"`
	RemainingBalance        decimal.Decimal `json:"remaining_balance"`
	CarryForwardEnabled     bool            `json:"carry_forward_enabled"`
	Status                  string          `json:"status"`
	Notes                   string          `json:"notes"`
	MarkedDoneAt            *time.Time      `json:"marked_done_at"`
	CarriedFromID           *uuid.UUID      `json:"carried_from_id,omitempty"`
	TransactionCount        int64           `json:"transaction_count"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// ToProfileResponse converts a profile row to a response
func ToProfileResponse(p profiler.ProfileRecord) ProfileResponse {
	return ProfileResponse{
		ID:                      p.ID,
		ClientID:                p.ClientID,
		BankID:                  p.BankID,
		ClientName:              p.ClientName,
		BankName:                p.BankName,
		PrePlannedDepositAmount: p.PrePlannedDepositAmount,
		CurrentBalance:          p.CurrentBalance,
		TotalWithdrawnAmount:    p.TotalWithdrawnAmount,
		RemainingBalance:        p.RemainingBalance,
		CarryForwardEnabled:     p.CarryForwardEnabled,
		Status:                  string(p.Status),
		Notes:                   p.Notes,
		MarkedDoneAt:            p.MarkedDoneAt,
		CarriedFromID:           p.CarriedFromID,
		TransactionCount:        p.TransactionCount,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
}

// MarkDoneResponse is the closed profile and, when carry-forward applied,
// its successor.
type MarkDoneResponse struct {
	Profile        ProfileResponse  `json:"profile"`
	CarriedForward *ProfileResponse `json:"carried_forward_profile,omitempty"`
}

// =============================================================================
// Transaction DTOs
// =============================================================================

// CreateTransactionRequest records a deposit or withdrawal on a profile
type CreateTransactionRequest struct {
	ProfileID                 uuid.UUID        `json:"profile_id" binding:"required"`
	TransactionType           string           `json:"transaction_type" binding:"required,oneof=deposit withdraw"`
	Amount                    *decimal.Decimal `json:"amount" binding:"required"`
	WithdrawChargesPercentage *decimal.Decimal `json:"withdraw_charges_percentage"`
	Notes                     string           `json:"notes"`
}

// UpdateTransactionRequest changes the notes of a transaction; amounts are immutable
type UpdateTransactionRequest struct {
	Notes *string `json:"notes"`
}

// TransactionResponse represents a profiler transaction in API responses
type TransactionResponse struct {
	ID                        uuid.UUID        `json:"id"`
	ProfileID                 uuid.UUID        `json:"profile_id"`
	ClientID                  uuid.UUID        `json:"client_id"`
	BankID                    uuid.UUID        `json:"bank_id"`
	ClientName                string           `json:"client_name"`
	BankName                  string           `json:"bank_name"`
	TransactionType           string           `json:"transaction_type"`
	Amount                    decimal.Decimal  `json:"amount"`
	WithdrawChargesPercentage *decimal.Decimal `json:"withdraw_charges_percentage"`
	WithdrawChargesAmount     decimal.Decimal  `json:"withdraw_charges_amount"`
	Notes                     string           `json:"notes"`
	CreatedAt                 time.Time        `json:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at"`
}

// ToTransactionResponse converts a transaction row to a response
func ToTransactionResponse(t profiler.TransactionRecord) TransactionResponse {
	resp := TransactionResponse{
		ID:                    t.ID,
		ProfileID:             t.ProfileID,
		ClientID:              t.ClientID,
		BankID:                t.BankID,
		ClientName:            t.ClientName,
		BankName:              t.BankName,
		TransactionType:       t.TransactionType.String(),
		Amount:                t.Amount,
		WithdrawChargesAmount: t.WithdrawChargesAmount,
		Notes:                 t.Notes,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
	if t.WithdrawChargesPercentage.Valid {
		pct := t.WithdrawChargesPercentage.Decimal
		resp.WithdrawChargesPercentage = &pct
	}
	return resp
}
