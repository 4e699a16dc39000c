package backoffice

import (
	"time"

	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Client DTOs
// =============================================================================

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Email        string `json:"email" binding:"omitempty,email,max=200"`
	MobileNumber string `json:"mobile_number" binding:"max=50"`
	Address      string `json:"address" binding:"max=500"`
	Remark       string `json:"remark"`
}

// UpdateClientRequest represents a selective update of a client
type UpdateClientRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email        *string `json:"email" binding:"omitempty,email,max=200"`
	MobileNumber *string `json:"mobile_number" binding:"omitempty,max=50"`
	Address      *string `json:"address" binding:"omitempty,max=500"`
	Remark       *string `json:"remark"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	MobileNumber     string    `json:"mobile_number"`
	Address          string    `json:"address"`
	Remark           string    `json:"remark"`
	TransactionCount int64     `json:"transaction_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToClientResponse converts a client summary row to a response
func ToClientResponse(c backoffice.ClientSummary) ClientResponse {
	return ClientResponse{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		MobileNumber:     c.MobileNumber,
		Address:          c.Address,
		Remark:           c.Remark,
		TransactionCount: c.TransactionCount,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// =============================================================================
// Bank and card DTOs
// =============================================================================

// CreateInstrumentRequest creates a bank or a card
type CreateInstrumentRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=200"`
	Remark string `json:"remark"`
}

// UpdateInstrumentRequest is a selective update of a bank or a card
type UpdateInstrumentRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=200"`
	Remark *string `json:"remark"`
}

// InstrumentResponse represents a bank or a card in API responses
type InstrumentResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Remark           string    `json:"remark"`
	TransactionCount int64     `json:"transaction_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToInstrumentResponse converts a bank or card summary row to a response
func ToInstrumentResponse(s backoffice.InstrumentSummary) InstrumentResponse {
	return InstrumentResponse{
		ID:               s.ID,
		Name:             s.Name,
		Remark:           s.Remark,
		TransactionCount: s.TransactionCount,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// =============================================================================
// Transaction DTOs
// =============================================================================

// CreateTransactionRequest represents a request to record a transaction
type CreateTransactionRequest struct {
	ClientID          uuid.UUID        `json:"client_id" binding:"required"`
	BankID            *uuid.UUID       `json:"bank_id"`
	CardID            *uuid.UUID       `json:"card_id"`
	TransactionType   string           `json:"transaction_type" binding:"required,oneof=deposit withdraw"`
	TransactionAmount *decimal.Decimal `json:"transaction_amount" binding:"required"`
	WidthdrawCharges  *decimal.Decimal `json:"widthdraw_charges"`
	Remark            string           `json:"remark"`
}

// UpdateTransactionRequest is a selective update of a transaction. A null
// bank_id or card_id leaves the reference untouched; the nil UUID detaches it.
type UpdateTransactionRequest struct {
	ClientID          *uuid.UUID       `json:"client_id"`
	BankID            *uuid.UUID       `json:"bank_id"`
	CardID            *uuid.UUID       `json:"card_id"`
	TransactionType   *string          `json:"transaction_type" binding:"omitempty,oneof=deposit withdraw"`
	TransactionAmount *decimal.Decimal `json:"transaction_amount"`
	WidthdrawCharges  *decimal.Decimal `json:"widthdraw_charges"`
	Remark            *string          `json:"remark"`
}

func (r UpdateTransactionRequest) patch() backoffice.TransactionPatch {
	p := backoffice.TransactionPatch{
		ClientID:         r.ClientID,
		BankID:           r.BankID,
		CardID:           r.CardID,
		Amount:           r.TransactionAmount,
		ChargePercentage: r.WidthdrawCharges,
		Remark:           r.Remark,
	}
	if r.TransactionType != nil {
		t := shared.TransactionType(*r.TransactionType)
		p.Type = &t
	}
	return p
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                uuid.UUID       `json:"id"`
	ClientID          uuid.UUID       `json:"client_id"`
	BankID            *uuid.UUID      `json:"bank_id"`
	CardID            *uuid.UUID      `json:"card_id"`
	TransactionType   string          `json:"transaction_type"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	WidthdrawCharges  decimal.Decimal `json:"widthdraw_charges"`
	ChargeAmount      decimal.Decimal `json:"charge_amount"`
	Remark            string          `json:"remark"`
	ClientName        string          `json:"client_name"`
	BankName          string          `json:"bank_name,omitempty"`
	CardName          string          `json:"card_name,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToTransactionResponse converts a transaction row to a response
func ToTransactionResponse(r backoffice.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		ID:                r.ID,
		ClientID:          r.ClientID,
		BankID:            r.BankID,
		CardID:            r.CardID,
		TransactionType:   r.TransactionType.String(),
		TransactionAmount: r.TransactionAmount,
		WidthdrawCharges:  r.WidthdrawCharges,
		ChargeAmount:      r.ChargeAmount().Round(2),
		Remark:            r.Remark,
		ClientName:        r.ClientName,
		BankName:          r.BankName,
		CardName:          r.CardName,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
