package models

import (
	"time"

	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfilerClientModel is the persistence model for profiler clients.
type ProfilerClientModel struct {
	BaseModel
	Name         string `gorm:"type:varchar(200);not null;index"`
	Email        string `gorm:"type:varchar(200);not null;default:''"`
	MobileNumber string `gorm:"type:varchar(50);not null;default:''"`
	Remark       string `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ProfilerClientModel) TableName() string {
	return "profiler_clients"
}

// ToDomain converts the persistence model to a domain profiler Client.
func (m *ProfilerClientModel) ToDomain() *profiler.Client {
	return &profiler.Client{
		BaseEntity:   m.BaseModel.Entity(),
		Name:         m.Name,
		Email:        m.Email,
		MobileNumber: m.MobileNumber,
		Remark:       m.Remark,
	}
}

// ProfilerClientModelFromDomain creates a persistence model from a profiler Client.
func ProfilerClientModelFromDomain(c *profiler.Client) *ProfilerClientModel {
	m := &ProfilerClientModel{Name: c.Name, Email: c.Email, MobileNumber: c.MobileNumber, Remark: c.Remark}
	m.setEntity(c.BaseEntity)
	return m
}

// ProfilerBankModel is the persistence model for profiler banks.
type ProfilerBankModel struct {
	BaseModel
	BankName string `gorm:"type:varchar(200);not null;index"`
	Remark   string `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ProfilerBankModel) TableName() string {
	return "profiler_banks"
}

// ToDomain converts the persistence model to a domain profiler Bank.
func (m *ProfilerBankModel) ToDomain() *profiler.Bank {
	return &profiler.Bank{BaseEntity: m.BaseModel.Entity(), BankName: m.BankName, Remark: m.Remark}
}

// ProfilerBankModelFromDomain creates a persistence model from a profiler Bank.
func ProfilerBankModelFromDomain(b *profiler.Bank) *ProfilerBankModel {
	m := &ProfilerBankModel{BankName: b.BankName, Remark: b.Remark}
	m.setEntity(b.BaseEntity)
	return m
}

// ProfileModel is the persistence model for the Profile domain entity.
type ProfileModel struct {
	BaseModel
	ClientID                uuid.UUID              `gorm:"type:uuid;not null;index"`
	BankID                  uuid.UUID              `gorm:"type:uuid;not null;index"`
	PrePlannedDepositAmount decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBalance          decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	TotalWithdrawnAmount    decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	CarryForwardEnabled     bool                   `gorm:"not null;default:false"`
	Status                  profiler.ProfileStatus `gorm:"type:varchar(10);not null;default:'active';index"`
	Notes                   string                 `gorm:"type:text;not null;default:''"`
	MarkedDoneAt            *time.Time
	CarriedFromID           *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiler_profiles"
}

// ToDomain converts the persistence model to a domain Profile.
func (m *ProfileModel) ToDomain() *profiler.Profile {
	return &profiler.Profile{
		BaseEntity:              m.BaseModel.Entity(),
		ClientID:                m.ClientID,
		BankID:                  m.BankID,
		PrePlannedDepositAmount: m.PrePlannedDepositAmount,
		CurrentBalance:          m.CurrentBalance,
		TotalWithdrawnAmount:    m.TotalWithdrawnAmount,
		CarryForwardEnabled:     m.CarryForwardEnabled,
		Status:                  m.Status,
		Notes:                   m.Notes,
		MarkedDoneAt:            m.MarkedDoneAt,
		CarriedFromID:           m.CarriedFromID,
	}
}

// ProfileModelFromDomain creates a persistence model from a domain Profile.
func ProfileModelFromDomain(p *profiler.Profile) *ProfileModel {
	m := &ProfileModel{
		ClientID:                p.ClientID,
		BankID:                  p.BankID,
		PrePlannedDepositAmount: p.PrePlannedDepositAmount,
		CurrentBalance:          p.CurrentBalance,
		TotalWithdrawnAmount:    p.TotalWithdrawnAmount,
		CarryForwardEnabled:     p.CarryForwardEnabled,
		Status:                  p.Status,
		Notes:                   p.Notes,
		MarkedDoneAt:            p.MarkedDoneAt,
		CarriedFromID:           p.CarriedFromID,
	}
	m.setEntity(p.BaseEntity)
	return m
}

// ProfilerTransactionModel is the persistence model for profiler transactions.
// WithdrawChargesAmount is written once at creation.
type ProfilerTransactionModel struct {
	BaseModel
	ProfileID                 uuid.UUID              `gorm:"type:uuid;not null;index"`
	TransactionType           shared.TransactionType `gorm:"type:varchar(10);not null"`
	Amount                    decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	WithdrawChargesPercentage decimal.NullDecimal    `gorm:"type:decimal(5,2)"`
	WithdrawChargesAmount     decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Notes                     string                 `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ProfilerTransactionModel) TableName() string {
	return "profiler_transactions"
}

// ToDomain converts the persistence model to a domain profiler Transaction.
func (m *ProfilerTransactionModel) ToDomain() *profiler.Transaction {
	tx := &profiler.Transaction{
		BaseEntity:            m.BaseModel.Entity(),
		ProfileID:             m.ProfileID,
		Type:                  m.TransactionType,
		Amount:                m.Amount,
		WithdrawChargesAmount: m.WithdrawChargesAmount,
		Notes:                 m.Notes,
	}
	if m.WithdrawChargesPercentage.Valid {
		pct := m.WithdrawChargesPercentage.Decimal
		tx.WithdrawChargesPercentage = &pct
	}
	return tx
}

// ProfilerTransactionModelFromDomain creates a persistence model from a profiler Transaction.
func ProfilerTransactionModelFromDomain(t *profiler.Transaction) *ProfilerTransactionModel {
	m := &ProfilerTransactionModel{
		ProfileID:             t.ProfileID,
		TransactionType:       t.Type,
		Amount:                t.Amount,
		WithdrawChargesAmount: t.WithdrawChargesAmount,
		Notes:                 t.Notes,
	}
	if t.WithdrawChargesPercentage != nil {
		m.WithdrawChargesPercentage = decimal.NewNullDecimal(*t.WithdrawChargesPercentage)
	}
	m.setEntity(t.BaseEntity)
	return m
}
