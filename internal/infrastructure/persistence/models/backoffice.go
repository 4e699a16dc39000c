package models

import (
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	BaseModel
	Name         string `gorm:"type:varchar(200);not null;index"`
	Email        string `gorm:"type:varchar(200);not null;default:''"`
	MobileNumber string `gorm:"type:varchar(50);not null;default:''"`
	Address      string `gorm:"type:text;not null;default:''"`
	Remark       string `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *backoffice.Client {
	return &backoffice.Client{
		BaseEntity:   m.BaseModel.Entity(),
		Name:         m.Name,
		Email:        m.Email,
		MobileNumber: m.MobileNumber,
		Address:      m.Address,
		Remark:       m.Remark,
	}
}

// ClientModelFromDomain creates a persistence model from a domain Client entity.
func ClientModelFromDomain(c *backoffice.Client) *ClientModel {
	m := &ClientModel{
		Name:         c.Name,
		Email:        c.Email,
		MobileNumber: c.MobileNumber,
		Address:      c.Address,
		Remark:       c.Remark,
	}
	m.setEntity(c.BaseEntity)
	return m
}

// BankModel is the persistence model for the Bank domain entity.
type BankModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null;index"`
	Remark string `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (BankModel) TableName() string {
	return "banks"
}

// ToDomain converts the persistence model to a domain Bank entity.
func (m *BankModel) ToDomain() *backoffice.Bank {
	return &backoffice.Bank{BaseEntity: m.BaseModel.Entity(), Name: m.Name, Remark: m.Remark}
}

// BankModelFromDomain creates a persistence model from a domain Bank entity.
func BankModelFromDomain(b *backoffice.Bank) *BankModel {
	m := &BankModel{Name: b.Name, Remark: b.Remark}
	m.setEntity(b.BaseEntity)
	return m
}

// CardModel is the persistence model for the Card domain entity.
type CardModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null;index"`
	Remark string `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (CardModel) TableName() string {
	return "cards"
}

// ToDomain converts the persistence model to a domain Card entity.
func (m *CardModel) ToDomain() *backoffice.Card {
	return &backoffice.Card{BaseEntity: m.BaseModel.Entity(), Name: m.Name, Remark: m.Remark}
}

// CardModelFromDomain creates a persistence model from a domain Card entity.
func CardModelFromDomain(c *backoffice.Card) *CardModel {
	m := &CardModel{Name: c.Name, Remark: c.Remark}
	m.setEntity(c.BaseEntity)
	return m
}

// TransactionModel is the persistence model for the Transaction domain entity.
// The misspelled widthdraw_charges column is part of the published schema.
type TransactionModel struct {
	BaseModel
	ClientID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	BankID            *uuid.UUID             `gorm:"type:uuid;index"`
	CardID            *uuid.UUID             `gorm:"type:uuid;index"`
	TransactionType   shared.TransactionType `gorm:"type:varchar(10);not null"`
	TransactionAmount decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	WidthdrawCharges  decimal.Decimal        `gorm:"column:widthdraw_charges;type:decimal(5,2);not null;default:0"`
	Remark            string                 `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *backoffice.Transaction {
	return &backoffice.Transaction{
		BaseEntity:       m.BaseModel.Entity(),
		ClientID:         m.ClientID,
		BankID:           m.BankID,
		CardID:           m.CardID,
		Type:             m.TransactionType,
		Amount:           m.TransactionAmount,
		ChargePercentage: m.WidthdrawCharges,
		Remark:           m.Remark,
	}
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction entity.
func TransactionModelFromDomain(t *backoffice.Transaction) *TransactionModel {
	m := &TransactionModel{
		ClientID:          t.ClientID,
		BankID:            t.BankID,
		CardID:            t.CardID,
		TransactionType:   t.Type,
		TransactionAmount: t.Amount,
		WidthdrawCharges:  t.ChargePercentage,
		Remark:            t.Remark,
	}
	m.setEntity(t.BaseEntity)
	return m
}
