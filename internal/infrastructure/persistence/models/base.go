package models

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the id and timestamps every table shares.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Entity returns the row identity as a domain entity header.
func (m *BaseModel) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// All lists every model in dependency order, for AutoMigrate in tests and tools.
func All() []any {
	return []any{
		&ClientModel{}, &BankModel{}, &CardModel{}, &TransactionModel{},
		&ProfilerClientModel{}, &ProfilerBankModel{}, &ProfileModel{}, &ProfilerTransactionModel{},
	}
}
