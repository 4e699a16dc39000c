package persistence

import (
	"context"

	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements backoffice.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// Create creates a new client
func (r *GormClientRepository) Create(ctx context.Context, client *backoffice.Client) error {
	return create(ctx, r.db, models.ClientModelFromDomain(client), "client")
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Client, error) {
	var model models.ClientModel
	if err := findByID(ctx, r.db, &model, id, "client"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes every field of the client
func (r *GormClientRepository) Save(ctx context.Context, client *backoffice.Client) error {
	return save(ctx, r.db, models.ClientModelFromDomain(client), client.ID, "client")
}

// Delete deletes a client without transactions
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteGuarded(ctx, r.db, &models.ClientModel{}, id, "client",
		dependents{table: "transactions", column: "client_id", noun: "transactions"})
}

// GormBankRepository implements backoffice.BankRepository using GORM
type GormBankRepository struct {
	db *gorm.DB
}

// NewGormBankRepository creates a new GormBankRepository
func NewGormBankRepository(db *gorm.DB) *GormBankRepository {
	return &GormBankRepository{db: db}
}

// Create creates a new bank
func (r *GormBankRepository) Create(ctx context.Context, bank *backoffice.Bank) error {
	return create(ctx, r.db, models.BankModelFromDomain(bank), "bank")
}

// FindByID finds a bank by ID
func (r *GormBankRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Bank, error) {
	var model models.BankModel
	if err := findByID(ctx, r.db, &model, id, "bank"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes every field of the bank
func (r *GormBankRepository) Save(ctx context.Context, bank *backoffice.Bank) error {
	return save(ctx, r.db, models.BankModelFromDomain(bank), bank.ID, "bank")
}

// Delete deletes a bank without transactions
func (r *GormBankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteGuarded(ctx, r.db, &models.BankModel{}, id, "bank",
		dependents{table: "transactions", column: "bank_id", noun: "transactions"})
}

// GormCardRepository implements backoffice.CardRepository using GORM
type GormCardRepository struct {
	db *gorm.DB
}

// NewGormCardRepository creates a new GormCardRepository
func NewGormCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

// Create creates a new card
func (r *GormCardRepository) Create(ctx context.Context, card *backoffice.Card) error {
	return create(ctx, r.db, models.CardModelFromDomain(card), "card")
}

// FindByID finds a card by ID
func (r *GormCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Card, error) {
	var model models.CardModel
	if err := findByID(ctx, r.db, &model, id, "card"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes every field of the card
func (r *GormCardRepository) Save(ctx context.Context, card *backoffice.Card) error {
	return save(ctx, r.db, models.CardModelFromDomain(card), card.ID, "card")
}

// Delete deletes a card. With cascade, referencing transactions are detached
// (card_id set to NULL) in the same database transaction.
func (r *GormCardRepository) Delete(ctx context.Context, id uuid.UUID, cascade bool) error {
	guard := dependents{table: "transactions", column: "card_id", noun: "transactions"}
	if !cascade {
		return deleteGuarded(ctx, r.db, &models.CardModel{}, id, "card", guard)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TransactionModel{}).
			Where("card_id = ?", id).
			Update("card_id", nil).Error; err != nil {
			return shared.WrapStorageError("detach card", err)
		}
		return deleteByID(tx, &models.CardModel{}, id, "card")
	})
}

// GormTransactionRepository implements backoffice.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create creates a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, t *backoffice.Transaction) error {
	return create(ctx, r.db, models.TransactionModelFromDomain(t), "transaction")
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Transaction, error) {
	var model models.TransactionModel
	if err := findByID(ctx, r.db, &model, id, "transaction"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes every field of the transaction
func (r *GormTransactionRepository) Save(ctx context.Context, t *backoffice.Transaction) error {
	return save(ctx, r.db, models.TransactionModelFromDomain(t), t.ID, "transaction")
}

// Delete hard-deletes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.TransactionModel{}, id, "transaction")
}

var (
	_ backoffice.ClientRepository      = (*GormClientRepository)(nil)
	_ backoffice.BankRepository        = (*GormBankRepository)(nil)
	_ backoffice.CardRepository        = (*GormCardRepository)(nil)
	_ backoffice.TransactionRepository = (*GormTransactionRepository)(nil)
)
