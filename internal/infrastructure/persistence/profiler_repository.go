package persistence

import (
	"context"
	"errors"

	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfilerClientRepository implements profiler.ClientRepository using GORM
type GormProfilerClientRepository struct {
	db *gorm.DB
}

// NewGormProfilerClientRepository creates a new GormProfilerClientRepository
func NewGormProfilerClientRepository(db *gorm.DB) *GormProfilerClientRepository {
	return &GormProfilerClientRepository{db: db}
}

// Create creates a new profiler client
func (r *GormProfilerClientRepository) Create(ctx context.Context, client *profiler.Client) error {
	return create(ctx, r.db, models.ProfilerClientModelFromDomain(client), "profiler client")
}

// FindByID finds a profiler client by ID
func (r *GormProfilerClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*profiler.Client, error) {
	var model models.ProfilerClientModel
	if err := findByID(ctx, r.db, &model, id, "profiler client"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes every field of the profiler client
func (r *GormProfilerClientRepository) Save(ctx context.Context, client *profiler.Client) error {
	return save(ctx, r.db, models.ProfilerClientModelFromDomain(client), client.ID, "profiler client")
}

// Delete deletes a profiler client without profiles
func (r *GormProfilerClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteGuarded(ctx, r.db, &models.ProfilerClientModel{}, id, "profiler client",
		dependents{table: "profiler_profiles", column: "client_id", noun: "profiles"})
}

// GormProfilerBankRepository implements profiler.BankRepository using GORM
type GormProfilerBankRepository struct {
	db *gorm.DB
}

// NewGormProfilerBankRepository creates a new GormProfilerBankRepository
func NewGormProfilerBankRepository(db *gorm.DB) *GormProfilerBankRepository {
	return &GormProfilerBankRepository{db: db}
}

// Create creates a new profiler bank
func (r *GormProfilerBankRepository) Create(ctx context.Context, bank *profiler.Bank) error {
	return create(ctx, r.db, models.ProfilerBankModelFromDomain(bank), "profiler bank")
}

// FindByID finds a profiler bank by ID
func (r *GormProfilerBankRepository) FindByID(ctx context.Context, id uuid.UUID) (*profiler.Bank, error) {
	var model models.ProfilerBankModel
	if err := findByID(ctx, r.db, &model, id, "profiler bank"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes every field of the profiler bank
func (r *GormProfilerBankRepository) Save(ctx context.Context, bank *profiler.Bank) error {
	return save(ctx, r.db, models.ProfilerBankModelFromDomain(bank), bank.ID, "profiler bank")
}

// Delete deletes a profiler bank without profiles
func (r *GormProfilerBankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteGuarded(ctx, r.db, &models.ProfilerBankModel{}, id, "profiler bank",
		dependents{table: "profiler_profiles", column: "bank_id", noun: "profiles"})
}

// GormProfileRepository implements profiler.ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// Create creates a new profile
func (r *GormProfileRepository) Create(ctx context.Context, p *profiler.Profile) error {
	return create(ctx, r.db, models.ProfileModelFromDomain(p), "profile")
}

// FindByID finds a profile by ID
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profiler.Profile, error) {
	var model models.ProfileModel
	if err := findByID(ctx, r.db, &model, id, "profile"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a profile and locks its row (SELECT ... FOR UPDATE).
// Dialects without row locks ignore the clause.
func (r *GormProfileRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*profiler.Profile, error) {
	var model models.ProfileModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("profile")
		}
		return nil, shared.WrapStorageError("lock profile", err)
	}
	return model.ToDomain(), nil
}

// Save writes every field of the profile
func (r *GormProfileRepository) Save(ctx context.Context, p *profiler.Profile) error {
	return save(ctx, r.db, models.ProfileModelFromDomain(p), p.ID, "profile")
}

// Delete deletes a profile without transactions
func (r *GormProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteGuarded(ctx, r.db, &models.ProfileModel{}, id, "profile",
		dependents{table: "profiler_transactions", column: "profile_id", noun: "transactions"})
}

// GormProfilerTransactionRepository implements profiler.TransactionRepository using GORM
type GormProfilerTransactionRepository struct {
	db *gorm.DB
}

// NewGormProfilerTransactionRepository creates a new GormProfilerTransactionRepository
func NewGormProfilerTransactionRepository(db *gorm.DB) *GormProfilerTransactionRepository {
	return &GormProfilerTransactionRepository{db: db}
}

// Create creates a new profiler transaction
func (r *GormProfilerTransactionRepository) Create(ctx context.Context, t *profiler.Transaction) error {
	return create(ctx, r.db, models.ProfilerTransactionModelFromDomain(t), "profiler transaction")
}

// FindByID finds a profiler transaction by ID
func (r *GormProfilerTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*profiler.Transaction, error) {
	var model models.ProfilerTransactionModel
	if err := findByID(ctx, r.db, &model, id, "profiler transaction"); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save updates the notes of a profiler transaction. Amounts and the frozen
// charge are never rewritten.
func (r *GormProfilerTransactionRepository) Save(ctx context.Context, t *profiler.Transaction) error {
	res := r.db.WithContext(ctx).Model(&models.ProfilerTransactionModel{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{"notes": t.Notes, "updated_at": t.UpdatedAt})
	if res.Error != nil {
		return shared.WrapStorageError("update profiler transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.NewNotFoundError("profiler transaction")
	}
	return nil
}

// Delete hard-deletes a profiler transaction
func (r *GormProfilerTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ProfilerTransactionModel{}, id, "profiler transaction")
}

var (
	_ profiler.ClientRepository      = (*GormProfilerClientRepository)(nil)
	_ profiler.BankRepository        = (*GormProfilerBankRepository)(nil)
	_ profiler.ProfileRepository     = (*GormProfileRepository)(nil)
	_ profiler.TransactionRepository = (*GormProfilerTransactionRepository)(nil)
)
