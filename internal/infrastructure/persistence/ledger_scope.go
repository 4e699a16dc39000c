package persistence

import (
	"context"

	appprofiler "github.com/finops/backend/internal/application/profiler"
	"github.com/finops/backend/internal/domain/profiler"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appprofiler.LedgerRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories provides access to all repositories within a transaction.
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// Profiles returns the profile repository scoped to the current transaction.
func (r *gormLedgerRepositories) Profiles() profiler.ProfileRepository {
	return NewGormProfileRepository(r.tx)
}

// Transactions returns the profiler transaction repository scoped to the current transaction.
func (r *gormLedgerRepositories) Transactions() profiler.TransactionRepository {
	return NewGormProfilerTransactionRepository(r.tx)
}

var (
	_ appprofiler.TransactionScope   = (*GormTransactionScope)(nil)
	_ appprofiler.LedgerRepositories = (*gormLedgerRepositories)(nil)
)
