package profiler

import (
	"context"

	"github.com/finops/backend/internal/domain/profiler"
)

// TransactionScope runs ledger mutations atomically. Repositories handed to fn
// share one database transaction; an error from fn rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos LedgerRepositories) error) error
}

// LedgerRepositories are the repositories available inside a TransactionScope.
type LedgerRepositories interface {
	Profiles() profiler.ProfileRepository
	Transactions() profiler.TransactionRepository
}
