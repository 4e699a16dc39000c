package profiler

import (
	"context"
	"net/url"

	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// idempotencyScope namespaces request keys for transaction creation.
const idempotencyScope = "profiler_tx"

// TransactionService records and reverses profile transactions. Every
// mutation locks the owning profile and runs in one TransactionScope.
type TransactionService struct {
	scope        TransactionScope
	transactions profiler.TransactionRepository
	reader       listing.Reader[profiler.TransactionRecord]
	store        shared.IdempotencyStore
	config       shared.IdempotencyConfig
	logger       *zap.Logger
}

// TransactionServiceOption configures a TransactionService
type TransactionServiceOption func(*TransactionService)

// WithIdempotency deduplicates Create calls that carry a request key
func WithIdempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) TransactionServiceOption {
	return func(s *TransactionService) {
		s.store = store
		s.config = cfg
	}
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	scope TransactionScope,
	transactions profiler.TransactionRepository,
	reader listing.Reader[profiler.TransactionRecord],
	logger *zap.Logger,
	opts ...TransactionServiceOption,
) *TransactionService {
	s := &TransactionService{
		scope:        scope,
		transactions: transactions,
		reader:       reader,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a transaction on an active profile. A non-empty key that was
// already claimed is rejected as a duplicate request.
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest, key string) (*TransactionResponse, error) {
	log := logger.For(ctx, s.logger)

	claimed := false
	if key != "" && s.store != nil && s.config.Enabled {
		isNew, err := s.store.MarkProcessed(ctx, shared.ScopedKey(idempotencyScope, key), s.config.TTL)
		switch {
		case err != nil:
			log.Warn("Idempotency check failed, recording anyway", zap.String("idempotency_key", key), zap.Error(err))
		case !isNew:
			log.Info("Duplicate transaction request", zap.String("idempotency_key", key))
			return nil, shared.NewConflictError(shared.ErrDuplicateRequest.Code,
				"A request with this Idempotency-Key has already been processed")
		default:
			claimed = true
		}
	}

	var created *profiler.Transaction
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		profile, err := repos.Profiles().FindByIDForUpdate(ctx, req.ProfileID)
		if err != nil {
			return err
		}
		amount := decimal.Zero
		if req.Amount != nil {
			amount = *req.Amount
		}
		tx, err := profile.Record(shared.TransactionType(req.TransactionType), amount, req.WithdrawChargesPercentage, req.Notes)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		if err := repos.Profiles().Save(ctx, profile); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		if claimed {
			if rerr := s.store.Release(ctx, shared.ScopedKey(idempotencyScope, key)); rerr != nil {
				log.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(rerr))
			}
		}
		return nil, err
	}

	log.Info("Profile transaction recorded",
		zap.String("profile_id", req.ProfileID.String()),
		zap.String("transaction_id", created.ID.String()),
		zap.String("transaction_type", created.Type.String()),
	)
	return s.GetByID(ctx, created.ID)
}

// GetByID returns a transaction with its profile owner names
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	row, err := s.reader.First(ctx, "profiler transaction", byID("pt", id))
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(*row)
	return &resp, nil
}

// List returns a page of profiler transactions
func (s *TransactionService) List(ctx context.Context, params url.Values) (*listing.Result[TransactionResponse], error) {
	return listing.List(ctx, s.reader, TransactionList, params, ToTransactionResponse)
}

// Update changes the notes of a transaction
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	tx, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Notes != nil {
		tx.SetNotes(*req.Notes)
		if err := s.transactions.Save(ctx, tx); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// Delete removes a transaction and reverses its effect on the profile
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		tx, err := repos.Transactions().FindByID(ctx, id)
		if err != nil {
			return err
		}
		profile, err := repos.Profiles().FindByIDForUpdate(ctx, tx.ProfileID)
		if err != nil {
			return err
		}
		if err := profile.Reverse(tx); err != nil {
			return err
		}
		if err := repos.Transactions().Delete(ctx, id); err != nil {
			return err
		}
		return repos.Profiles().Save(ctx, profile)
	})
}
