package profiler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/query"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// In-memory ledger
// =============================================================================

type memLedger struct {
	profiles     map[uuid.UUID]profiler.Profile
	transactions map[uuid.UUID]profiler.Transaction
	executions   int
}

func newMemLedger() *memLedger {
	return &memLedger{
		profiles:     map[uuid.UUID]profiler.Profile{},
		transactions: map[uuid.UUID]profiler.Transaction{},
	}
}

// Execute runs fn on copies and commits them only when fn succeeds.
func (l *memLedger) Execute(_ context.Context, fn func(repos LedgerRepositories) error) error {
	l.executions++
	work := &memLedger{
		profiles:     make(map[uuid.UUID]profiler.Profile, len(l.profiles)),
		transactions: make(map[uuid.UUID]profiler.Transaction, len(l.transactions)),
	}
	for k, v := range l.profiles {
		work.profiles[k] = v
	}
	for k, v := range l.transactions {
		work.transactions[k] = v
	}
	if err := fn(work); err != nil {
		return err
	}
	l.profiles, l.transactions = work.profiles, work.transactions
	return nil
}

func (l *memLedger) Profiles() profiler.ProfileRepository         { return memProfiles{l} }
func (l *memLedger) Transactions() profiler.TransactionRepository { return memTransactions{l} }

type memProfiles struct{ l *memLedger }

func (r memProfiles) Create(_ context.Context, p *profiler.Profile) error {
	r.l.profiles[p.ID] = *p
	return nil
}

func (r memProfiles) FindByID(_ context.Context, id uuid.UUID) (*profiler.Profile, error) {
	p, ok := r.l.profiles[id]
	if !ok {
		return nil, shared.NewNotFoundError("profile")
	}
	return &p, nil
}

func (r memProfiles) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*profiler.Profile, error) {
	return r.FindByID(ctx, id)
}

func (r memProfiles) Save(_ context.Context, p *profiler.Profile) error {
	r.l.profiles[p.ID] = *p
	return nil
}

func (r memProfiles) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.l.profiles, id)
	return nil
}

type memTransactions struct{ l *memLedger }

func (r memTransactions) Create(_ context.Context, t *profiler.Transaction) error {
	r.l.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) FindByID(_ context.Context, id uuid.UUID) (*profiler.Transaction, error) {
	t, ok := r.l.transactions[id]
	if !ok {
		return nil, shared.NewNotFoundError("profiler transaction")
	}
	return &t, nil
}

func (r memTransactions) Save(_ context.Context, t *profiler.Transaction) error {
	r.l.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.l.transactions[id]; !ok {
		return shared.NewNotFoundError("profiler transaction")
	}
	delete(r.l.transactions, id)
	return nil
}

// ledgerReader serves records built from the in-memory ledger.
type ledgerReader struct{ l *memLedger }

func (r ledgerReader) Find(_ context.Context, plan query.Plan) (*query.Page[profiler.TransactionRecord], error) {
	return &query.Page[profiler.TransactionRecord]{Rows: []profiler.TransactionRecord{}, Info: query.NewPageInfo(plan.Page, 0)}, nil
}

func (r ledgerReader) First(_ context.Context, resource string, conds ...query.Condition) (*profiler.TransactionRecord, error) {
	id := conds[0].(query.Equal).Value.(uuid.UUID)
	t, ok := r.l.transactions[id]
	if !ok {
		return nil, shared.NewNotFoundError(resource)
	}
	rec := profiler.TransactionRecord{
		ID:                    t.ID,
		ProfileID:             t.ProfileID,
		TransactionType:       t.Type,
		Amount:                t.Amount,
		WithdrawChargesAmount: t.WithdrawChargesAmount,
		Notes:                 t.Notes,
	}
	if t.WithdrawChargesPercentage != nil {
		rec.WithdrawChargesPercentage = decimal.NewNullDecimal(*t.WithdrawChargesPercentage)
	}
	return &rec, nil
}

type profileReader struct{ l *memLedger }

func (r profileReader) Find(_ context.Context, plan query.Plan) (*query.Page[profiler.ProfileRecord], error) {
	return &query.Page[profiler.ProfileRecord]{Rows: []profiler.ProfileRecord{}, Info: query.NewPageInfo(plan.Page, 0)}, nil
}

func (r profileReader) First(_ context.Context, resource string, conds ...query.Condition) (*profiler.ProfileRecord, error) {
	id := conds[0].(query.Equal).Value.(uuid.UUID)
	p, ok := r.l.profiles[id]
	if !ok {
		return nil, shared.NewNotFoundError(resource)
	}
	return &profiler.ProfileRecord{
		ID:                      p.ID,
		PrePlannedDepositAmount: p.PrePlannedDepositAmount,
		CurrentBalance:          p.CurrentBalance,
		TotalWithdrawnAmount:    p.TotalWithdrawnAmount,
		RemainingBalance:        p.RemainingBalance(),
		Status:                  p.Status,
		Notes:                   p.Notes,
		CarriedFromID:           p.CarriedFromID,
	}, nil
}

type memStore struct {
	mu   sync.Mutex
	keys map[string]bool
	fail bool
}

func (s *memStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return false, errors.New("store unavailable")
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memStore) Close() error { return nil }

func seedProfile(t *testing.T, l *memLedger, planned int64, carry bool) *profiler.Profile {
	t.Helper()
	p, err := profiler.NewProfile(profiler.ProfileInput{
		ClientID:                uuid.New(),
		BankID:                  uuid.New(),
		PrePlannedDepositAmount: decimal.NewFromInt(planned),
		CarryForwardEnabled:     carry,
	})
	require.NoError(t, err)
	l.profiles[p.ID] = *p
	return p
}

func newLedgerService(l *memLedger, store *memStore) *TransactionService {
	return NewTransactionService(l, memTransactions{l}, ledgerReader{l}, zap.NewNop(),
		WithIdempotency(store, shared.DefaultIdempotencyConfig()))
}

func dec(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

// =============================================================================
// Tests
// =============================================================================

func TestTransactionService_Create(t *testing.T) {
	ctx := context.Background()
	l := newMemLedger()
	p := seedProfile(t, l, 1000, false)
	svc := newLedgerService(l, &memStore{keys: map[string]bool{}})

	resp, err := svc.Create(ctx, CreateTransactionRequest{
		ProfileID:                 p.ID,
		TransactionType:           "withdraw",
		Amount:                    dec(200),
		WithdrawChargesPercentage: dec(10),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "20", resp.WithdrawChargesAmount.String())
	require.NotNil(t, resp.WithdrawChargesPercentage)
	assert.Equal(t, "10", resp.WithdrawChargesPercentage.String())

	saved := l.profiles[p.ID]
	assert.Equal(t, "200", saved.TotalWithdrawnAmount.String())
	assert.Equal(t, "800", saved.RemainingBalance().String())
}

func TestTransactionService_Create_Idempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("replayed key is a duplicate request", func(t *testing.T) {
		l := newMemLedger()
		p := seedProfile(t, l, 100, false)
		svc := newLedgerService(l, &memStore{keys: map[string]bool{}})
		req := CreateTransactionRequest{ProfileID: p.ID, TransactionType: "deposit", Amount: dec(50)}

		_, err := svc.Create(ctx, req, "key-1")
		require.NoError(t, err)
		_, err = svc.Create(ctx, req, "key-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrDuplicateRequest))
		assert.Equal(t, 1, l.executions)
		assert.Len(t, l.transactions, 1)
	})

	t.Run("failed write releases the key", func(t *testing.T) {
		l := newMemLedger()
		p := seedProfile(t, l, 100, false)
		store := &memStore{keys: map[string]bool{}}
		svc := newLedgerService(l, store)

		_, err := svc.Create(ctx, CreateTransactionRequest{ProfileID: p.ID, TransactionType: "deposit", Amount: dec(0)}, "key-2")
		assert.True(t, shared.IsKind(err, shared.KindValidation))
		assert.False(t, store.keys["profiler_tx:key-2"])

		_, err = svc.Create(ctx, CreateTransactionRequest{ProfileID: p.ID, TransactionType: "deposit", Amount: dec(5)}, "key-2")
		assert.NoError(t, err)
	})

	t.Run("store failure does not block the write", func(t *testing.T) {
		l := newMemLedger()
		p := seedProfile(t, l, 100, false)
		svc := newLedgerService(l, &memStore{keys: map[string]bool{}, fail: true})

		_, err := svc.Create(ctx, CreateTransactionRequest{ProfileID: p.ID, TransactionType: "deposit", Amount: dec(5)}, "key-3")
		assert.NoError(t, err)
	})
}

func TestTransactionService_Create_DoneProfileRollsBack(t *testing.T) {
	ctx := context.Background()
	l := newMemLedger()
	p := seedProfile(t, l, 100, false)
	require.NoError(t, p.MarkDone(time.Now()))
	l.profiles[p.ID] = *p

	_, err := newLedgerService(l, &memStore{keys: map[string]bool{}}).Create(ctx,
		CreateTransactionRequest{ProfileID: p.ID, TransactionType: "deposit", Amount: dec(5)}, "")
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindConflict))
	assert.Empty(t, l.transactions)
	assert.Equal(t, "100", l.profiles[p.ID].CurrentBalance.String())
}

func TestTransactionService_Delete_ReversesBalance(t *testing.T) {
	ctx := context.Background()
	l := newMemLedger()
	p := seedProfile(t, l, 500, false)
	svc := newLedgerService(l, &memStore{keys: map[string]bool{}})

	dep, err := svc.Create(ctx, CreateTransactionRequest{ProfileID: p.ID, TransactionType: "deposit", Amount: dec(250)}, "")
	require.NoError(t, err)
	wd, err := svc.Create(ctx, CreateTransactionRequest{ProfileID: p.ID, TransactionType: "withdraw", Amount: dec(100)}, "")
	require.NoError(t, err)
	stored := l.profiles[p.ID]
	assert.Equal(t, "650", stored.RemainingBalance().String())

	require.NoError(t, svc.Delete(ctx, wd.ID))
	require.NoError(t, svc.Delete(ctx, dep.ID))
	assert.Equal(t, "500", l.profiles[p.ID].CurrentBalance.String())
	assert.True(t, l.profiles[p.ID].TotalWithdrawnAmount.IsZero())

	assert.True(t, shared.IsKind(svc.Delete(ctx, dep.ID), shared.KindNotFound))
}

func TestTransactionService_Update_OnlyNotes(t *testing.T) {
	ctx := context.Background()
	l := newMemLedger()
	p := seedProfile(t, l, 500, false)
	svc := newLedgerService(l, &memStore{keys: map[string]bool{}})

	created, err := svc.Create(ctx, CreateTransactionRequest{ProfileID: p.ID, TransactionType: "withdraw", Amount: dec(40), WithdrawChargesPercentage: dec(5)}, "")
	require.NoError(t, err)

	notes := "checked"
	resp, err := svc.Update(ctx, created.ID, UpdateTransactionRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "checked", resp.Notes)
	assert.Equal(t, "2", resp.WithdrawChargesAmount.String())
}

func newProfileService(l *memLedger) *ProfileService {
	svc := NewProfileService(nil, nil, memProfiles{l}, l, profileReader{l}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestProfileService_MarkDone(t *testing.T) {
	ctx := context.Background()

	t.Run("carries the remaining balance forward", func(t *testing.T) {
		l := newMemLedger()
		p := seedProfile(t, l, 1000, true)
		_, err := newLedgerService(l, &memStore{keys: map[string]bool{}}).Create(ctx,
			CreateTransactionRequest{ProfileID: p.ID, TransactionType: "withdraw", Amount: dec(300)}, "")
		require.NoError(t, err)

		resp, err := newProfileService(l).MarkDone(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "done", resp.Profile.Status)
		require.NotNil(t, resp.CarriedForward)
		assert.Equal(t, "700", resp.CarriedForward.PrePlannedDepositAmount.String())
		assert.Equal(t, "active", resp.CarriedForward.Status)
		require.NotNil(t, resp.CarriedForward.CarriedFromID)
		assert.Equal(t, p.ID, *resp.CarriedForward.CarriedFromID)
		assert.Len(t, l.profiles, 2)
	})

	t.Run("no successor without carry-forward", func(t *testing.T) {
		l := newMemLedger()
		p := seedProfile(t, l, 1000, false)
		resp, err := newProfileService(l).MarkDone(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, resp.CarriedForward)
		assert.Len(t, l.profiles, 1)
	})

	t.Run("done profile cannot be closed again", func(t *testing.T) {
		l := newMemLedger()
		p := seedProfile(t, l, 10, false)
		svc := newProfileService(l)
		_, err := svc.MarkDone(ctx, p.ID)
		require.NoError(t, err)
		_, err = svc.MarkDone(ctx, p.ID)
		assert.True(t, shared.IsKind(err, shared.KindConflict))
	})
}

func TestProfileService_Update_DoneAcceptsNotesOnly(t *testing.T) {
	ctx := context.Background()
	l := newMemLedger()
	p := seedProfile(t, l, 10, false)
	svc := newProfileService(l)
	_, err := svc.MarkDone(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, UpdateProfileRequest{PrePlannedDepositAmount: dec(20)})
	assert.True(t, shared.IsKind(err, shared.KindConflict))

	notes := "closed early"
	resp, err := svc.Update(ctx, p.ID, UpdateProfileRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "closed early", resp.Notes)
	assert.Equal(t, "10", resp.PrePlannedDepositAmount.String())
}
