package backoffice

import (
	"context"
	"net/url"
	"testing"

	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/query"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *backoffice.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backoffice.Client), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *backoffice.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) Create(ctx context.Context, b *backoffice.Bank) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBankRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Bank, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backoffice.Bank), args.Error(1)
}

func (m *MockBankRepository) Save(ctx context.Context, b *backoffice.Bank) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Create(ctx context.Context, c *backoffice.Card) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backoffice.Card), args.Error(1)
}

func (m *MockCardRepository) Save(ctx context.Context, c *backoffice.Card) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, id uuid.UUID, cascade bool) error {
	return m.Called(ctx, id, cascade).Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *backoffice.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*backoffice.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backoffice.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, t *backoffice.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// stubReader serves one row for First and a fixed page for Find.
type stubReader[T any] struct {
	row   *T
	rows  []T
	plans []query.Plan
}

func (r *stubReader[T]) Find(_ context.Context, plan query.Plan) (*query.Page[T], error) {
	r.plans = append(r.plans, plan)
	return &query.Page[T]{Rows: r.rows, Info: query.NewPageInfo(plan.Page, int64(len(r.rows)))}, nil
}

func (r *stubReader[T]) First(_ context.Context, resource string, _ ...query.Condition) (*T, error) {
	if r.row == nil {
		return nil, shared.NewNotFoundError(resource)
	}
	return r.row, nil
}

func ptr[T any](v T) *T {
	return &v
}

// =============================================================================
// Tests
// =============================================================================

func TestClientService_Update_IsSelective(t *testing.T) {
	ctx := context.Background()
	repo := new(MockClientRepository)
	client, err := backoffice.NewClient(backoffice.ClientInput{Name: "Acme", Email: "a@acme.test", Address: "1 Main"})
	require.NoError(t, err)

	repo.On("FindByID", ctx, client.ID).Return(client, nil)
	repo.On("Save", ctx, mock.MatchedBy(func(c *backoffice.Client) bool {
		return c.Remark == "vip" && c.Email == "a@acme.test" && c.Address == "1 Main" && c.Name == "Acme"
	})).Return(nil)

	reader := &stubReader[backoffice.ClientSummary]{row: &backoffice.ClientSummary{ID: client.ID, Name: "Acme", Remark: "vip"}}
	svc := NewClientService(repo, reader)

	resp, err := svc.Update(ctx, client.ID, UpdateClientRequest{Remark: ptr("vip")})
	require.NoError(t, err)
	assert.Equal(t, "vip", resp.Remark)
	repo.AssertExpectations(t)
}

func TestClientService_Update_RejectsBlankName(t *testing.T) {
	ctx := context.Background()
	repo := new(MockClientRepository)
	client, _ := backoffice.NewClient(backoffice.ClientInput{Name: "Acme"})
	repo.On("FindByID", ctx, client.ID).Return(client, nil)

	svc := NewClientService(repo, &stubReader[backoffice.ClientSummary]{})
	_, err := svc.Update(ctx, client.ID, UpdateClientRequest{Name: ptr("  ")})
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClientService_List_RejectsUnknownSort(t *testing.T) {
	reader := &stubReader[backoffice.ClientSummary]{}
	svc := NewClientService(new(MockClientRepository), reader)

	_, err := svc.List(context.Background(), url.Values{"sort_by": {"password"}})
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	assert.Empty(t, reader.plans)
}

func TestClientService_List_FiltersByTransactionCount(t *testing.T) {
	reader := &stubReader[backoffice.ClientSummary]{rows: []backoffice.ClientSummary{{Name: "Acme", TransactionCount: 4}}}
	svc := NewClientService(new(MockClientRepository), reader)

	res, err := svc.List(context.Background(), url.Values{"min_transactions": {"2"}})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, int64(4), res.Data[0].TransactionCount)
	assert.Equal(t, map[string]string{"min_transactions": "2"}, res.Filters)
	require.Len(t, reader.plans, 1)
	assert.Len(t, reader.plans[0].Conditions, 1)
}

type txFixture struct {
	repo    *MockTransactionRepository
	clients *MockClientRepository
	banks   *MockBankRepository
	cards   *MockCardRepository
	reader  *stubReader[backoffice.TransactionRecord]
	svc     *TransactionService
}

func newTxFixture() *txFixture {
	f := &txFixture{
		repo:    new(MockTransactionRepository),
		clients: new(MockClientRepository),
		banks:   new(MockBankRepository),
		cards:   new(MockCardRepository),
		reader:  &stubReader[backoffice.TransactionRecord]{},
	}
	f.svc = NewTransactionService(f.repo, f.clients, f.banks, f.cards, f.reader)
	return f
}

func TestTransactionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("records a withdrawal with charges", func(t *testing.T) {
		f := newTxFixture()
		clientID, bankID := uuid.New(), uuid.New()
		f.clients.On("FindByID", ctx, clientID).Return(&backoffice.Client{}, nil)
		f.banks.On("FindByID", ctx, bankID).Return(&backoffice.Bank{}, nil)
		f.repo.On("Create", ctx, mock.MatchedBy(func(tx *backoffice.Transaction) bool {
			return tx.ClientID == clientID && *tx.BankID == bankID && tx.CardID == nil &&
				tx.Type == shared.TransactionTypeWithdraw && tx.ChargePercentage.Equal(decimal.NewFromInt(10))
		})).Return(nil)
		f.reader.row = &backoffice.TransactionRecord{
			ClientID:          clientID,
			TransactionType:   shared.TransactionTypeWithdraw,
			TransactionAmount: decimal.NewFromInt(200),
			WidthdrawCharges:  decimal.NewFromInt(10),
			ClientName:        "Acme",
		}

		resp, err := f.svc.Create(ctx, CreateTransactionRequest{
			ClientID:          clientID,
			BankID:            &bankID,
			TransactionType:   "withdraw",
			TransactionAmount: ptr(decimal.NewFromInt(200)),
			WidthdrawCharges:  ptr(decimal.NewFromInt(10)),
		})
		require.NoError(t, err)
		assert.Equal(t, "20", resp.ChargeAmount.String())
		assert.Equal(t, "Acme", resp.ClientName)
		f.repo.AssertExpectations(t)
		f.cards.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing client is not found", func(t *testing.T) {
		f := newTxFixture()
		clientID := uuid.New()
		f.clients.On("FindByID", ctx, clientID).Return(nil, shared.NewNotFoundError("client"))

		_, err := f.svc.Create(ctx, CreateTransactionRequest{
			ClientID:          clientID,
			TransactionType:   "deposit",
			TransactionAmount: ptr(decimal.NewFromInt(5)),
		})
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid amount and percentage are reported together", func(t *testing.T) {
		f := newTxFixture()
		_, err := f.svc.Create(ctx, CreateTransactionRequest{
			ClientID:          uuid.New(),
			TransactionType:   "withdraw",
			TransactionAmount: ptr(decimal.Zero),
			WidthdrawCharges:  ptr(decimal.NewFromInt(101)),
		})
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
		assert.Contains(t, err.Error(), "transaction_amount")
		assert.Contains(t, err.Error(), "widthdraw_charges")
		f.clients.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestTransactionService_Update_DetachSkipsLookup(t *testing.T) {
	ctx := context.Background()
	f := newTxFixture()
	bankID := uuid.New()
	tx, err := backoffice.NewTransaction(backoffice.TransactionInput{
		ClientID: uuid.New(),
		BankID:   &bankID,
		Type:     shared.TransactionTypeDeposit,
		Amount:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	f.repo.On("FindByID", ctx, tx.ID).Return(tx, nil)
	f.repo.On("Save", ctx, mock.MatchedBy(func(saved *backoffice.Transaction) bool {
		return saved.BankID == nil && saved.Amount.Equal(decimal.NewFromInt(150))
	})).Return(nil)
	f.reader.row = &backoffice.TransactionRecord{ID: tx.ID}

	_, err = f.svc.Update(ctx, tx.ID, UpdateTransactionRequest{
		BankID:            ptr(uuid.Nil),
		TransactionAmount: ptr(decimal.NewFromInt(150)),
	})
	require.NoError(t, err)
	f.banks.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
}

func TestCardService_Delete_PassesCascade(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCardRepository)
	id := uuid.New()
	repo.On("Delete", ctx, id, true).Return(nil)
	repo.On("Delete", ctx, id, false).Return(shared.NewConflictError(shared.ErrHasDependents.Code, "referenced"))

	svc := NewCardService(repo, &stubReader[backoffice.InstrumentSummary]{})
	assert.True(t, shared.IsKind(svc.Delete(ctx, id, false), shared.KindConflict))
	assert.NoError(t, svc.Delete(ctx, id, true))
}

func TestBankService_GetByID_NotFound(t *testing.T) {
	svc := NewBankService(new(MockBankRepository), &stubReader[backoffice.InstrumentSummary]{})
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}
