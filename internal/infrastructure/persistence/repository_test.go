package persistence

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appprofiler "github.com/finops/backend/internal/application/profiler"
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/query"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type backofficeFixture struct {
	clients      *GormClientRepository
	banks        *GormBankRepository
	cards        *GormCardRepository
	transactions *GormTransactionRepository
}

func newBackofficeFixture(db *gorm.DB) backofficeFixture {
	return backofficeFixture{
		clients:      NewGormClientRepository(db),
		banks:        NewGormBankRepository(db),
		cards:        NewGormCardRepository(db),
		transactions: NewGormTransactionRepository(db),
	}
}

func (f backofficeFixture) addTransaction(t *testing.T, client uuid.UUID, bank, card *uuid.UUID, typ shared.TransactionType, amount, pct int64, remark string) *backoffice.Transaction {
	t.Helper()
	tx, err := backoffice.NewTransaction(backoffice.TransactionInput{
		ClientID:         client,
		BankID:           bank,
		CardID:           card,
		Type:             typ,
		Amount:           decimal.NewFromInt(amount),
		ChargePercentage: decimal.NewFromInt(pct),
		Remark:           remark,
	})
	require.NoError(t, err)
	require.NoError(t, f.transactions.Create(context.Background(), tx))
	return tx
}

func TestClientRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newBackofficeFixture(newSQLiteDB(t))

	client, err := backoffice.NewClient(backoffice.ClientInput{Name: "Acme", Email: "ops@acme.test", Address: "1 Main St"})
	require.NoError(t, err)
	require.NoError(t, f.clients.Create(ctx, client))

	got, err := f.clients.FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	remark := "priority"
	require.NoError(t, got.Apply(backoffice.ClientPatch{Remark: &remark}))
	require.NoError(t, f.clients.Save(ctx, got))

	reloaded, err := f.clients.FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "priority", reloaded.Remark)
	assert.Equal(t, "ops@acme.test", reloaded.Email)
	assert.Equal(t, "1 Main St", reloaded.Address)
	assert.True(t, client.CreatedAt.Equal(reloaded.CreatedAt))

	_, err = f.clients.FindByID(ctx, uuid.New())
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
	assert.True(t, shared.IsKind(f.clients.Save(ctx, &backoffice.Client{BaseEntity: shared.NewBaseEntity(), Name: "x"}), shared.KindNotFound))
}

func TestClientRepository_DeleteGuard(t *testing.T) {
	ctx := context.Background()
	f := newBackofficeFixture(newSQLiteDB(t))

	client, _ := backoffice.NewClient(backoffice.ClientInput{Name: "Acme"})
	require.NoError(t, f.clients.Create(ctx, client))
	tx := f.addTransaction(t, client.ID, nil, nil, shared.TransactionTypeDeposit, 100, 0, "")

	err := f.clients.Delete(ctx, client.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrHasDependents))
	assert.True(t, shared.IsKind(err, shared.KindConflict))

	require.NoError(t, f.transactions.Delete(ctx, tx.ID))
	assert.True(t, shared.IsKind(f.transactions.Delete(ctx, tx.ID), shared.KindNotFound))

	require.NoError(t, f.clients.Delete(ctx, client.ID))
	assert.True(t, shared.IsKind(f.clients.Delete(ctx, client.ID), shared.KindNotFound))
}

func TestCardRepository_DeleteCascade(t *testing.T) {
	ctx := context.Background()
	f := newBackofficeFixture(newSQLiteDB(t))

	client, _ := backoffice.NewClient(backoffice.ClientInput{Name: "Acme"})
	require.NoError(t, f.clients.Create(ctx, client))
	card, _ := backoffice.NewCard("Visa", "")
	require.NoError(t, f.cards.Create(ctx, card))
	tx := f.addTransaction(t, client.ID, nil, &card.ID, shared.TransactionTypeWithdraw, 50, 2, "")

	assert.True(t, shared.IsKind(f.cards.Delete(ctx, card.ID, false), shared.KindConflict))

	require.NoError(t, f.cards.Delete(ctx, card.ID, true))
	_, err := f.cards.FindByID(ctx, card.ID)
	assert.True(t, shared.IsKind(err, shared.KindNotFound))

	detached, err := f.transactions.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.CardID)
	assert.True(t, decimal.NewFromInt(50).Equal(detached.Amount))
}

func TestReaders_TransactionsAndCounts(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	f := newBackofficeFixture(db)
	readers := NewReaders(db)

	acme, _ := backoffice.NewClient(backoffice.ClientInput{Name: "Acme"})
	globex, _ := backoffice.NewClient(backoffice.ClientInput{Name: "Globex"})
	idle, _ := backoffice.NewClient(backoffice.ClientInput{Name: "Idle Co"})
	for _, c := range []*backoffice.Client{acme, globex, idle} {
		require.NoError(t, f.clients.Create(ctx, c))
	}
	bank, _ := backoffice.NewBank("First Bank", "")
	require.NoError(t, f.banks.Create(ctx, bank))

	f.addTransaction(t, acme.ID, &bank.ID, nil, shared.TransactionTypeDeposit, 1000, 0, "salary")
	f.addTransaction(t, acme.ID, nil, nil, shared.TransactionTypeWithdraw, 200, 10, "rent")
	f.addTransaction(t, globex.ID, &bank.ID, nil, shared.TransactionTypeWithdraw, 75, 0, "acme invoice")

	v := query.NewValues(url.Values{"transaction_type": {"withdraw"}, "search": {"acme"}, "sort_by": {"transaction_amount"}, "sort_order": {"asc"}})
	filter := backoffice.ParseTransactionFilter(v)
	req := v.List(backoffice.TransactionSort)
	require.NoError(t, v.Err())
	conds, err := filter.Conditions()
	require.NoError(t, err)

	page, err := readers.Transactions.Find(ctx, query.NewPlan(conds, req, backoffice.TransactionSearchColumns...))
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	// exact client-name match ranks ahead of the remark substring match
	assert.Equal(t, "Acme", page.Rows[0].ClientName)
	assert.Equal(t, "", page.Rows[0].BankName)
	assert.Equal(t, "Globex", page.Rows[1].ClientName)
	assert.Equal(t, "First Bank", page.Rows[1].BankName)
	assert.Equal(t, shared.TransactionTypeWithdraw, page.Rows[0].TransactionType)
	assert.True(t, decimal.NewFromInt(10).Equal(page.Rows[0].WidthdrawCharges))

	clients, err := readers.Clients.Find(ctx, query.NewPlan(nil, query.ListRequest{
		Page: query.NewPageRequest(1, 10),
		Sort: mustResolve(t, backoffice.ClientSort, "transaction_count", "desc"),
	}))
	require.NoError(t, err)
	require.Len(t, clients.Rows, 3)
	assert.Equal(t, "Acme", clients.Rows[0].Name)
	assert.Equal(t, int64(2), clients.Rows[0].TransactionCount)
	assert.Equal(t, int64(0), clients.Rows[2].TransactionCount)

	conds, err = backoffice.CounterpartyFilter{MinTransactions: ptr(int64(1))}.Conditions("c")
	require.NoError(t, err)
	n, err := readers.Clients.Count(ctx, query.Plan{Conditions: conds})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func mustResolve(t *testing.T, table *query.SortTable, key, dir string) query.Sort {
	t.Helper()
	s, err := table.Resolve(key, dir)
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T {
	return &v
}

type profilerFixture struct {
	clients  *GormProfilerClientRepository
	banks    *GormProfilerBankRepository
	profiles *GormProfileRepository
	scope    *GormTransactionScope
	readers  *Readers
}

func newProfilerFixture(t *testing.T) (profilerFixture, *profiler.Profile) {
	t.Helper()
	ctx := context.Background()
	db := newSQLiteDB(t)
	f := profilerFixture{
		clients:  NewGormProfilerClientRepository(db),
		banks:    NewGormProfilerBankRepository(db),
		profiles: NewGormProfileRepository(db),
		scope:    NewGormTransactionScope(db),
		readers:  NewReaders(db),
	}
	client, err := profiler.NewClient("Jane", "", "", "")
	require.NoError(t, err)
	require.NoError(t, f.clients.Create(ctx, client))
	bank, err := profiler.NewBank("Northwind", "")
	require.NoError(t, err)
	require.NoError(t, f.banks.Create(ctx, bank))

	p, err := profiler.NewProfile(profiler.ProfileInput{
		ClientID:                client.ID,
		BankID:                  bank.ID,
		PrePlannedDepositAmount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	require.NoError(t, f.profiles.Create(ctx, p))
	return f, p
}

func TestTransactionScope_CommitsAtomically(t *testing.T) {
	ctx := context.Background()
	f, p := newProfilerFixture(t)

	err := f.scope.Execute(ctx, func(repos appprofiler.LedgerRepositories) error {
		locked, err := repos.Profiles().FindByIDForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		pct := decimal.NewFromInt(10)
		tx, err := locked.Record(shared.TransactionTypeWithdraw, decimal.NewFromInt(200), &pct, "")
		if err != nil {
			return err
		}
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		return repos.Profiles().Save(ctx, locked)
	})
	require.NoError(t, err)

	got, err := f.profiles.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(got.TotalWithdrawnAmount))

	records, err := f.readers.Profiles.Find(ctx, query.NewPlan(nil, query.ListRequest{
		Page: query.NewPageRequest(1, 10),
		Sort: mustResolve(t, profiler.ProfileSort, "", ""),
	}))
	require.NoError(t, err)
	require.Len(t, records.Rows, 1)
	assert.Equal(t, "Jane", records.Rows[0].ClientName)
	assert.Equal(t, "Northwind", records.Rows[0].BankName)
	assert.Equal(t, int64(1), records.Rows[0].TransactionCount)
	assert.True(t, decimal.NewFromInt(300).Equal(records.Rows[0].RemainingBalance))

	txs, err := f.readers.ProfilerTransactions.Find(ctx, query.NewPlan(nil, query.ListRequest{
		Page: query.NewPageRequest(1, 10),
		Sort: mustResolve(t, profiler.TransactionSort, "", ""),
	}))
	require.NoError(t, err)
	require.Len(t, txs.Rows, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(txs.Rows[0].WithdrawChargesAmount))
	assert.True(t, txs.Rows[0].WithdrawChargesPercentage.Valid)

	assert.True(t, shared.IsKind(f.profiles.Delete(ctx, p.ID), shared.KindConflict))
	assert.True(t, shared.IsKind(f.clients.Delete(ctx, p.ClientID), shared.KindConflict))
}

func TestTransactionScope_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	f, p := newProfilerFixture(t)
	boom := errors.New("boom")

	err := f.scope.Execute(ctx, func(repos appprofiler.LedgerRepositories) error {
		locked, err := repos.Profiles().FindByIDForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		tx, err := locked.Record(shared.TransactionTypeDeposit, decimal.NewFromInt(50), nil, "")
		if err != nil {
			return err
		}
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		if err := repos.Profiles().Save(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := f.profiles.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(got.CurrentBalance))

	n, err := f.readers.ProfilerTransactions.Count(ctx, query.Plan{})
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, f.profiles.Delete(ctx, p.ID))
}

func TestProfileRepository_FindByIDForUpdate_NotFound(t *testing.T) {
	f, _ := newProfilerFixture(t)
	_, err := f.profiles.FindByIDForUpdate(context.Background(), uuid.New())
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestCardRepository_Delete_Statements(t *testing.T) {
	t.Run("guarded delete checks dependents in a transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE card_id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectRollback()

		err := NewGormCardRepository(db).Delete(context.Background(), id, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3 transactions")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cascade detaches then deletes", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "transactions" SET "card_id"=.* WHERE card_id = `).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "cards" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewGormCardRepository(db).Delete(context.Background(), id, true))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "transactions"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := NewGormCardRepository(db).Delete(context.Background(), id, true)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindStorage))
		assert.Contains(t, err.Error(), "detach card")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReaders_EqualSortKeysFallBackToID(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	f := newBackofficeFixture(db)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, name := range []string{"b", "a", "c"} {
		c, _ := backoffice.NewClient(backoffice.ClientInput{Name: name})
		c.CreatedAt, c.UpdatedAt = at, at
		require.NoError(t, f.clients.Create(ctx, c))
	}
	page, err := NewReaders(db).Clients.Find(ctx, query.NewPlan(nil, query.ListRequest{
		Page: query.NewPageRequest(1, 2),
		Sort: mustResolve(t, backoffice.ClientSort, "created_at", "desc"),
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Info.TotalCount)
	assert.Len(t, page.Rows, 2)
	assert.True(t, page.Rows[0].ID.String() < page.Rows[1].ID.String())
}
