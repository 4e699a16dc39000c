package persistence

import (
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/infrastructure/persistence/engine"
	"gorm.io/gorm"
)

// countBy joins the per-owner row count of table as alias.
func countBy(table, column, alias, as, owner string) string {
	return " LEFT JOIN (SELECT " + column + " AS owner_id, COUNT(*) AS " + as +
		" FROM " + table + " GROUP BY " + column + ") " + alias +
		" ON " + alias + ".owner_id = " + owner
}

// Read sources. Aliases match the filter and sort tables of the domain packages.
var (
	ClientSource = engine.Source{
		Name: "clients",
		Select: "c.id, c.name, c.email, c.mobile_number, c.address, c.remark, " +
			"COALESCE(tc.transaction_count, 0) AS transaction_count, c.created_at, c.updated_at",
		From:   "clients c" + countBy("transactions", "client_id", "tc", "transaction_count", "c.id"),
		Search: backoffice.ClientSearchColumns,
		Sort:   backoffice.ClientSort,
	}

	BankSource = engine.Source{
		Name: "banks",
		Select: "b.id, b.name, b.remark, COALESCE(tc.transaction_count, 0) AS transaction_count, " +
			"b.created_at, b.updated_at",
		From:   "banks b" + countBy("transactions", "bank_id", "tc", "transaction_count", "b.id"),
		Search: backoffice.BankSearchColumns,
		Sort:   backoffice.BankSort,
	}

	CardSource = engine.Source{
		Name: "cards",
		Select: "k.id, k.name, k.remark, COALESCE(tc.transaction_count, 0) AS transaction_count, " +
			"k.created_at, k.updated_at",
		From:   "cards k" + countBy("transactions", "card_id", "tc", "transaction_count", "k.id"),
		Search: backoffice.CardSearchColumns,
		Sort:   backoffice.CardSort,
	}

	TransactionSource = engine.Source{
		Name: "transactions",
		Select: "t.id, t.client_id, t.bank_id, t.card_id, t.transaction_type, t.transaction_amount, " +
			"t.widthdraw_charges, t.remark, c.name AS client_name, COALESCE(b.name, '') AS bank_name, " +
			"COALESCE(k.name, '') AS card_name, t.created_at, t.updated_at",
		From: "transactions t JOIN clients c ON c.id = t.client_id " +
			"LEFT JOIN banks b ON b.id = t.bank_id LEFT JOIN cards k ON k.id = t.card_id",
		Search: backoffice.TransactionSearchColumns,
		Sort:   backoffice.TransactionSort,
	}

	ProfilerClientSource = engine.Source{
		Name: "profiler_clients",
		Select: "pc.id, pc.name, pc.email, pc.mobile_number, pc.remark, " +
			"COALESCE(pn.profile_count, 0) AS profile_count, pc.created_at, pc.updated_at",
		From:   "profiler_clients pc" + countBy("profiler_profiles", "client_id", "pn", "profile_count", "pc.id"),
		Search: profiler.ClientSearchColumns,
		Sort:   profiler.ClientSort,
	}

	ProfilerBankSource = engine.Source{
		Name: "profiler_banks",
		Select: "pb.id, pb.bank_name, pb.remark, COALESCE(pn.profile_count, 0) AS profile_count, " +
			"pb.created_at, pb.updated_at",
		From:   "profiler_banks pb" + countBy("profiler_profiles", "bank_id", "pn", "profile_count", "pb.id"),
		Search: profiler.BankSearchColumns,
		Sort:   profiler.BankSort,
	}

	ProfileSource = engine.Source{
		Name: "profiler_profiles",
		Select: "p.id, p.client_id, p.bank_id, pc.name AS client_name, pb.bank_name, " +
			"p.pre_planned_deposit_amount, p.current_balance, p.total_withdrawn_amount, " +
			profiler.RemainingExpr + " AS remaining_balance, p.carry_forward_enabled, p.status, p.notes, " +
			"p.marked_done_at, p.carried_from_id, COALESCE(ptc.transaction_count, 0) AS transaction_count, " +
			"p.created_at, p.updated_at",
		From: "profiler_profiles p JOIN profiler_clients pc ON pc.id = p.client_id " +
			"JOIN profiler_banks pb ON pb.id = p.bank_id" +
			countBy("profiler_transactions", "profile_id", "ptc", "transaction_count", "p.id"),
		Search: profiler.ProfileSearchColumns,
		Sort:   profiler.ProfileSort,
	}

	ProfilerTransactionSource = engine.Source{
		Name: "profiler_transactions",
		Select: "pt.id, pt.profile_id, p.client_id, p.bank_id, pc.name AS client_name, pb.bank_name, " +
			"pt.transaction_type, pt.amount, pt.withdraw_charges_percentage, pt.withdraw_charges_amount, " +
			"pt.notes, pt.created_at, pt.updated_at",
		From: "profiler_transactions pt JOIN profiler_profiles p ON p.id = pt.profile_id " +
			"JOIN profiler_clients pc ON pc.id = p.client_id JOIN profiler_banks pb ON pb.id = p.bank_id",
		Search: profiler.TransactionSearchColumns,
		Sort:   profiler.TransactionSort,
	}
)

// Readers holds one query engine per read source.
type Readers struct {
	Clients              *engine.Engine[backoffice.ClientSummary]
	Banks                *engine.Engine[backoffice.InstrumentSummary]
	Cards                *engine.Engine[backoffice.InstrumentSummary]
	Transactions         *engine.Engine[backoffice.TransactionRecord]
	ProfilerClients      *engine.Engine[profiler.ClientSummary]
	ProfilerBanks        *engine.Engine[profiler.BankSummary]
	Profiles             *engine.Engine[profiler.ProfileRecord]
	ProfilerTransactions *engine.Engine[profiler.TransactionRecord]
}

// NewReaders builds the engines for every read source on db.
func NewReaders(db *gorm.DB, opts ...engine.Option) *Readers {
	return &Readers{
		Clients:              engine.New[backoffice.ClientSummary](db, ClientSource, opts...),
		Banks:                engine.New[backoffice.InstrumentSummary](db, BankSource, opts...),
		Cards:                engine.New[backoffice.InstrumentSummary](db, CardSource, opts...),
		Transactions:         engine.New[backoffice.TransactionRecord](db, TransactionSource, opts...),
		ProfilerClients:      engine.New[profiler.ClientSummary](db, ProfilerClientSource, opts...),
		ProfilerBanks:        engine.New[profiler.BankSummary](db, ProfilerBankSource, opts...),
		Profiles:             engine.New[profiler.ProfileRecord](db, ProfileSource, opts...),
		ProfilerTransactions: engine.New[profiler.TransactionRecord](db, ProfilerTransactionSource, opts...),
	}
}
