// Package bootstrap assembles the repositories, read engines and application
// services on top of one database handle. The API server, the CLI and the
// handler tests share it.
package bootstrap

import (
	appbackoffice "github.com/finops/backend/internal/application/backoffice"
	appexport "github.com/finops/backend/internal/application/export"
	appprofiler "github.com/finops/backend/internal/application/profiler"
	appreport "github.com/finops/backend/internal/application/report"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/persistence"
	"github.com/finops/backend/internal/infrastructure/persistence/engine"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the optional collaborators of the services.
type Options struct {
	Logger *zap.Logger
	// Observer receives query timings; nil disables them.
	Observer engine.Observer
	// Idempotency deduplicates profiler transaction creation; nil disables it.
	Idempotency       shared.IdempotencyStore
	IdempotencyConfig shared.IdempotencyConfig
	ChunkSize         int
	Export            []appexport.Option
}

// Services is every application service of the API.
type Services struct {
	Readers *persistence.Readers

	Clients      *appbackoffice.ClientService
	Banks        *appbackoffice.BankService
	Cards        *appbackoffice.CardService
	Transactions *appbackoffice.TransactionService

	ProfilerClients      *appprofiler.ClientService
	ProfilerBanks        *appprofiler.BankService
	Profiles             *appprofiler.ProfileService
	ProfilerTransactions *appprofiler.TransactionService

	Reports *appreport.ReportService
	Exports *appexport.Service
}

// NewServices wires the services on db.
func NewServices(db *gorm.DB, opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engineOpts := []engine.Option{engine.WithLogger(log)}
	if opts.Observer != nil {
		engineOpts = append(engineOpts, engine.WithObserver(opts.Observer))
	}
	readers := persistence.NewReaders(db, engineOpts...)

	clients := persistence.NewGormClientRepository(db)
	banks := persistence.NewGormBankRepository(db)
	cards := persistence.NewGormCardRepository(db)
	transactions := persistence.NewGormTransactionRepository(db)

	profilerClients := persistence.NewGormProfilerClientRepository(db)
	profilerBanks := persistence.NewGormProfilerBankRepository(db)
	profiles := persistence.NewGormProfileRepository(db)
	profilerTransactions := persistence.NewGormProfilerTransactionRepository(db)
	scope := persistence.NewGormTransactionScope(db)

	var txOpts []appprofiler.TransactionServiceOption
	if opts.Idempotency != nil {
		txOpts = append(txOpts, appprofiler.WithIdempotency(opts.Idempotency, opts.IdempotencyConfig))
	}

	return &Services{
		Readers: readers,

		Clients:      appbackoffice.NewClientService(clients, readers.Clients),
		Banks:        appbackoffice.NewBankService(banks, readers.Banks),
		Cards:        appbackoffice.NewCardService(cards, readers.Cards),
		Transactions: appbackoffice.NewTransactionService(transactions, clients, banks, cards, readers.Transactions),

		ProfilerClients: appprofiler.NewClientService(profilerClients, readers.ProfilerClients),
		ProfilerBanks:   appprofiler.NewBankService(profilerBanks, readers.ProfilerBanks),
		Profiles: appprofiler.NewProfileService(
			profilerClients, profilerBanks, profiles, scope, readers.Profiles, log,
		),
		ProfilerTransactions: appprofiler.NewTransactionService(
			scope, profilerTransactions, readers.ProfilerTransactions, log, txOpts...,
		),

		Reports: appreport.NewReportService(readers.Transactions, readers.ProfilerTransactions, opts.ChunkSize, log),
		Exports: appexport.NewService(
			readers.Transactions, readers.ProfilerTransactions,
			readers.Clients, readers.ProfilerClients,
			log, opts.Export...,
		),
	}
}
