package backoffice

import (
	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/query"
)

// List specs of the back-office read sources.
var (
	ClientList = listing.Spec{
		Sort:   backoffice.ClientSort,
		Search: backoffice.ClientSearchColumns,
		Parse:  counterparties("c"),
	}
	BankList = listing.Spec{
		Sort:   backoffice.BankSort,
		Search: backoffice.BankSearchColumns,
		Parse:  counterparties("b"),
	}
	CardList = listing.Spec{
		Sort:   backoffice.CardSort,
		Search: backoffice.CardSearchColumns,
		Parse:  counterparties("k"),
	}
	TransactionList = listing.Spec{
		Sort:   backoffice.TransactionSort,
		Search: backoffice.TransactionSearchColumns,
		Parse: func(v *query.Values) ([]query.Condition, error) {
			return backoffice.ParseTransactionFilter(v).Conditions()
		},
	}
)

func counterparties(alias string) func(v *query.Values) ([]query.Condition, error) {
	return func(v *query.Values) ([]query.Condition, error) {
		return backoffice.ParseCounterpartyFilter(v).Conditions(alias)
	}
}

func byID(alias string, id any) query.Condition {
	return query.Equal{Column: alias + ".id", Value: id}
}
