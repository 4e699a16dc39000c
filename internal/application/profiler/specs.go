package profiler

import (
	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/query"
)

// List specs of the profiler read sources.
var (
	ClientList = listing.Spec{
		Sort:   profiler.ClientSort,
		Search: profiler.ClientSearchColumns,
		Parse:  owners("pc"),
	}
	BankList = listing.Spec{
		Sort:   profiler.BankSort,
		Search: profiler.BankSearchColumns,
		Parse:  owners("pb"),
	}
	ProfileList = listing.Spec{
		Sort:   profiler.ProfileSort,
		Search: profiler.ProfileSearchColumns,
		Parse: func(v *query.Values) ([]query.Condition, error) {
			return profiler.ParseProfileFilter(v).Conditions()
		},
	}
	TransactionList = listing.Spec{
		Sort:   profiler.TransactionSort,
		Search: profiler.TransactionSearchColumns,
		Parse: func(v *query.Values) ([]query.Condition, error) {
			return profiler.ParseTransactionFilter(v).Conditions()
		},
	}
)

func owners(alias string) func(v *query.Values) ([]query.Condition, error) {
	return func(v *query.Values) ([]query.Condition, error) {
		return profiler.ParseOwnerFilter(v).Conditions(alias)
	}
}

func byID(alias string, id any) query.Condition {
	return query.Equal{Column: alias + ".id", Value: id}
}
