// Package report builds grouped transaction summaries.
package report

import (
	"context"
	"net/url"
	"time"

	"github.com/finops/backend/internal/application/listing"
	appbackoffice "github.com/finops/backend/internal/application/backoffice"
	appprofiler "github.com/finops/backend/internal/application/profiler"
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/export"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/report"
	"github.com/finops/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultChunkSize is the number of rows read per round trip.
const DefaultChunkSize = 500

// Summary is a grouped report with grand totals.
type Summary struct {
	Title          string            `json:"title"`
	Groups         []report.Group    `json:"groups"`
	Totals         report.Totals     `json:"totals"`
	GeneratedAt    time.Time         `json:"generated_at"`
	FiltersApplied map[string]string `json:"filters_applied"`
	SearchApplied  string            `json:"search_applied,omitempty"`
}

// ReportService provides the client and profile summary reports
type ReportService struct {
	transactions         listing.Walker[backoffice.TransactionRecord]
	profilerTransactions listing.Walker[profiler.TransactionRecord]
	chunkSize            int
	logger               *zap.Logger
	now                  func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	transactions listing.Walker[backoffice.TransactionRecord],
	profilerTransactions listing.Walker[profiler.TransactionRecord],
	chunkSize int,
	logger *zap.Logger,
) *ReportService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ReportService{
		transactions:         transactions,
		profilerTransactions: profilerTransactions,
		chunkSize:            chunkSize,
		logger:               logger,
		now:                  time.Now,
	}
}

// ClientSummary groups back-office transactions by client. params accepts
// the transaction list filters, search and sort.
func (s *ReportService) ClientSummary(ctx context.Context, params url.Values) (*Summary, error) {
	return summarize(ctx, s, s.transactions, appbackoffice.TransactionList, export.Transactions, params)
}

// ProfileSummary groups profiler transactions by profile.
func (s *ReportService) ProfileSummary(ctx context.Context, params url.Values) (*Summary, error) {
	return summarize(ctx, s, s.profilerTransactions, appprofiler.TransactionList, export.ProfilerTransactions, params)
}

func summarize[R any](ctx context.Context, s *ReportService, w listing.Walker[R], spec listing.Spec, ds export.Dataset[R], params url.Values) (*Summary, error) {
	p, err := listing.Prepare(spec, listing.WithDefaultSort(params, "client_name", "asc"))
	if err != nil {
		return nil, err
	}

	agg := report.NewAggregator(false)
	rows := 0
	err = w.Each(ctx, p.Plan, s.chunkSize, func(chunk []R) error {
		for _, r := range chunk {
			agg.Add(ds.Entry(r))
		}
		rows += len(chunk)
		return nil
	})
	if err != nil {
		return nil, err
	}

	groups := agg.Groups()
	logger.For(ctx, s.logger).Debug("Summary report built",
		zap.String("dataset", ds.Name),
		zap.Int("rows", rows),
		zap.Int("groups", len(groups)),
	)
	return &Summary{
		Title:          ds.Title,
		Groups:         groups,
		Totals:         report.Total(groups),
		GeneratedAt:    s.now().UTC(),
		FiltersApplied: p.Applied.Filters,
		SearchApplied:  p.Applied.Search,
	}, nil
}
