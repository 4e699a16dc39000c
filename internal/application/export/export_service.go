// Package export runs export jobs: validation, the row limit, streaming the
// rows through an encoder and optional archival in object storage.
package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/finops/backend/internal/application/listing"
	appbackoffice "github.com/finops/backend/internal/application/backoffice"
	appprofiler "github.com/finops/backend/internal/application/profiler"
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/export"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/query"
	"github.com/finops/backend/internal/domain/shared"
	exporter "github.com/finops/backend/internal/infrastructure/export"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/printing"
	"github.com/finops/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const (
	DefaultMaxRows   int64 = 50000
	DefaultChunkSize       = 500
	archivePrefix          = "exports"
)

// Recorder observes finished exports (metrics).
type Recorder interface {
	ObserveExport(dataset, format string, rows int64, size int, d time.Duration, err error)
}

// Option configures a Service.
type Option func(*Service)

// WithLimits sets the row limit and the read chunk size.
func WithLimits(maxRows int64, chunkSize int) Option {
	return func(s *Service) {
		if maxRows > 0 {
			s.maxRows = maxRows
		}
		if chunkSize > 0 {
			s.chunkSize = chunkSize
		}
	}
}

// WithArchive enables archival to store. Links expire after linkTTL (store
// default when zero).
func WithArchive(store storage.ObjectStore, linkTTL time.Duration) Option {
	return func(s *Service) {
		s.store = store
		s.linkTTL = linkTTL
	}
}

// WithRecorder sets the export observer.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithPDFRenderer enables the PDF format.
func WithPDFRenderer(r printing.PDFRenderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// Service exports back-office and profiler transactions.
type Service struct {
	transactions         listing.Walker[backoffice.TransactionRecord]
	profilerTransactions listing.Walker[profiler.TransactionRecord]
	clients              listing.Reader[backoffice.ClientSummary]
	profilerClients      listing.Reader[profiler.ClientSummary]

	renderer  printing.PDFRenderer
	store     storage.ObjectStore
	linkTTL   time.Duration
	recorder  Recorder
	maxRows   int64
	chunkSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new export Service
func NewService(
	transactions listing.Walker[backoffice.TransactionRecord],
	profilerTransactions listing.Walker[profiler.TransactionRecord],
	clients listing.Reader[backoffice.ClientSummary],
	profilerClients listing.Reader[profiler.ClientSummary],
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		transactions:         transactions,
		profilerTransactions: profilerTransactions,
		clients:              clients,
		profilerClients:      profilerClients,
		maxRows:              DefaultMaxRows,
		chunkSize:            DefaultChunkSize,
		logger:               logger,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// job is one dataset bound to its rows and list spec.
type job[R any] struct {
	dataset export.Dataset[R]
	rows    listing.Walker[R]
	spec    listing.Spec
	// scope names the single client an export is filtered to.
	scope func(ctx context.Context, filters map[string]string) string
}

func (s *Service) transactionJob() job[backoffice.TransactionRecord] {
	return job[backoffice.TransactionRecord]{
		dataset: export.Transactions,
		rows:    s.transactions,
		spec:    appbackoffice.TransactionList,
		scope: func(ctx context.Context, filters map[string]string) string {
			return clientName(ctx, s, s.clients, "c.id", filters, func(c *backoffice.ClientSummary) string { return c.Name })
		},
	}
}

func (s *Service) profilerTransactionJob() job[profiler.TransactionRecord] {
	return job[profiler.TransactionRecord]{
		dataset: export.ProfilerTransactions,
		rows:    s.profilerTransactions,
		spec:    appprofiler.TransactionList,
		scope: func(ctx context.Context, filters map[string]string) string {
			return clientName(ctx, s, s.profilerClients, "pc.id", filters, func(c *profiler.ClientSummary) string { return c.Name })
		},
	}
}

// ExportTransactions exports back-office transactions.
func (s *Service) ExportTransactions(ctx context.Context, req Request) (*export.Result, error) {
	return run(ctx, s, s.transactionJob(), req)
}

// PreviewTransactions estimates a back-office transaction export.
func (s *Service) PreviewTransactions(ctx context.Context, req Request) (*export.Estimate, error) {
	return preview(ctx, s, s.transactionJob(), req)
}

// ExportProfilerTransactions exports profiler transactions.
func (s *Service) ExportProfilerTransactions(ctx context.Context, req Request) (*export.Result, error) {
	return run(ctx, s, s.profilerTransactionJob(), req)
}

// PreviewProfilerTransactions estimates a profiler transaction export.
func (s *Service) PreviewProfilerTransactions(ctx context.Context, req Request) (*export.Estimate, error) {
	return preview(ctx, s, s.profilerTransactionJob(), req)
}

type prepared[R any] struct {
	format export.Format
	fields []export.Field[R]
	list   *listing.Prepared
}

// prepare validates format, fields and filters and reports every problem in
// one validation error.
func prepare[R any](s *Service, j job[R], req Request) (*prepared[R], error) {
	var errs shared.ValidationErrors
	format, err := export.ParseFormat(req.Format)
	errs.Merge("format", err)
	fields, err := j.dataset.Fields.Select(req.Fields)
	errs.Merge("fields", err)
	list, err := listing.Prepare(j.spec, req.Params())
	errs.Merge("filters", err)
	if req.Archive && s.store == nil {
		errs.Add("archive", "object storage is not configured")
	}
	if format == export.FormatPDF && s.renderer == nil {
		errs.Add("format", "pdf output is not available", req.Format)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &prepared[R]{format: format, fields: fields, list: list}, nil
}

func preview[R any](ctx context.Context, s *Service, j job[R], req Request) (*export.Estimate, error) {
	p, err := prepare(s, j, req)
	if err != nil {
		return nil, err
	}
	total, err := j.rows.Count(ctx, p.list.Plan)
	if err != nil {
		return nil, err
	}
	est := export.NewEstimate(p.format, p.fields, total, s.maxRows)
	return &est, nil
}

func run[R any](ctx context.Context, s *Service, j job[R], req Request) (res *export.Result, err error) {
	log := logger.For(ctx, s.logger).With(zap.String("dataset", j.dataset.Name))
	p, err := prepare(s, j, req)
	if err != nil {
		return nil, err
	}

	start := s.now()
	var rows int64
	var size int
	defer func() {
		if s.recorder != nil {
			s.recorder.ObserveExport(j.dataset.Name, string(p.format), rows, size, time.Since(start), err)
		}
	}()

	total, err := j.rows.Count(ctx, p.list.Plan)
	if err != nil {
		return nil, err
	}
	if total > s.maxRows {
		return nil, shared.NewValidationError("Export too large", shared.FieldError{
			Field:   "filters",
			Message: fmt.Sprintf("export matches %d rows, above the maximum of %d; narrow the filters", total, s.maxRows),
		})
	}

	doc := &exporter.Document[R]{
		Dataset:        j.dataset,
		Fields:         p.fields,
		GeneratedAt:    start.UTC(),
		FiltersApplied: p.list.Applied.Filters,
		Subtitle:       j.scope(ctx, p.list.Applied.Filters),
	}
	source := func(yield func([]R) error) error {
		return j.rows.Each(ctx, p.list.Plan, s.chunkSize, yield)
	}

	var buf bytes.Buffer
	rows, err = exporter.New[R](p.format, s.renderer).Encode(ctx, &buf, doc, source)
	if err != nil {
		log.Error("Export encoding failed", zap.String("format", string(p.format)), zap.Error(err))
		return nil, err
	}
	size = buf.Len()

	res = &export.Result{
		Content:  buf.Bytes(),
		Filename: export.Filename(j.dataset.Name, doc.Subtitle, p.format, start),
		MimeType: p.format.MimeType(),
		Format:   p.format,
		Metadata: export.Metadata{
			TotalRows:      rows,
			FileSizeBytes:  int64(size),
			GeneratedAt:    doc.GeneratedAt,
			FiltersApplied: doc.FiltersApplied,
			SelectedFields: export.Keys(p.fields),
		},
	}

	if req.Archive {
		key := path.Join(archivePrefix, j.dataset.Name, res.Filename)
		if err = s.store.Upload(ctx, key, res.Content, res.MimeType); err != nil {
			log.Error("Export archive upload failed", zap.String("key", key), zap.Error(err))
			return nil, shared.WrapStorageError("archive export", err)
		}
		link, _, err := s.store.GenerateDownloadURL(ctx, key, s.linkTTL)
		if err != nil {
			return nil, shared.WrapStorageError("sign export link", err)
		}
		res.DownloadURL = link
	}

	log.Info("Export generated",
		zap.String("format", string(p.format)),
		zap.Int64("rows", rows),
		zap.Int("bytes", size),
		zap.String("filename", res.Filename),
	)
	return res, nil
}

// clientName resolves the client an export is scoped to, when exactly one
// client id filter is applied. Lookup failures only drop the name.
func clientName[C any](ctx context.Context, s *Service, r listing.Reader[C], column string, filters map[string]string, name func(*C) string) string {
	if r == nil {
		return ""
	}
	id := filters["client_ids"]
	if id == "" {
		id = filters["client_id"]
	}
	if id == "" || strings.Contains(id, ",") {
		return ""
	}
	c, err := r.First(ctx, "client", query.Equal{Column: column, Value: id})
	if err != nil {
		logger.For(ctx, s.logger).Warn("Export client lookup failed", zap.String("client_id", id), zap.Error(err))
		return ""
	}
	return name(c)
}
