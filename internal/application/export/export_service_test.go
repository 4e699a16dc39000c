package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/export"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/domain/query"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sliceWalker[T any] struct {
	rows    []T
	counted int
	walked  int
	err     error
}

func (w *sliceWalker[T]) Each(_ context.Context, _ query.Plan, size int, fn func([]T) error) error {
	w.walked++
	if w.err != nil {
		return w.err
	}
	for i := 0; i < len(w.rows); i += size {
		if err := fn(w.rows[i:min(i+size, len(w.rows))]); err != nil {
			return err
		}
	}
	return nil
}

func (w *sliceWalker[T]) Count(context.Context, query.Plan) (int64, error) {
	w.counted++
	return int64(len(w.rows)), w.err
}

type clientReader struct {
	byID map[string]backoffice.ClientSummary
}

func (r *clientReader) Find(context.Context, query.Plan) (*query.Page[backoffice.ClientSummary], error) {
	return nil, errors.New("not used")
}

func (r *clientReader) First(_ context.Context, resource string, conds ...query.Condition) (*backoffice.ClientSummary, error) {
	id := conds[0].(query.Equal).Value.(string)
	c, ok := r.byID[id]
	if !ok {
		return nil, shared.NewNotFoundError(resource)
	}
	return &c, nil
}

type recorded struct {
	dataset, format string
	rows            int64
	size            int
	err             error
}

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) ObserveExport(dataset, format string, rows int64, size int, _ time.Duration, err error) {
	f.calls = append(f.calls, recorded{dataset, format, rows, size, err})
}

var acmeID = uuid.MustParse("6f1c1a56-3c1e-4b55-9d55-0a1f0d4c2b11")

func rows() []backoffice.TransactionRecord {
	at := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	return []backoffice.TransactionRecord{
		{ID: uuid.New(), ClientID: acmeID, ClientName: "Acme Corp", TransactionType: shared.TransactionTypeDeposit, TransactionAmount: decimal.NewFromInt(1000), CreatedAt: at},
		{ID: uuid.New(), ClientID: acmeID, ClientName: "Acme Corp", TransactionType: shared.TransactionTypeWithdraw, TransactionAmount: decimal.NewFromInt(200), WidthdrawCharges: decimal.NewFromInt(10), CreatedAt: at},
		{ID: uuid.New(), ClientID: acmeID, ClientName: "Acme Corp", TransactionType: shared.TransactionTypeWithdraw, TransactionAmount: decimal.NewFromInt(5), CreatedAt: at},
	}
}

func newService(w *sliceWalker[backoffice.TransactionRecord], opts ...Option) *Service {
	clients := &clientReader{byID: map[string]backoffice.ClientSummary{
		acmeID.String(): {ID: acmeID, Name: "  Acme   Corp. "},
	}}
	s := NewService(w, &sliceWalker[profiler.TransactionRecord]{}, clients, nil, zap.NewNop(), opts...)
	s.now = func() time.Time { return time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC) }
	return s
}

func TestService_ExportTransactions_CSV(t *testing.T) {
	w := &sliceWalker[backoffice.TransactionRecord]{rows: rows()}
	rec := &fakeRecorder{}
	s := newService(w, WithLimits(0, 2), WithRecorder(rec))

	res, err := s.ExportTransactions(context.Background(), Request{
		Format:  "CSV",
		Fields:  []string{"client_name", "transaction_amount"},
		Filters: map[string]string{"client_id": acmeID.String()},
	})
	require.NoError(t, err)

	assert.Equal(t, "transactions_Acme_Corp_20240304_050607.csv", res.Filename)
	assert.Equal(t, "text/csv", res.MimeType)
	assert.Equal(t, export.FormatCSV, res.Format)
	assert.Equal(t, int64(3), res.Metadata.TotalRows)
	assert.Equal(t, int64(len(res.Content)), res.Metadata.FileSizeBytes)
	assert.Equal(t, []string{"client_name", "transaction_amount"}, res.Metadata.SelectedFields)
	assert.Equal(t, acmeID.String(), res.Metadata.FiltersApplied["client_id"])
	assert.Empty(t, res.DownloadURL)

	records, err := csv.NewReader(bytes.NewReader(res.Content)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Client", "Amount"},
		{"Acme Corp", "1000"},
		{"Acme Corp", "200"},
		{"Acme Corp", "5"},
	}, records)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recorded{"transactions", "csv", 3, len(res.Content), nil}, rec.calls[0])
}

func TestService_Export_UnscopedFilename(t *testing.T) {
	s := newService(&sliceWalker[backoffice.TransactionRecord]{rows: rows()})

	res, err := s.ExportTransactions(context.Background(), Request{Format: "json"})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^transactions_\d{8}_\d{6}\.json$`), res.Filename)

	// unknown client: the name is dropped, the export still succeeds
	res, err = s.ExportTransactions(context.Background(), Request{
		Format:  "xlsx",
		Filters: map[string]string{"client_id": uuid.NewString()},
	})
	require.NoError(t, err)
	assert.Equal(t, "transactions_20240304_050607.xlsx", res.Filename)
}

func TestService_Export_ReportsEveryProblem(t *testing.T) {
	w := &sliceWalker[backoffice.TransactionRecord]{rows: rows()}
	s := newService(w)

	_, err := s.ExportTransactions(context.Background(), Request{
		Format:  "docx",
		Fields:  []string{"client_name", "nope"},
		Filters: map[string]string{"min_amount": "abc"},
		Archive: true,
	})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.KindValidation, de.Kind)

	fields := map[string]bool{}
	for _, d := range de.Details {
		fields[d.Field] = true
	}
	assert.Equal(t, map[string]bool{"format": true, "fields": true, "min_amount": true, "archive": true}, fields)
	assert.Zero(t, w.counted)
	assert.Zero(t, w.walked)
}

func TestService_Export_RowLimit(t *testing.T) {
	w := &sliceWalker[backoffice.TransactionRecord]{rows: rows()}
	s := newService(w, WithLimits(2, 0))

	_, err := s.ExportTransactions(context.Background(), Request{Format: "csv"})
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	assert.Contains(t, err.Error(), "above the maximum of 2")
	assert.Zero(t, w.walked)
}

func TestService_Export_PDFNeedsRenderer(t *testing.T) {
	s := newService(&sliceWalker[backoffice.TransactionRecord]{rows: rows()})

	_, err := s.ExportTransactions(context.Background(), Request{Format: "pdf"})
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestService_Export_Archive(t *testing.T) {
	store := storage.NewStubObjectStorage()
	s := newService(&sliceWalker[backoffice.TransactionRecord]{rows: rows()}, WithArchive(store, time.Minute))

	res, err := s.ExportTransactions(context.Background(), Request{Format: "csv", Archive: true})
	require.NoError(t, err)

	obj, ok := store.Object("exports/transactions/transactions_20240304_050607.csv")
	require.True(t, ok)
	assert.Equal(t, res.Content, obj.Data)
	assert.Equal(t, "text/csv", obj.ContentType)
	assert.Contains(t, res.DownloadURL, "https://storage.example.com/download/")
}

type failingStore struct{}

func (failingStore) Upload(context.Context, string, []byte, string) error {
	return errors.New("bucket gone")
}

func (failingStore) GenerateDownloadURL(context.Context, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func TestService_Export_ArchiveFailure(t *testing.T) {
	rec := &fakeRecorder{}
	s := newService(&sliceWalker[backoffice.TransactionRecord]{rows: rows()}, WithArchive(failingStore{}, 0), WithRecorder(rec))

	_, err := s.ExportTransactions(context.Background(), Request{Format: "csv", Archive: true})
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindStorage))
	assert.Contains(t, err.Error(), "failed to archive export")
	require.Len(t, rec.calls, 1)
	assert.Error(t, rec.calls[0].err)
}

func TestService_Export_StorageErrorFromRows(t *testing.T) {
	boom := shared.WrapStorageError("read transactions", errors.New("conn reset"))
	s := newService(&sliceWalker[backoffice.TransactionRecord]{err: boom})

	_, err := s.ExportTransactions(context.Background(), Request{Format: "csv"})
	assert.ErrorIs(t, err, boom)
}

func TestService_PreviewTransactions(t *testing.T) {
	w := &sliceWalker[backoffice.TransactionRecord]{rows: rows()}
	s := newService(w, WithLimits(2, 0))

	est, err := s.PreviewTransactions(context.Background(), Request{Format: "excel"})
	require.NoError(t, err)
	assert.Equal(t, 1, w.counted)
	assert.Zero(t, w.walked)

	assert.Equal(t, export.FormatExcel, est.Format)
	assert.Equal(t, int64(3), est.TotalRows)
	assert.True(t, est.IsEstimate)
	assert.True(t, est.ExceedsLimit)
	assert.Equal(t, int64(2), est.MaxRows)
	assert.Equal(t, export.EstimateNote, est.Note)
	assert.Equal(t, export.Keys(export.Transactions.Fields.Canonical()), est.SelectedFields)
	assert.Positive(t, est.EstimatedBytes)
}

func TestService_ExportProfilerTransactions(t *testing.T) {
	profileID := uuid.New()
	pw := &sliceWalker[profiler.TransactionRecord]{rows: []profiler.TransactionRecord{
		{ID: uuid.New(), ProfileID: profileID, ClientName: "Jane", BankName: "North", TransactionType: shared.TransactionTypeDeposit, Amount: decimal.NewFromInt(10)},
	}}
	s := NewService(&sliceWalker[backoffice.TransactionRecord]{}, pw, nil, nil, zap.NewNop())

	res, err := s.ExportProfilerTransactions(context.Background(), Request{Format: "json", Fields: []string{"client_name", "amount"}})
	require.NoError(t, err)
	assert.Contains(t, string(res.Content), `{"client_name":"Jane","amount":10}`)
	assert.Equal(t, int64(1), res.Metadata.TotalRows)

	est, err := s.PreviewProfilerTransactions(context.Background(), Request{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), est.TotalRows)
	assert.False(t, est.ExceedsLimit)
}
