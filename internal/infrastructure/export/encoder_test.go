package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/export"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var generatedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func fixture() []backoffice.TransactionRecord {
	at := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	return []backoffice.TransactionRecord{
		{
			ID: uuid.New(), ClientName: "Acme, Inc.", BankName: "North", CardName: "Visa",
			TransactionType: shared.TransactionTypeDeposit, TransactionAmount: decimal.NewFromInt(1000),
			WidthdrawCharges: decimal.Zero, Remark: `said "hello"`, CreatedAt: at,
		},
		{
			ID: uuid.New(), ClientName: "Acme, Inc.", BankName: "North",
			TransactionType: shared.TransactionTypeWithdraw, TransactionAmount: decimal.NewFromInt(200),
			WidthdrawCharges: decimal.NewFromInt(10), Remark: "line one\nline two", CreatedAt: at.Add(time.Hour),
		},
		{
			ID: uuid.New(), ClientName: "Globex",
			TransactionType: shared.TransactionTypeWithdraw, TransactionAmount: decimal.RequireFromString("50.25"),
			WidthdrawCharges: decimal.NewFromInt(2), CreatedAt: at.Add(2 * time.Hour),
		},
	}
}

// chunked feeds rows in chunks of size.
func chunked[R any](rows []R, size int) Rows[R] {
	return func(yield func([]R) error) error {
		for i := 0; i < len(rows); i += size {
			end := min(i+size, len(rows))
			if err := yield(rows[i:end]); err != nil {
				return err
			}
		}
		return nil
	}
}

func document(t *testing.T) *Document[backoffice.TransactionRecord] {
	t.Helper()
	fields, err := export.Transactions.Fields.Select(nil)
	require.NoError(t, err)
	return &Document[backoffice.TransactionRecord]{
		Dataset:        export.Transactions,
		Fields:         fields,
		GeneratedAt:    generatedAt,
		FiltersApplied: map[string]string{"transaction_type": "withdraw"},
	}
}

func TestCSVEncoder_RoundTrip(t *testing.T) {
	rows := fixture()
	doc := document(t)

	var buf bytes.Buffer
	n, err := New[backoffice.TransactionRecord](export.FormatCSV, nil).Encode(context.Background(), &buf, doc, chunked(rows, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, export.Labels(doc.Fields), records[0])
	for i, r := range rows {
		assert.Equal(t, export.Project(doc.Fields, r), records[i+1])
	}
	assert.Equal(t, `said "hello"`, records[1][len(records[1])-1])
}

func TestJSONEncoder_RoundTrip(t *testing.T) {
	rows := fixture()
	doc := document(t)

	var buf bytes.Buffer
	n, err := New[backoffice.TransactionRecord](export.FormatJSON, nil).Encode(context.Background(), &buf, doc, chunked(rows, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var out struct {
		Transactions []map[string]any `json:"transactions"`
		Metadata     export.Metadata  `json:"metadata"`
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&out))

	require.Len(t, out.Transactions, 3)
	assert.Equal(t, int64(3), out.Metadata.TotalRows)
	assert.Equal(t, generatedAt, out.Metadata.GeneratedAt)
	assert.Equal(t, "withdraw", out.Metadata.FiltersApplied["transaction_type"])
	assert.Equal(t, export.Keys(doc.Fields), out.Metadata.SelectedFields)

	for i, r := range rows {
		got := out.Transactions[i]
		assert.Len(t, got, len(doc.Fields))
		assert.Equal(t, r.ClientName, got["client_name"])
		assert.Equal(t, string(r.TransactionType), got["transaction_type"])
		assert.Equal(t, json.Number(r.TransactionAmount.String()), got["transaction_amount"])
		assert.Equal(t, json.Number(r.ChargeAmount().String()), got["charge_amount"])
		assert.Equal(t, r.Remark, got["remark"])
		assert.Equal(t, r.CreatedAt.Format(time.RFC3339), got["created_at"])
	}
}

func TestJSONEncoder_KeepsFieldOrder(t *testing.T) {
	fields, err := export.Transactions.Fields.Select([]string{"transaction_amount", "client_name"})
	require.NoError(t, err)
	doc := &Document[backoffice.TransactionRecord]{Dataset: export.Transactions, Fields: fields, GeneratedAt: generatedAt}

	var buf bytes.Buffer
	_, err = New[backoffice.TransactionRecord](export.FormatJSON, nil).Encode(context.Background(), &buf, doc, chunked(fixture()[:1], 10))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), `{"transactions":[{"transaction_amount":1000,"client_name":"Acme, Inc."}]`))
	assert.Contains(t, buf.String(), `"filters_applied":{}`)
}

func TestJSONEncoder_EmptyRows(t *testing.T) {
	var buf bytes.Buffer
	n, err := New[backoffice.TransactionRecord](export.FormatJSON, nil).Encode(context.Background(), &buf, document(t), chunked[backoffice.TransactionRecord](nil, 10))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, json.Valid(buf.Bytes()))
	assert.True(t, strings.HasPrefix(buf.String(), `{"transactions":[],"metadata":`))
}

func TestExcelEncoder(t *testing.T) {
	rows := fixture()
	doc := document(t)

	var buf bytes.Buffer
	n, err := New[backoffice.TransactionRecord](export.FormatExcel, nil).Encode(context.Background(), &buf, doc, chunked(rows, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{dataSheet, metadataSheet}, f.GetSheetList())

	data, err := f.GetRows(dataSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, data, 4)
	assert.Equal(t, export.Labels(doc.Fields), data[0])
	assert.Equal(t, "Globex", data[3][1])
	assert.Equal(t, "50.25", data[3][5])

	meta, err := f.GetRows(metadataSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Rows", "3"}, meta[0])
	assert.Equal(t, []string{"Filter: transaction_type", "withdraw"}, meta[3])
}

type fakeRenderer struct {
	req *printing.RenderRequest
	err error
}

func (f *fakeRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 fake"), PageCount: 1}, nil
}

func (f *fakeRenderer) Close() error { return nil }

func TestPDFEncoder_RendersGroupedReport(t *testing.T) {
	renderer := &fakeRenderer{}
	doc := document(t)
	doc.Subtitle = "Acme, Inc."

	var buf bytes.Buffer
	n, err := New[backoffice.TransactionRecord](export.FormatPDF, renderer).Encode(context.Background(), &buf, doc, chunked(fixture(), 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "%PDF-1.4 fake", buf.String())

	require.NotNil(t, renderer.req)
	assert.Equal(t, "Client Transaction Report", renderer.req.Title)
	assert.Equal(t, printing.OrientationLandscape, renderer.req.Orientation)

	html := renderer.req.HTML
	assert.Contains(t, html, "<h2>Acme, Inc.</h2>")
	assert.Contains(t, html, "<h2>Globex</h2>")
	// Acme: 1000 - 200 + 20 charges
	assert.Contains(t, html, "<td class=\"num\">800.00</td><td class=\"num\">20.00 / 820.00</td>")
	// Globex only withdrew: amounts show the 1.005 charge
	assert.Contains(t, html, "Withdrawals only")
	assert.Contains(t, html, "said &#34;hello&#34;")
	assert.Contains(t, html, "transaction_type: withdraw")
}

func TestPDFEncoder_Errors(t *testing.T) {
	doc := document(t)

	_, err := New[backoffice.TransactionRecord](export.FormatPDF, nil).Encode(context.Background(), &bytes.Buffer{}, doc, chunked(fixture(), 2))
	assert.ErrorIs(t, err, ErrRendererUnavailable)

	boom := errors.New("chrome crashed")
	_, err = New[backoffice.TransactionRecord](export.FormatPDF, &fakeRenderer{err: boom}).Encode(context.Background(), &bytes.Buffer{}, doc, chunked(fixture(), 2))
	assert.ErrorIs(t, err, boom)
}

func TestEncoders_StopOnSourceError(t *testing.T) {
	boom := errors.New("read failed")
	failing := func(yield func([]backoffice.TransactionRecord) error) error {
		if err := yield(fixture()[:1]); err != nil {
			return err
		}
		return boom
	}
	for _, f := range export.Formats {
		t.Run(string(f), func(t *testing.T) {
			_, err := New[backoffice.TransactionRecord](f, &fakeRenderer{}).Encode(context.Background(), &bytes.Buffer{}, document(t), failing)
			assert.ErrorIs(t, err, boom)
		})
	}
}
