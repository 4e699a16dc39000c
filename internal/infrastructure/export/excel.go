package exporter

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/finops/backend/internal/domain/export"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	dataSheet     = "Transactions"
	metadataSheet = "Metadata"
	// built-in number format "#,##0.00"
	amountNumFmt = 4
)

type excelEncoder[R any] struct{}

// Encode streams rows into a data sheet and adds a Metadata sheet with the
// row count, generation time and applied filters.
func (e *excelEncoder[R]) Encode(ctx context.Context, w io.Writer, doc *Document[R], rows Rows[R]) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return 0, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return 0, err
	}

	sw, err := f.NewStreamWriter(dataSheet)
	if err != nil {
		return 0, err
	}
	for i, fld := range doc.Fields {
		if err := sw.SetColWidth(i+1, i+1, columnWidth(fld.Label, fld.Width)); err != nil {
			return 0, err
		}
	}
	header := make([]interface{}, len(doc.Fields))
	for i, label := range export.Labels(doc.Fields) {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: label}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, err
	}

	var n int64
	err = rows(func(chunk []R) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range chunk {
			n++
			cell, err := excelize.CoordinatesToCellName(1, int(n)+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(doc.Fields))
			for i, fld := range doc.Fields {
				values[i] = excelValue(fld.Value(r), amountStyle)
			}
			if err := sw.SetRow(cell, values); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	if err := sw.Flush(); err != nil {
		return n, err
	}

	if err := writeMetadataSheet(f, doc.metadata(n)); err != nil {
		return n, err
	}
	return n, f.Write(w)
}

// excelValue keeps amounts numeric so the sheet can sum them.
func excelValue(v any, amountStyle int) interface{} {
	switch x := v.(type) {
	case decimal.Decimal:
		return excelize.Cell{StyleID: amountStyle, Value: x.InexactFloat64()}
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return excelize.Cell{StyleID: amountStyle, Value: x.Decimal.InexactFloat64()}
	}
	return export.Text(v)
}

func writeMetadataSheet(f *excelize.File, meta export.Metadata) error {
	if _, err := f.NewSheet(metadataSheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Total Rows", meta.TotalRows},
		{"Generated At", meta.GeneratedAt.Format(time.RFC3339)},
		{"Selected Fields", strings.Join(meta.SelectedFields, ", ")},
	}
	keys := make([]string, 0, len(meta.FiltersApplied))
	for k := range meta.FiltersApplied {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []interface{}{"Filter: " + k, meta.FiltersApplied[k]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(metadataSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(metadataSheet, "A", "A", 24)
}

// columnWidth fits the wider of the label and the average value width.
func columnWidth(label string, width int) float64 {
	w := len(label)
	if width > w {
		w = width
	}
	return float64(w + 2)
}
