// Package exporter serializes exported rows into CSV, Excel, JSON and PDF
// documents. Rows arrive in chunks and are written as they come, except for
// PDF which regroups the whole set before rendering.
package exporter

import (
	"context"
	"io"
	"time"

	"github.com/finops/backend/internal/domain/export"
	"github.com/finops/backend/internal/infrastructure/printing"
)

// Rows streams the exported rows chunk by chunk into yield.
type Rows[R any] func(yield func([]R) error) error

// Document is everything an encoder needs besides the rows.
type Document[R any] struct {
	Dataset export.Dataset[R]
	Fields  []export.Field[R]
	// Subtitle names the scope of the export, e.g. a client.
	Subtitle       string
	GeneratedAt    time.Time
	FiltersApplied map[string]string
}

// Encoder writes one format. Encode returns the number of rows written.
type Encoder[R any] interface {
	Encode(ctx context.Context, w io.Writer, doc *Document[R], rows Rows[R]) (int64, error)
}

// New returns the encoder of format. renderer is only used for PDF.
func New[R any](format export.Format, renderer printing.PDFRenderer) Encoder[R] {
	switch format {
	case export.FormatExcel:
		return &excelEncoder[R]{}
	case export.FormatJSON:
		return &jsonEncoder[R]{}
	case export.FormatPDF:
		return &pdfEncoder[R]{renderer: renderer}
	default:
		return &csvEncoder[R]{}
	}
}

func (d *Document[R]) metadata(rows int64) export.Metadata {
	filters := d.FiltersApplied
	if filters == nil {
		filters = map[string]string{}
	}
	return export.Metadata{
		TotalRows:      rows,
		GeneratedAt:    d.GeneratedAt.UTC(),
		FiltersApplied: filters,
		SelectedFields: export.Keys(d.Fields),
	}
}
