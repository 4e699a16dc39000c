// Package export describes export jobs: formats, field projections, file
// naming and the preview size heuristic. Encoding lives in infrastructure.
package export

import (
	"strings"

	"github.com/finops/backend/internal/domain/shared"
)

// Format is an export output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
	FormatPDF   Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatExcel, FormatJSON, FormatPDF}

// ParseFormat accepts a format name case-insensitively; "xlsx" is an alias of excel.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatExcel, FormatJSON, FormatPDF:
		return f, nil
	case "xlsx":
		return FormatExcel, nil
	}
	return "", shared.NewValidationError("Invalid request parameters", shared.FieldError{
		Field: "format", Message: "must be one of: csv, excel, json, pdf", Value: s,
	})
}

// Extension is the file extension without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	default:
		return string(f)
	}
}

// MimeType is the content type of the encoded file.
func (f Format) MimeType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}
