package export

import "math"

// EstimateNote is attached to every preview.
const EstimateNote = "Heuristic estimate from average field widths and fixed per-format overheads; the generated file size will differ."

type formatProfile struct {
	fieldOverhead int
	rowOverhead   int
	fileOverhead  int
	factor        float64
}

// Per-format overheads and empirical compression factors.
var profiles = map[Format]formatProfile{
	FormatCSV:   {fieldOverhead: 1, rowOverhead: 2, fileOverhead: 0, factor: 0.8},
	FormatExcel: {fieldOverhead: 30, rowOverhead: 24, fileOverhead: 8 << 10, factor: 0.6},
	FormatJSON:  {fieldOverhead: 6, rowOverhead: 4, fileOverhead: 512, factor: 0.9},
	FormatPDF:   {fieldOverhead: 24, rowOverhead: 64, fileOverhead: 20 << 10, factor: 0.95},
}

// CompressionFactor is the empirical size factor of format.
func CompressionFactor(f Format) float64 {
	return profiles[f].factor
}

// Estimate is the outcome of a preview.
type Estimate struct {
	Format         Format   `json:"format"`
	TotalRows      int64    `json:"total_rows"`
	SelectedFields []string `json:"selected_fields"`
	EstimatedBytes int64    `json:"estimated_size_bytes"`
	IsEstimate     bool     `json:"is_estimate"`
	Note           string   `json:"note"`
	ExceedsLimit   bool     `json:"exceeds_limit"`
	MaxRows        int64    `json:"max_rows"`
}

// EstimateSize predicts the encoded size of rows rows of fields in format.
// JSON rows also pay for their keys, and every format but PDF carries a header.
func EstimateSize[R any](format Format, fields []Field[R], rows int64) int64 {
	p, ok := profiles[format]
	if !ok || rows < 0 {
		return 0
	}
	perRow := p.rowOverhead
	header := 0
	for _, f := range fields {
		perRow += f.Width + p.fieldOverhead
		switch format {
		case FormatJSON:
			perRow += len(f.Key)
		case FormatCSV, FormatExcel:
			header += len(f.Label) + p.fieldOverhead
		}
	}
	raw := float64(p.fileOverhead+header) + float64(perRow)*float64(rows)
	return int64(math.Ceil(raw * p.factor))
}

// NewEstimate builds the preview response for a counted export.
func NewEstimate[R any](format Format, fields []Field[R], rows, maxRows int64) Estimate {
	return Estimate{
		Format:         format,
		TotalRows:      rows,
		SelectedFields: Keys(fields),
		EstimatedBytes: EstimateSize(format, fields, rows),
		IsEstimate:     true,
		Note:           EstimateNote,
		ExceedsLimit:   maxRows > 0 && rows > maxRows,
		MaxRows:        maxRows,
	}
}
