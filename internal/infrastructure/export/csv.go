package exporter

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/finops/backend/internal/domain/export"
)

type csvEncoder[R any] struct{}

// Encode writes a header row of field labels followed by one record per row.
// Quoting follows RFC 4180.
func (e *csvEncoder[R]) Encode(ctx context.Context, w io.Writer, doc *Document[R], rows Rows[R]) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(export.Labels(doc.Fields)); err != nil {
		return 0, err
	}

	var n int64
	err := rows(func(chunk []R) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range chunk {
			if err := cw.Write(export.Project(doc.Fields, r)); err != nil {
				return err
			}
		}
		n += int64(len(chunk))
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return n, err
	}
	cw.Flush()
	return n, cw.Error()
}
