package exporter

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/finops/backend/internal/domain/export"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type jsonEncoder[R any] struct{}

// Encode writes {"transactions":[...],"metadata":{...}}. Rows keep the field
// selection order; metadata comes last so total_rows is the written count.
func (e *jsonEncoder[R]) Encode(ctx context.Context, w io.Writer, doc *Document[R], rows Rows[R]) (int64, error) {
	bw := bufio.NewWriter(w)
	keys := make([][]byte, len(doc.Fields))
	for i, f := range doc.Fields {
		k, err := json.Marshal(f.Key)
		if err != nil {
			return 0, err
		}
		keys[i] = k
	}

	if _, err := bw.WriteString(`{"transactions":[`); err != nil {
		return 0, err
	}
	var n int64
	err := rows(func(chunk []R) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range chunk {
			if n > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if err := writeJSONRow(bw, keys, doc.Fields, r); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}

	meta, err := json.Marshal(doc.metadata(n))
	if err != nil {
		return n, err
	}
	bw.WriteString(`],"metadata":`)
	bw.Write(meta)
	bw.WriteByte('}')
	return n, bw.Flush()
}

func writeJSONRow[R any](bw *bufio.Writer, keys [][]byte, fields []export.Field[R], row R) error {
	bw.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.Write(keys[i])
		bw.WriteByte(':')
		v, err := json.Marshal(jsonValue(f.Value(row)))
		if err != nil {
			return err
		}
		bw.Write(v)
	}
	return bw.WriteByte('}')
}

// jsonValue maps a field value to its JSON form: amounts as numbers, missing
// values as null.
func jsonValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return json.Number(x.String())
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return json.Number(x.Decimal.String())
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *uuid.UUID:
		if x == nil {
			return nil
		}
		return x.String()
	case string, bool, nil:
		return x
	}
	return export.Text(v)
}
