package export

import (
	"strings"
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field is one exportable column of a row type.
type Field[R any] struct {
	Key   string
	Label string
	// Width is the average encoded byte width of a value, used by previews.
	Width int
	Value func(R) any
	// Optional fields are left out of the canonical selection.
	Optional bool
}

// FieldSet is the ordered list of exportable fields of one dataset.
type FieldSet[R any] struct {
	fields []Field[R]
	index  map[string]int
}

// NewFieldSet indexes fields by key. Keys must be unique.
func NewFieldSet[R any](fields ...Field[R]) *FieldSet[R] {
	fs := &FieldSet[R]{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := fs.index[f.Key]; dup {
			panic("export: duplicate field " + f.Key)
		}
		fs.index[f.Key] = i
	}
	return fs
}

// Canonical returns the default selection.
func (fs *FieldSet[R]) Canonical() []Field[R] {
	out := make([]Field[R], 0, len(fs.fields))
	for _, f := range fs.fields {
		if !f.Optional {
			out = append(out, f)
		}
	}
	return out
}

// Keys lists every field key.
func (fs *FieldSet[R]) Keys() []string {
	keys := make([]string, len(fs.fields))
	for i, f := range fs.fields {
		keys[i] = f.Key
	}
	return keys
}

// Select resolves keys in the caller's order. An empty selection is the
// canonical list; unknown or repeated keys are a validation error.
func (fs *FieldSet[R]) Select(keys []string) ([]Field[R], error) {
	if len(keys) == 0 {
		return fs.Canonical(), nil
	}
	var errs shared.ValidationErrors
	seen := make(map[string]bool, len(keys))
	out := make([]Field[R], 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		i, ok := fs.index[k]
		switch {
		case !ok:
			errs.Add("fields", "unknown field; expected one of: "+strings.Join(fs.Keys(), ", "), k)
		case seen[k]:
			errs.Add("fields", "field selected more than once", k)
		default:
			seen[k] = true
			out = append(out, fs.fields[i])
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Keys of a selection.
func Keys[R any](fields []Field[R]) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// Labels of a selection.
func Labels[R any](fields []Field[R]) []string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f.Label
	}
	return labels
}

// Project renders row as text cells in field order.
func Project[R any](fields []Field[R], row R) []string {
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = Text(f.Value(row))
	}
	return cells
}

// Text renders a field value as a cell.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case decimal.NullDecimal:
		if !x.Valid {
			return ""
		}
		return x.Decimal.String()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.DateTime)
	case uuid.UUID:
		return x.String()
	case *uuid.UUID:
		if x == nil {
			return ""
		}
		return x.String()
	case shared.TransactionType:
		return string(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case interface{ String() string }:
		return x.String()
	}
	return ""
}
