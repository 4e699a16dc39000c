package query

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Builder assembles an ordered condition list. Range bounds are checked as they
// are added; Build reports every violation at once.
type Builder struct {
	conditions []Condition
	errs       shared.ValidationErrors
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Eq adds column = value.
func (b *Builder) Eq(column string, value any) *Builder {
	b.conditions = append(b.conditions, Equal{Column: column, Value: value})
	return b
}

// In adds a set membership test. An empty set adds nothing.
func (b *Builder) In(column string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	b.conditions = append(b.conditions, In{Column: column, Values: values})
	return b
}

// DecimalRange adds min_<field> <= column <= max_<field>.
func (b *Builder) DecimalRange(column, field string, min, max *decimal.Decimal) *Builder {
	if min == nil && max == nil {
		return b
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		b.errs.Add("min_"+field, "must not be greater than max_"+field, min.String())
		return b
	}
	r := Range{Column: column}
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	b.conditions = append(b.conditions, r)
	return b
}

// IntRange adds an integer range on column.
func (b *Builder) IntRange(column, field string, min, max *int64) *Builder {
	if min == nil && max == nil {
		return b
	}
	if min != nil && max != nil && *min > *max {
		b.errs.Add("min_"+field, "must not be greater than max_"+field)
		return b
	}
	r := Range{Column: column}
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	b.conditions = append(b.conditions, r)
	return b
}

// Dates adds a date-only range on a timestamp column.
func (b *Builder) Dates(column string, from, to *time.Time) *Builder {
	if from == nil && to == nil {
		return b
	}
	if from != nil && to != nil && from.After(*to) {
		b.errs.Add("start_date", "must not be after end_date", from.Format(DateLayout))
		return b
	}
	b.conditions = append(b.conditions, DateRange{Column: column, From: from, To: to})
	return b
}

// Build returns the conditions, or a validation error when any bound was inverted.
func (b *Builder) Build() ([]Condition, error) {
	if err := b.errs.Err(); err != nil {
		return nil, err
	}
	return b.conditions, nil
}
