package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Values parses a string parameter bag into typed values. Parse failures are
// collected per field and reported by Err; accepted values are recorded for
// the filters_applied echo.
type Values struct {
	raw     url.Values
	errs    shared.ValidationErrors
	applied map[string]string
}

// NewValues wraps a raw parameter bag.
func NewValues(raw url.Values) *Values {
	if raw == nil {
		raw = url.Values{}
	}
	return &Values{raw: raw, applied: make(map[string]string)}
}

func (v *Values) get(key string) (string, bool) {
	s := strings.TrimSpace(v.raw.Get(key))
	return s, s != ""
}

func (v *Values) accept(key, raw string) {
	v.applied[key] = raw
}

// String returns a trimmed non-empty value.
func (v *Values) String(key string) *string {
	s, ok := v.get(key)
	if !ok {
		return nil
	}
	v.accept(key, s)
	return &s
}

// UUID parses a single id.
func (v *Values) UUID(key string) *uuid.UUID {
	s, ok := v.get(key)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		v.errs.Add(key, "must be a valid UUID", s)
		return nil
	}
	v.accept(key, s)
	return &id
}

// UUIDs parses a comma-separated and/or repeated id list.
func (v *Values) UUIDs(key string) []string {
	var out []string
	for _, item := range v.raw[key] {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				v.errs.Add(key, "must be a list of valid UUIDs", part)
				return nil
			}
			out = append(out, id.String())
		}
	}
	if len(out) > 0 {
		v.accept(key, strings.Join(out, ","))
	}
	return out
}

// Decimal parses a non-negative decimal.
func (v *Values) Decimal(key string) *decimal.Decimal {
	s, ok := v.get(key)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		v.errs.Add(key, "must be a number", s)
		return nil
	}
	if d.IsNegative() {
		v.errs.Add(key, "must not be negative", s)
		return nil
	}
	v.accept(key, s)
	return &d
}

// Int parses a non-negative integer.
func (v *Values) Int(key string) *int64 {
	s, ok := v.get(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		v.errs.Add(key, "must be an integer", s)
		return nil
	}
	if n < 0 {
		v.errs.Add(key, "must not be negative", s)
		return nil
	}
	v.accept(key, s)
	return &n
}

// Bool parses true/false/1/0.
func (v *Values) Bool(key string) *bool {
	s, ok := v.get(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		v.errs.Add(key, "must be true or false", s)
		return nil
	}
	v.accept(key, s)
	return &b
}

// Date parses a YYYY-MM-DD date.
func (v *Values) Date(key string) *time.Time {
	s, ok := v.get(key)
	if !ok {
		return nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		v.errs.Add(key, "must be a date in YYYY-MM-DD format", s)
		return nil
	}
	v.accept(key, s)
	return &d
}

// Enum accepts one of allowed, case-insensitively.
func (v *Values) Enum(key string, allowed ...string) *string {
	s, ok := v.get(key)
	if !ok {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(a, s) {
			v.accept(key, a)
			return &a
		}
	}
	v.errs.Add(key, "must be one of: "+strings.Join(allowed, ", "), s)
	return nil
}

// Page parses page and limit. Absent values take defaults and numeric values
// are clamped by NewPageRequest. Non-numeric values and pages past MaxPage
// are rejected.
func (v *Values) Page() PageRequest {
	page, limit := 1, DefaultLimit
	if s, ok := v.get("page"); ok {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			v.errs.Add("page", "must be an integer", s)
		case n > MaxPage:
			v.errs.Add("page", fmt.Sprintf("must not exceed %d", MaxPage), s)
		default:
			page = n
		}
	}
	if s, ok := v.get("limit"); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			v.errs.Add("limit", "must be an integer", s)
		} else {
			limit = n
		}
	}
	return NewPageRequest(page, limit)
}

// Search returns the raw search term.
func (v *Values) Search() string {
	s, _ := v.get("search")
	return s
}

// Sort resolves sort_by and sort_order against table.
func (v *Values) Sort(table *SortTable) Sort {
	by, _ := v.get("sort_by")
	order, _ := v.get("sort_order")
	s, err := table.Resolve(by, order)
	if err != nil {
		v.errs.Merge("sort_by", err)
	}
	return s
}

// Merge records a validation error raised outside the parser.
func (v *Values) Merge(field string, err error) {
	v.errs.Merge(field, err)
}

// Applied returns the accepted filter values keyed by parameter name.
func (v *Values) Applied() map[string]string {
	return v.applied
}

// Err reports every parse failure, or nil.
func (v *Values) Err() error {
	return v.errs.Err()
}

// ListRequest is the entity-independent part of a list request.
type ListRequest struct {
	Page   PageRequest
	Search string
	Sort   Sort
}

// List parses page, search and sort in one go.
func (v *Values) List(table *SortTable) ListRequest {
	return ListRequest{
		Page:   v.Page(),
		Search: v.Search(),
		Sort:   v.Sort(table),
	}
}
