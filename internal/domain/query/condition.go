// Package query models list queries as data: typed conditions, ranked search,
// whitelisted ordering and page windows. Rendering to SQL happens in the
// persistence layer; nothing here touches a store.
package query

import (
	"time"
)

// Condition is one AND-ed predicate. The concrete types below are the only
// implementations.
type Condition interface {
	condition()
}

// Equal matches Column = Value.
type Equal struct {
	Column string
	Value  any
}

// Range bounds Column inclusively. A nil bound is not applied.
type Range struct {
	Column string
	Min    any
	Max    any
}

// In matches Column against a set, bound as a single array parameter.
type In struct {
	Column string
	Values []string
}

// DateRange compares the date part of a timestamp column. A nil bound is not applied.
type DateRange struct {
	Column string
	From   *time.Time
	To     *time.Time
}

func (Equal) condition()     {}
func (Range) condition()     {}
func (In) condition()        {}
func (DateRange) condition() {}
func (*Search) condition()   {}

// DateLayout is the wire and parameter format of date-only values.
const DateLayout = "2006-01-02"
