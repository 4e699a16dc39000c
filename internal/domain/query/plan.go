package query

// Plan is everything needed to run a list query against one source.
type Plan struct {
	Conditions []Condition
	Search     *Search
	Sort       Sort
	Order      Order
	Page       PageRequest
}

// NewPlan combines filter conditions with a parsed list request. Search is
// enabled over searchColumns only when the request carries a non-blank term.
func NewPlan(conditions []Condition, req ListRequest, searchColumns ...string) Plan {
	search := NewSearch(req.Search, searchColumns...)
	return Plan{
		Conditions: conditions,
		Search:     search,
		Sort:       req.Sort,
		Order:      req.Sort.Order(search),
		Page:       req.Page,
	}
}

// Where returns the filter conditions followed by the search condition, if any.
func (p Plan) Where() []Condition {
	if p.Search == nil {
		return p.Conditions
	}
	out := make([]Condition, 0, len(p.Conditions)+1)
	out = append(out, p.Conditions...)
	return append(out, p.Search)
}

// Applied echoes the effective filter, search and sort of a list request.
type Applied struct {
	Filters map[string]string `json:"filters_applied"`
	Search  string            `json:"search_applied,omitempty"`
	Sort    Sort              `json:"sort_applied"`
}

// Applied builds the echo for this plan.
func (p Plan) Applied(filters map[string]string) Applied {
	a := Applied{Filters: filters, Sort: p.Sort}
	if a.Filters == nil {
		a.Filters = map[string]string{}
	}
	if p.Search != nil {
		a.Search = p.Search.Term
	}
	return a
}
