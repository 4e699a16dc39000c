package export

import (
	"net/url"
	"strings"
)

// Request is the body of an export or preview call. Filters take the same
// keys as the matching list endpoint; multi-valued filters are comma-separated.
type Request struct {
	Format    string            `json:"format" binding:"required"`
	Fields    []string          `json:"fields"`
	Filters   map[string]string `json:"filters"`
	Search    string            `json:"search"`
	SortBy    string            `json:"sort_by"`
	SortOrder string            `json:"sort_order"`
	// Archive uploads the file to object storage and returns a download link.
	Archive bool `json:"archive"`
}

// Params flattens the request into a list parameter bag.
func (r Request) Params() url.Values {
	params := url.Values{}
	for k, v := range r.Filters {
		if strings.TrimSpace(v) != "" {
			params.Set(k, v)
		}
	}
	if r.Search != "" {
		params.Set("search", r.Search)
	}
	if r.SortBy != "" {
		params.Set("sort_by", r.SortBy)
	}
	if r.SortOrder != "" {
		params.Set("sort_order", r.SortOrder)
	}
	return params
}
