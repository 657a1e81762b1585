package domain

import "encoding/json"

// Aggregation is a filter facet returned by the search API. Its shape is
// passed through untouched.
type Aggregation = json.RawMessage

// SearchResult is one page of the filter endpoint.
type SearchResult struct {
	Products   []json.RawMessage `json:"products"`
	TotalCount int               `json:"total_count"`
}

// EmptySearchResult is what a failed or empty search returns.
func EmptySearchResult() SearchResult {
	return SearchResult{
		Products:   make([]json.RawMessage, 0),
		TotalCount: 0,
	}
}

type AggregationsResponse struct {
	Result *struct {
		Aggregations []json.RawMessage `json:"aggregations"`
	} `json:"result"`
}

type FilterResponse struct {
	Result *struct {
		Products   []json.RawMessage `json:"products"`
		TotalCount int               `json:"totalCount"`
	} `json:"result"`
}
