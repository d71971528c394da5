package model

// Property categories select which partition of the snapshot a query
// targets. The set is closed; anything else fails validation.
const (
	CategoryForSale = "forsale"
	CategoryRental  = "rental"
)

// SearchFilters is the sparse set of optional predicates for one query.
// Every bound is inclusive; a present min above a present max is a
// legitimate empty result, not an error.
type SearchFilters struct {
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	MinBeds  *int     `json:"minBeds,omitempty"`
	MaxBeds  *int     `json:"maxBeds,omitempty"`
	MinBaths *float64 `json:"minBaths,omitempty"`
	MaxBaths *float64 `json:"maxBaths,omitempty"`
	MinSqft  *int     `json:"minSqft,omitempty"`
	MaxSqft  *int     `json:"maxSqft,omitempty"`
	City     *string  `json:"city,omitempty"`
	ZipCode  *string  `json:"zipCode,omitempty"`
}

// SearchRequest is one validated search invocation.
type SearchRequest struct {
	Category string
	Filters  SearchFilters
	Page     int
	PerPage  int
}

// Pagination is the page metadata returned alongside every result page.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	TotalCount int  `json:"totalCount"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// SearchResponse is the wire envelope for the search endpoint.
type SearchResponse struct {
	Properties []Listing  `json:"properties"`
	Pagination Pagination `json:"pagination"`
}
