package dto

import "github.com/shopspring/decimal"

// FilterCriteria narrows a catalog listing. Absent fields are omitted from the
// outgoing query entirely; an empty string is never sent as a constraint.
type FilterCriteria struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// IsEmpty reports whether no criterion is set, in which case the unfiltered
// listing endpoint is used instead of search.
func (f FilterCriteria) IsEmpty() bool {
	return f.Query == "" && f.Category == "" && f.MinPrice == nil && f.MaxPrice == nil
}

// CreateSweetRequest input for creating a sweet. Price and Quantity are already
// numeric here: parsing user input happens at the caller boundary, and
// non-numeric input never reaches the wire.
type CreateSweetRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}
