package entity

import "github.com/shopspring/decimal"

// Sweet is an inventory item as served by the backend. The backend owns every
// field; the client only holds read-mostly copies that are replaced wholesale
// after each mutation.
type Sweet struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// InStock reports whether the cached quantity allows a purchase. Advisory
// only: the backend remains authoritative on insufficient stock.
func (s Sweet) InStock() bool {
	return s.Quantity > 0
}
