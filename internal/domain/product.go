package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	InStock     *bool           `json:"inStock,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Available treats an unset stock flag as in stock.
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}
