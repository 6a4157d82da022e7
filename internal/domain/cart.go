package domain

import "github.com/shopspring/decimal"

// MaxQuantity is the per-product ceiling of a cart line.
const MaxQuantity = 5

// ProductSnapshot is the denormalized copy of a product taken when it is added to a cart.
// Later catalog edits do not reach it.
type ProductSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Category    string          `json:"category"`
	InStock     *bool           `json:"inStock,omitempty"`
}

type LineItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// SnapshotOf copies the fields of p a cart line needs.
func SnapshotOf(p Product) ProductSnapshot {
	snap := ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
	}
	if p.InStock != nil {
		v := *p.InStock
		snap.InStock = &v
	}
	return snap
}

// Total is unit price times quantity at full precision.
func (l LineItem) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Clone returns a copy that shares no pointers with l.
func (l LineItem) Clone() LineItem {
	out := l
	if l.Product.InStock != nil {
		v := *l.Product.InStock
		out.Product.InStock = &v
	}
	return out
}

// CloneItems deep-copies a line item list, keeping order.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
