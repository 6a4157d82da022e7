// Package pricing derives cart totals from line items. Amounts accumulate at full
// precision; rounding to cents happens only in Display.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Calculator holds the fixed-rate rules. The zero value charges nothing.
type Calculator struct {
	TaxRate          decimal.Decimal
	ShippingFee      decimal.Decimal
	FreeShippingOver decimal.Decimal
}

// Totals is a pure function of the line items it was computed from.
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
}

// DisplayTotals are Totals rounded to two fraction digits.
type DisplayTotals struct {
	Subtotal   string `json:"subtotal"`
	Tax        string `json:"tax"`
	Shipping   string `json:"shipping"`
	GrandTotal string `json:"grandTotal"`
}

// Default returns the storefront rules: 10% tax, 5.99 shipping waived above 50.00.
func Default() Calculator {
	return Calculator{
		TaxRate:          decimal.RequireFromString("0.10"),
		ShippingFee:      decimal.RequireFromString("5.99"),
		FreeShippingOver: decimal.RequireFromString("50.00"),
	}
}

func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total())
	}
	return sum
}

func (c Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.TaxRate)
}

// Shipping is waived only strictly above the threshold, so an empty cart pays the fee.
func (c Calculator) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(c.FreeShippingOver) {
		return decimal.Zero
	}
	return c.ShippingFee
}

func (c Calculator) Totals(items []domain.LineItem) Totals {
	subtotal := Subtotal(items)
	tax := c.Tax(subtotal)
	shipping := c.Shipping(subtotal)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		GrandTotal: subtotal.Add(tax).Add(shipping),
	}
}

func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal:   t.Subtotal.StringFixed(2),
		Tax:        t.Tax.StringFixed(2),
		Shipping:   t.Shipping.StringFixed(2),
		GrandTotal: t.GrandTotal.StringFixed(2),
	}
}
