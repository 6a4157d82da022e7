package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPlaced = "placed"

// ShippingDetails is what a shopper submits at checkout.
type ShippingDetails struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type Order struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"-"`
	Status       string          `json:"status"`
	Lines        []OrderLine     `json:"lines"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shipping"`
	GrandTotal   decimal.Decimal `json:"grandTotal"`
	ShipTo       ShippingDetails `json:"shipTo"`
	CreatedAt    time.Time       `json:"createdAt"`
}
