package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	ID          string
	Name        string
	Description string
	Price       string
	Category    string
	ImageURL    string
}

var demoProducts = []productSeed{
	{ID: "demo-shirt", Name: "Demo T-Shirt", Description: "Soft cotton tee for demo purposes", Price: "19.99", Category: "apparel"},
	{ID: "demo-mug", Name: "Demo Mug", Description: "Ceramic mug with demo logo", Price: "12.99", Category: "kitchen"},
	{ID: "demo-bar", Name: "Chocolate Bar", Description: "70% dark chocolate", Price: "3.99", Category: "snacks"},
	{ID: "demo-gum", Name: "Mint Gum", Description: "Pack of 10", Price: "4.99", Category: "snacks"},
	{ID: "demo-kettle", Name: "Electric Kettle", Description: "1.7 litre, steel", Price: "49.99", Category: "kitchen"},
}

// Products returns the demo catalog. Each call returns fresh values.
func Products() []domain.Product {
	out := make([]domain.Product, 0, len(demoProducts))
	for _, p := range demoProducts {
		out = append(out, domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       decimal.RequireFromString(p.Price),
			Category:    p.Category,
			ImageURL:    p.ImageURL,
		})
	}
	return out
}

// Apply upserts the demo catalog. Running it twice leaves the same products.
func Apply(ctx context.Context, w ProductWriter) error {
	for _, p := range Products() {
		if _, err := w.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
