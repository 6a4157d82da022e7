package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// ErrCorruptSnapshot wraps every reason a stored cart could not be decoded.
var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

var validate = newValidator()

type storedProduct struct {
	ID          string      `json:"id" validate:"required"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price" validate:"required"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Category    string      `json:"category"`
	InStock     *bool       `json:"inStock,omitempty"`
}

type storedLine struct {
	Product  *storedProduct `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"cartqty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cartqty", func(fl validator.FieldLevel) bool {
		q := fl.Field().Int()
		return q >= 1 && q <= domain.MaxQuantity
	})
	return v
}

// Encode serializes items as a JSON list with numeric prices.
func Encode(items []domain.LineItem) ([]byte, error) {
	lines := make([]storedLine, 0, len(items))
	for _, item := range items {
		p := item.Product
		lines = append(lines, storedLine{
			Product: &storedProduct{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Price:       json.Number(p.Price.String()),
				ImageURL:    p.ImageURL,
				Category:    p.Category,
				InStock:     p.InStock,
			},
			Quantity: item.Quantity,
		})
	}
	return json.Marshal(lines)
}

// Decode parses and validates a stored snapshot. Unknown fields are ignored;
// any shape violation rejects the whole snapshot.
func Decode(raw []byte) ([]domain.LineItem, error) {
	var lines []storedLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	items := make([]domain.LineItem, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for i, line := range lines {
		if err := validate.Struct(line); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptSnapshot, i, err)
		}
		price, err := decimal.NewFromString(line.Product.Price.String())
		if err != nil {
			return nil, fmt.Errorf("%w: line %d price: %v", ErrCorruptSnapshot, i, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("%w: line %d has negative price", ErrCorruptSnapshot, i)
		}
		if _, dup := seen[line.Product.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product %q", ErrCorruptSnapshot, line.Product.ID)
		}
		seen[line.Product.ID] = struct{}{}

		items = append(items, domain.LineItem{
			Product: domain.ProductSnapshot{
				ID:          line.Product.ID,
				Name:        line.Product.Name,
				Description: line.Product.Description,
				Price:       price,
				ImageURL:    line.Product.ImageURL,
				Category:    line.Product.Category,
				InStock:     line.Product.InStock,
			},
			Quantity: line.Quantity,
		})
	}
	return items, nil
}
