package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	orderrepo "storefront/internal/repository/order"
)

var ErrInvalidShipping = errors.New("invalid shipping details")

type productLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type PlaceInput struct {
	SessionID string
	Items     []domain.LineItem
	Shipping  domain.ShippingDetails
}

// Service places orders. Totals shown in a cart are an estimate; Place re-prices
// every line from the catalog at submission time and those prices are the ones charged.
type Service struct {
	repo     orderrepo.Repository
	catalog  productLookup
	calc     pricing.Calculator
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func New(repo orderrepo.Repository, catalog productLookup, calc pricing.Calculator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		catalog:  catalog,
		calc:     calc,
		validate: validator.New(),
		logger:   logger.Named("orders"),
		now:      time.Now,
	}
}

func (s *Service) Place(ctx context.Context, in PlaceInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	ship := normalizeShipping(in.Shipping)
	if err := s.validate.Struct(ship); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShipping, err)
	}

	repriced := make([]domain.LineItem, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 || item.Quantity > domain.MaxQuantity {
			return nil, fmt.Errorf("line %s: quantity %d out of range", item.Product.ID, item.Quantity)
		}
		product, err := s.catalog.Get(ctx, item.Product.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, item.Product.ID)
			}
			return nil, err
		}
		if !product.Available() {
			return nil, fmt.Errorf("%w: %s is out of stock", domain.ErrProductUnavailable, product.ID)
		}
		repriced = append(repriced, domain.LineItem{Product: domain.SnapshotOf(*product), Quantity: item.Quantity})
	}

	estimate := pricing.Subtotal(in.Items)
	totals := s.calc.Totals(repriced)
	if !estimate.Equal(totals.Subtotal) {
		s.logger.Info("cart estimate differs from catalog prices",
			zap.String("session_id", in.SessionID),
			zap.String("estimate", estimate.String()),
			zap.String("charged", totals.Subtotal.String()),
		)
	}

	lines := make([]domain.OrderLine, 0, len(repriced))
	for _, item := range repriced {
		lines = append(lines, domain.OrderLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			Total:     item.Total(),
		})
	}

	order := domain.Order{
		ID:           uuid.NewString(),
		SessionID:    in.SessionID,
		Status:       domain.OrderStatusPlaced,
		Lines:        lines,
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		ShippingCost: totals.Shipping,
		GrandTotal:   totals.GrandTotal,
		ShipTo:       ship,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}
	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("session_id", order.SessionID),
		zap.Int("lines", len(order.Lines)),
		zap.String("grand_total", order.GrandTotal.StringFixed(2)),
	)
	return &order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func normalizeShipping(d domain.ShippingDetails) domain.ShippingDetails {
	return domain.ShippingDetails{
		Name:       strings.TrimSpace(d.Name),
		Email:      strings.TrimSpace(d.Email),
		Address:    strings.TrimSpace(d.Address),
		City:       strings.TrimSpace(d.City),
		PostalCode: strings.TrimSpace(d.PostalCode),
		Country:    strings.TrimSpace(d.Country),
	}
}
