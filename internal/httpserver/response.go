package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
	sessionsvc "storefront/internal/service/session"
)

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
}

type lineItemResponse struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	InStock     *bool  `json:"inStock,omitempty"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"totalPrice"`
}

type cartResponse struct {
	LineItems             []lineItemResponse    `json:"lineItems"`
	TotalLineItemQuantity int                   `json:"totalLineItemQuantity"`
	Totals                pricing.DisplayTotals `json:"totals"`
	MaxQuantity           int                   `json:"maxQuantity"`
	Unsaved               bool                  `json:"unsaved,omitempty"`
}

type notificationResponse struct {
	Kind    notify.Kind `json:"kind"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	At      *time.Time  `json:"at,omitempty"`
}

type outcomeResponse struct {
	Notification *notificationResponse `json:"notification,omitempty"`
	Cart         cartResponse          `json:"cart"`
}

type orderLineResponse struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	UnitPrice  string `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"totalPrice"`
}

type orderResponse struct {
	ID        string                 `json:"id"`
	Status    string                 `json:"status"`
	LineItems []orderLineResponse    `json:"lineItems"`
	Totals    pricing.DisplayTotals  `json:"totals"`
	ShipTo    domain.ShippingDetails `json:"shipTo"`
	CreatedAt time.Time              `json:"createdAt"`
}

type checkoutResponse struct {
	Order orderResponse `json:"order"`
	Cart  cartResponse  `json:"cart"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		InStock:     p.Available(),
		CreatedAt:   p.CreatedAt,
	}
}

func toCartResponse(snap cartsvc.Snapshot) cartResponse {
	lines := make([]lineItemResponse, 0, len(snap.Items))
	for _, item := range snap.Items {
		lines = append(lines, lineItemResponse{
			ProductID:   item.Product.ID,
			Name:        item.Product.Name,
			Description: item.Product.Description,
			Category:    item.Product.Category,
			ImageURL:    item.Product.ImageURL,
			InStock:     item.Product.InStock,
			UnitPrice:   item.Product.Price.StringFixed(2),
			Quantity:    item.Quantity,
			TotalPrice:  item.Total().StringFixed(2),
		})
	}
	return cartResponse{
		LineItems:             lines,
		TotalLineItemQuantity: snap.TotalItems,
		Totals:                snap.Totals.Display(),
		MaxQuantity:           domain.MaxQuantity,
		Unsaved:               snap.Unsaved,
	}
}

func toOutcomeResponse(out cartsvc.Outcome) outcomeResponse {
	resp := outcomeResponse{Cart: toCartResponse(out.Cart)}
	if out.Kind != cartsvc.KindNoop {
		resp.Notification = &notificationResponse{Kind: out.Kind, Message: out.Message, Detail: out.Detail}
	}
	return resp
}

func toNotificationResponses(items []notify.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		at := n.At
		out = append(out, notificationResponse{Kind: n.Kind, Message: n.Message, Detail: n.Detail, At: &at})
	}
	return out
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineResponse{
			ProductID:  l.ProductID,
			Name:       l.Name,
			UnitPrice:  l.UnitPrice.StringFixed(2),
			Quantity:   l.Quantity,
			TotalPrice: l.Total.StringFixed(2),
		})
	}
	totals := pricing.Totals{
		Subtotal:   o.Subtotal,
		Tax:        o.Tax,
		Shipping:   o.ShippingCost,
		GrandTotal: o.GrandTotal,
	}
	return orderResponse{
		ID:        o.ID,
		Status:    o.Status,
		LineItems: lines,
		Totals:    totals.Display(),
		ShipTo:    o.ShipTo,
		CreatedAt: o.CreatedAt,
	}
}

// writeError maps service errors to status codes. Unknown errors are recorded on
// the context for the request logger and answered with a generic 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrEmptyCart):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrProductUnavailable):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, ordersvc.ErrInvalidShipping), errors.Is(err, catalogsvc.ErrInvalidProduct):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		status, msg = http.StatusServiceUnavailable, "storage unavailable, retry later"
		_ = c.Error(err)
	case errors.Is(err, sessionsvc.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid session"
	default:
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
