package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/notify"
	cartsvc "storefront/internal/service/cart"
)

type sessionService interface {
	Issue(ctx context.Context) (token, sessionID string, err error)
	Lookup(ctx context.Context, token string) (string, error)
	TTLSeconds() int
}

type catalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type cartService interface {
	Snapshot(ctx context.Context, sessionID string) (cartsvc.Snapshot, error)
	AddProduct(ctx context.Context, sessionID, productID string) (cartsvc.Outcome, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (cartsvc.Outcome, error)
	Remove(ctx context.Context, sessionID, productID string) (cartsvc.Outcome, error)
	Clear(ctx context.Context, sessionID string) (cartsvc.Outcome, error)
	Notifications(ctx context.Context, sessionID string) ([]notify.Notification, error)
	Checkout(ctx context.Context, sessionID string, shipping domain.ShippingDetails) (*domain.Order, cartsvc.Outcome, error)
}

type orderService interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
}

// Deps are the services the routes delegate to.
type Deps struct {
	Sessions sessionService
	Catalog  catalogService
	Carts    cartService
	Orders   orderService

	// Ready maps a backend name to its reachability check for /readyz.
	Ready       map[string]ReadinessCheck
	CORSOrigins []string
	// AdminToken enables PUT /products/:id when set.
	AdminToken string
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Catalog == nil || deps.Carts == nil || deps.Orders == nil {
		return nil, errors.New("httpserver: sessions, catalog, carts and orders services are required")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logger.GinMiddleware(log.Named("http")), logger.Recovery(log))
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	h := &handlers{deps: deps, logger: log.Named("http")}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready, log))

	router.POST("/sessions", h.createSession)

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	if deps.AdminToken != "" {
		router.PUT("/products/:id", adminMiddleware(deps.AdminToken), h.upsertProduct)
	}

	authed := router.Group("/", sessionMiddleware(deps.Sessions))
	authed.GET("/cart", h.getCart)
	authed.DELETE("/cart", h.clearCart)
	authed.POST("/cart/items", h.addCartItem)
	authed.PUT("/cart/items/:productId", h.setCartItemQuantity)
	authed.DELETE("/cart/items/:productId", h.removeCartItem)
	authed.POST("/cart/checkout", h.checkout)
	authed.GET("/cart/notifications", h.cartNotifications)
	authed.GET("/orders/:id", h.getOrder)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
