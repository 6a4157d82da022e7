package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	snap, err := h.deps.Carts.Snapshot(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(snap))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.deps.Carts.AddProduct(c.Request.Context(), sessionFrom(c), req.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOutcomeResponse(out))
}

// setCartItemQuantity never rejects a quantity: out-of-range values are clamped
// or remove the line, and the outcome says which.
func (h *handlers) setCartItemQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.deps.Carts.SetQuantity(c.Request.Context(), sessionFrom(c), c.Param("productId"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOutcomeResponse(out))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	out, err := h.deps.Carts.Remove(c.Request.Context(), sessionFrom(c), c.Param("productId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOutcomeResponse(out))
}

func (h *handlers) clearCart(c *gin.Context) {
	out, err := h.deps.Carts.Clear(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOutcomeResponse(out))
}

func (h *handlers) cartNotifications(c *gin.Context) {
	items, err := h.deps.Carts.Notifications(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": toNotificationResponses(items)})
}

func (h *handlers) checkout(c *gin.Context) {
	var req domain.ShippingDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessionID := sessionFrom(c)
	order, out, err := h.deps.Carts.Checkout(c.Request.Context(), sessionID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("checkout completed", zap.String("session_id", sessionID), zap.String("order_id", order.ID))
	c.JSON(http.StatusCreated, checkoutResponse{
		Order: toOrderResponse(*order),
		Cart:  toCartResponse(out.Cart),
	})
}
