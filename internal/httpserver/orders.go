package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

// getOrder only reveals orders placed by the calling session.
func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if order.SessionID != sessionFrom(c) {
		writeError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}
