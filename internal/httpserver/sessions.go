package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	SessionID   string `json:"session_id"`
}

func (h *handlers) createSession(c *gin.Context) {
	token, sessionID, err := h.deps.Sessions.Issue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.Debug("session issued", zap.String("session_id", sessionID))
	c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.deps.Sessions.TTLSeconds(),
		SessionID:   sessionID,
	})
}
