package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamup-app/teamup-backend/internal/api/http/response"
	"github.com/teamup-app/teamup-backend/internal/auth"
)

// SetToken registers the caller's push token
func (h *Handler) SetToken(c *gin.Context) {
	callerID := auth.UserFirebaseUID(c)
	if callerID == "" {
		response.Unauthenticated(c)
		return
	}

	var req setTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.tokens.SetToken(c.Request.Context(), callerID, req.UserID, req.Token); err != nil {
		response.RenderErr(c, "notifications.set_token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "notification token saved",
	})
}

// GetWebConfig returns the configuration handed to the push worker
func (h *Handler) GetWebConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"type":     "FIREBASE_CONFIG",
		"config":   h.webConfig,
		"vapidKey": h.vapidKey,
	})
}
