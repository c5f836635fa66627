package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamup-app/teamup-backend/internal/api/http/response"
	"github.com/teamup-app/teamup-backend/internal/auth"
)

// JoinEvent adds the caller to an event as a participant
func (h *Handler) JoinEvent(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	if userID == "" {
		response.Unauthenticated(c)
		return
	}

	eventID := c.Param("id")
	if _, err := h.memberships.Join(c.Request.Context(), userID, eventID); err != nil {
		response.RenderErr(c, "events.join", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "successfully joined the event",
	})
}

// LeaveEvent removes the caller's participant membership
func (h *Handler) LeaveEvent(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	if userID == "" {
		response.Unauthenticated(c)
		return
	}

	eventID := c.Param("id")
	if err := h.memberships.Leave(c.Request.Context(), userID, eventID); err != nil {
		response.RenderErr(c, "events.leave", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "successfully left the event",
	})
}
