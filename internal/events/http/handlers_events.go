package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamup-app/teamup-backend/internal/api/http/response"
	"github.com/teamup-app/teamup-backend/internal/auth"
	"github.com/teamup-app/teamup-backend/internal/events/service"
)

// CreateEvent creates an event organized by the caller
func (h *Handler) CreateEvent(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	if userID == "" {
		response.Unauthenticated(c)
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.events.CreateEvent(c.Request.Context(), &service.CreateEventRequest{
		OrganizerID:     userID,
		Name:            req.Name,
		Type:            req.Type,
		Description:     req.Description,
		Date:            req.Date,
		Time:            req.Time,
		Location:        req.location(),
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		response.RenderErr(c, "events.create", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "event": event})
}

// GetEvent retrieves an event by id
func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.events.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RenderErr(c, "events.get", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// ListEvents lists upcoming events
func (h *Handler) ListEvents(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	events, err := h.events.ListUpcoming(c.Request.Context(), limit)
	if err != nil {
		response.RenderErr(c, "events.list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
