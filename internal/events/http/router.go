package http

import "github.com/gin-gonic/gin"

// RegisterPublic registers read-only routes
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("", h.ListEvents)
	rg.GET("/:id", h.GetEvent)
}

// Register registers routes that require a verified caller
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.CreateEvent)
	rg.POST("/:id/join", h.JoinEvent)
	rg.POST("/:id/leave", h.LeaveEvent)
}
