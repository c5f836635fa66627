package http

import "github.com/gin-gonic/gin"

// RegisterPublic registers routes that need no credential
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/config", h.GetWebConfig)
}

// Register registers authenticated routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/token", h.SetToken)
}
