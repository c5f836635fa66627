package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teamup-app/teamup-backend/internal/api/http/response"
	"github.com/teamup-app/teamup-backend/internal/places"
)

const maxQueryLength = 200

type Geocoder interface {
	Search(ctx context.Context, query string) ([]places.Place, error)
}

type Handler struct {
	geocoder Geocoder
}

func New(geocoder Geocoder) *Handler {
	return &Handler{geocoder: geocoder}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
}

// Search looks up places matching ?q=
func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" || len(q) > maxQueryLength {
		response.BadRequest(c, "q is required and must be at most 200 characters")
		return
	}

	results, err := h.geocoder.Search(c.Request.Context(), q)
	if err != nil {
		response.RenderErr(c, "places.search", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": results})
}
