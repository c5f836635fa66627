package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamup-app/teamup-backend/internal/api/http/response"
	"github.com/teamup-app/teamup-backend/internal/auth"
	"github.com/teamup-app/teamup-backend/internal/domain"
)

type profileResponse struct {
	UID                  string `json:"uid"`
	Email                string `json:"email,omitempty"`
	DisplayName          string `json:"displayName,omitempty"`
	NumberEventJoined    int    `json:"number_event_joined"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		response.Unauthenticated(c)
		return
	}

	// users without a record yet have joined nothing and registered no token
	user, err := h.profiles.GetUser(c.Request.Context(), uid)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = &domain.UserProfile{UID: uid}, nil
	}
	if err != nil {
		response.RenderErr(c, "users.profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profileResponse{
		UID:                  uid,
		Email:                c.GetString(auth.CtxEmail),
		DisplayName:          user.DisplayName,
		NumberEventJoined:    user.NumberEventJoined,
		NotificationsEnabled: user.NotificationToken != "",
	}})
}
