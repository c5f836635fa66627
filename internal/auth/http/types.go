package http

import (
	"context"

	"github.com/teamup-app/teamup-backend/internal/domain"
)

type ProfileReader interface {
	GetUser(ctx context.Context, uid string) (*domain.UserProfile, error)
}

type Handler struct {
	profiles ProfileReader
}

func New(profiles ProfileReader) *Handler {
	return &Handler{
		profiles: profiles,
	}
}
