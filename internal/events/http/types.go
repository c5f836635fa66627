package http

import (
	"context"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/events/service"
)

type MembershipService interface {
	Join(ctx context.Context, userID, eventID string) (*domain.Membership, error)
	Leave(ctx context.Context, userID, eventID string) error
}

type EventService interface {
	CreateEvent(ctx context.Context, req *service.CreateEventRequest) (*domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	ListUpcoming(ctx context.Context, limit int) ([]domain.Event, error)
}

// Handler handles HTTP requests for events and memberships
type Handler struct {
	events      EventService
	memberships MembershipService
}

func New(events EventService, memberships MembershipService) *Handler {
	return &Handler{
		events:      events,
		memberships: memberships,
	}
}
