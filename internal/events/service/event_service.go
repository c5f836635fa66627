package service

import (
	"context"
	"time"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/store"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// CreateEventRequest carries the organizer-supplied fields of a new event
type CreateEventRequest struct {
	OrganizerID     string
	Name            string
	Type            string
	Description     string
	Date            string
	Time            string
	Location        domain.Location
	MaxParticipants int
}

// EventService handles event creation and lookup
type EventService struct {
	store store.Gateway
	now   func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(gw store.Gateway) *EventService {
	return &EventService{store: gw, now: time.Now}
}

// CreateEvent stores a new event with its organizer as the first member.
func (s *EventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*domain.Event, error) {
	now := s.now().UTC()
	event := &domain.Event{
		OrganizerID:     req.OrganizerID,
		Name:            req.Name,
		Type:            req.Type,
		Description:     req.Description,
		Date:            req.Date,
		Time:            req.Time,
		Location:        req.Location,
		Participants:    1,
		MaxParticipants: req.MaxParticipants,
		CreatedAt:       now,
	}
	organizer := &domain.Membership{
		UserID:   req.OrganizerID,
		Role:     domain.RoleOrganizer,
		JoinedAt: now,
	}

	if err := s.store.CreateEvent(ctx, event, organizer); err != nil {
		return nil, err
	}
	return event, nil
}

// GetEvent retrieves an event by id
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	if eventID == "" {
		return nil, domain.ErrEventNotFound
	}
	return s.store.GetEvent(ctx, eventID)
}

// ListUpcoming lists events from today onwards. limit is clamped to
// [1, MaxListLimit] with DefaultListLimit for non-positive values.
func (s *EventService) ListUpcoming(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	today := s.now().UTC().Format("2006-01-02")
	return s.store.ListEvents(ctx, today, limit)
}
