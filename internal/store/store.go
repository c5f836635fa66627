// Package store defines the Event Store Gateway: the accessor over the
// events, userEvents and users collections shared by every handler.
package store

import (
	"context"
	"time"

	"github.com/teamup-app/teamup-backend/internal/domain"
)

// Logical collection names.
const (
	CollectionEvents     = "events"
	CollectionUserEvents = "userEvents"
	CollectionUsers      = "users"
)

// Tx is the set of reads and writes available inside a membership
// transaction. Implementations may require every read to happen before the
// first write.
type Tx interface {
	// GetEvent returns domain.ErrEventNotFound when the event does not exist.
	GetEvent(eventID string) (*domain.Event, error)
	// GetMembership returns domain.ErrMembershipNotFound when no record exists.
	GetMembership(userID, eventID string) (*domain.Membership, error)
	// CreateMembership returns domain.ErrAlreadyMember when a record for the
	// same (user, event) pair exists, including one written concurrently.
	CreateMembership(m *domain.Membership) error
	DeleteMembership(userID, eventID string) error
	AdjustEventsJoined(userID string, delta int) error
	AdjustParticipants(eventID string, delta int) error
}

// Gateway is the Event Store Gateway.
type Gateway interface {
	// RunInTx applies fn as a single atomic unit. It never retries: a
	// contention failure surfaces to the caller.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	CreateEvent(ctx context.Context, event *domain.Event, organizer *domain.Membership) error
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	ListEvents(ctx context.Context, fromDate string, limit int) ([]domain.Event, error)

	GetUser(ctx context.Context, uid string) (*domain.UserProfile, error)
	SetNotificationToken(ctx context.Context, uid, token string, at time.Time) error

	Ping(ctx context.Context) error
	Close() error
}
