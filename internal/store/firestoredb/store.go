package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/store"
)

const fieldEventsJoined = "number_event_joined"

// Store implements store.Gateway on Firestore
type Store struct {
	client *firestore.Client
}

// New wraps an initialized Firestore client. The client is shared read-only
// by all requests.
func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) events() *firestore.CollectionRef {
	return s.client.Collection(store.CollectionEvents)
}

func (s *Store) userEvents() *firestore.CollectionRef {
	return s.client.Collection(store.CollectionUserEvents)
}

func (s *Store) users() *firestore.CollectionRef {
	return s.client.Collection(store.CollectionUsers)
}

// RunInTx runs fn in a single-attempt Firestore transaction. A membership
// document created concurrently by another request makes the commit fail
// with AlreadyExists, which is reported as domain.ErrAlreadyMember.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &tx{s: s, t: t})
	}, firestore.MaxAttempts(1))
	if status.Code(err) == codes.AlreadyExists {
		return domain.ErrAlreadyMember
	}
	return err
}

// CreateEvent writes the event, its organizer membership and the organizer
// counter in one transaction.
func (s *Store) CreateEvent(ctx context.Context, event *domain.Event, organizer *domain.Membership) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	eventRef := s.events().Doc(event.ID)
	memberRef := s.userEvents().Doc(domain.MembershipID(organizer.UserID, event.ID))
	userRef := s.users().Doc(organizer.UserID)
	if eventRef == nil || memberRef == nil || userRef == nil {
		return fmt.Errorf("invalid document id for event %q", event.ID)
	}
	organizer.EventID = event.ID

	err := s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		if err := t.Create(eventRef, event); err != nil {
			return err
		}
		if err := t.Create(memberRef, organizer); err != nil {
			return err
		}
		return t.Set(userRef, map[string]interface{}{
			fieldEventsJoined: firestore.Increment(1),
		}, firestore.MergeAll)
	}, firestore.MaxAttempts(1))
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by id
func (s *Store) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ref := s.events().Doc(eventID)
	if ref == nil {
		return nil, domain.ErrEventNotFound
	}
	snap, err := ref.Get(ctx)
	return decodeEvent(snap, err)
}

// ListEvents returns events dated on or after fromDate, soonest first
func (s *Store) ListEvents(ctx context.Context, fromDate string, limit int) ([]domain.Event, error) {
	snaps, err := s.events().
		Where("date", ">=", fromDate).
		OrderBy("date", firestore.Asc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]domain.Event, 0, len(snaps))
	for _, snap := range snaps {
		e, err := decodeEvent(snap, nil)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, nil
}

// GetUser retrieves a user profile by Firebase UID
func (s *Store) GetUser(ctx context.Context, uid string) (*domain.UserProfile, error) {
	ref := s.users().Doc(uid)
	if ref == nil {
		return nil, domain.ErrUserNotFound
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var u domain.UserProfile
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	u.UID = snap.Ref.ID
	return &u, nil
}

// SetNotificationToken upserts the push token and its timestamp on the profile
func (s *Store) SetNotificationToken(ctx context.Context, uid, token string, at time.Time) error {
	ref := s.users().Doc(uid)
	if ref == nil {
		return fmt.Errorf("invalid user id %q", uid)
	}
	_, err := ref.Set(ctx, map[string]interface{}{
		"fcmToken":          token,
		"fcmTokenUpdatedAt": at,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set notification token: %w", err)
	}
	return nil
}

// Ping issues a single-document read against the events collection.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.events().Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *Store) Close() error {
	return s.client.Close()
}

type tx struct {
	s *Store
	t *firestore.Transaction
}

func (x *tx) GetEvent(eventID string) (*domain.Event, error) {
	ref := x.s.events().Doc(eventID)
	if ref == nil {
		return nil, domain.ErrEventNotFound
	}
	snap, err := x.t.Get(ref)
	return decodeEvent(snap, err)
}

func (x *tx) GetMembership(userID, eventID string) (*domain.Membership, error) {
	ref := x.s.userEvents().Doc(domain.MembershipID(userID, eventID))
	if ref == nil {
		return nil, domain.ErrMembershipNotFound
	}
	snap, err := x.t.Get(ref)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	var m domain.Membership
	if err := snap.DataTo(&m); err != nil {
		return nil, fmt.Errorf("failed to decode membership: %w", err)
	}
	return &m, nil
}

func (x *tx) CreateMembership(m *domain.Membership) error {
	ref := x.s.userEvents().Doc(domain.MembershipID(m.UserID, m.EventID))
	if ref == nil {
		return fmt.Errorf("invalid membership id for user %q", m.UserID)
	}
	return x.t.Create(ref, m)
}

func (x *tx) DeleteMembership(userID, eventID string) error {
	ref := x.s.userEvents().Doc(domain.MembershipID(userID, eventID))
	if ref == nil {
		return domain.ErrMembershipNotFound
	}
	return x.t.Delete(ref)
}

func (x *tx) AdjustEventsJoined(userID string, delta int) error {
	ref := x.s.users().Doc(userID)
	if ref == nil {
		return fmt.Errorf("invalid user id %q", userID)
	}
	return x.t.Set(ref, map[string]interface{}{
		fieldEventsJoined: firestore.Increment(delta),
	}, firestore.MergeAll)
}

func (x *tx) AdjustParticipants(eventID string, delta int) error {
	ref := x.s.events().Doc(eventID)
	if ref == nil {
		return domain.ErrEventNotFound
	}
	return x.t.Update(ref, []firestore.Update{
		{Path: "participants", Value: firestore.Increment(delta)},
	})
}

func decodeEvent(snap *firestore.DocumentSnapshot, err error) (*domain.Event, error) {
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if snap == nil || !snap.Exists() {
		return nil, domain.ErrEventNotFound
	}

	var e domain.Event
	if err := snap.DataTo(&e); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	e.ID = snap.Ref.ID
	return &e, nil
}

var _ store.Gateway = (*Store)(nil)
