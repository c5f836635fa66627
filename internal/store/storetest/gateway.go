// Package storetest provides an in-memory store.Gateway for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/store"
)

// Gateway keeps every collection in maps. Transactions run one at a time on
// a copy of the state that replaces it only when fn succeeds.
type Gateway struct {
	mu          sync.Mutex
	events      map[string]domain.Event
	memberships map[string]domain.Membership
	users       map[string]domain.UserProfile
	nextID      int

	// Err, when set, is returned by every call.
	Err error
}

var _ store.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{
		events:      make(map[string]domain.Event),
		memberships: make(map[string]domain.Membership),
		users:       make(map[string]domain.UserProfile),
	}
}

type state struct {
	events      map[string]domain.Event
	memberships map[string]domain.Membership
	users       map[string]domain.UserProfile
}

func (g *Gateway) snapshot() *state {
	s := &state{
		events:      make(map[string]domain.Event, len(g.events)),
		memberships: make(map[string]domain.Membership, len(g.memberships)),
		users:       make(map[string]domain.UserProfile, len(g.users)),
	}
	for k, v := range g.events {
		s.events[k] = v
	}
	for k, v := range g.memberships {
		s.memberships[k] = v
	}
	for k, v := range g.users {
		s.users[k] = v
	}
	return s
}

func (g *Gateway) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return g.Err
	}
	s := g.snapshot()
	if err := fn(ctx, &tx{s: s}); err != nil {
		return err
	}
	g.events, g.memberships, g.users = s.events, s.memberships, s.users
	return nil
}

func (g *Gateway) CreateEvent(ctx context.Context, event *domain.Event, organizer *domain.Membership) error {
	g.mu.Lock()
	g.nextID++
	event.ID = fmt.Sprintf("evt-%d", g.nextID)
	g.mu.Unlock()

	organizer.EventID = event.ID
	return g.RunInTx(ctx, func(ctx context.Context, t store.Tx) error {
		x := t.(*tx)
		x.s.events[event.ID] = *event
		if err := x.CreateMembership(organizer); err != nil {
			return err
		}
		return x.AdjustEventsJoined(organizer.UserID, 1)
	})
}

func (g *Gateway) GetEvent(_ context.Context, eventID string) (*domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}
	ev, ok := g.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &ev, nil
}

func (g *Gateway) ListEvents(_ context.Context, fromDate string, limit int) ([]domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}
	out := make([]domain.Event, 0, len(g.events))
	for _, ev := range g.events {
		if ev.Date >= fromDate {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *Gateway) GetUser(_ context.Context, uid string) (*domain.UserProfile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}
	u, ok := g.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.UID = uid
	return &u, nil
}

func (g *Gateway) SetNotificationToken(_ context.Context, uid, token string, at time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return g.Err
	}
	u := g.users[uid]
	u.NotificationToken = token
	u.NotificationTokenSetAt = at
	g.users[uid] = u
	return nil
}

func (g *Gateway) Ping(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Err
}

func (g *Gateway) Close() error { return nil }

// PutEvent seeds an event
func (g *Gateway) PutEvent(ev domain.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events[ev.ID] = ev
}

// PutMembership seeds a membership record without touching counters
func (g *Gateway) PutMembership(m domain.Membership) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.memberships[domain.MembershipID(m.UserID, m.EventID)] = m
}

// PutUser seeds a user profile
func (g *Gateway) PutUser(u domain.UserProfile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[u.UID] = u
}

// Membership returns the record for (userID, eventID), if any
func (g *Gateway) Membership(userID, eventID string) (domain.Membership, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.memberships[domain.MembershipID(userID, eventID)]
	return m, ok
}

// MembershipCount counts records for eventID
func (g *Gateway) MembershipCount(eventID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, m := range g.memberships {
		if m.EventID == eventID {
			n++
		}
	}
	return n
}

// EventsJoined returns the user's number_event_joined counter
func (g *Gateway) EventsJoined(uid string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.users[uid].NumberEventJoined
}

type tx struct {
	s *state
}

func (x *tx) GetEvent(eventID string) (*domain.Event, error) {
	ev, ok := x.s.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &ev, nil
}

func (x *tx) GetMembership(userID, eventID string) (*domain.Membership, error) {
	m, ok := x.s.memberships[domain.MembershipID(userID, eventID)]
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}
	return &m, nil
}

func (x *tx) CreateMembership(m *domain.Membership) error {
	id := domain.MembershipID(m.UserID, m.EventID)
	if _, ok := x.s.memberships[id]; ok {
		return domain.ErrAlreadyMember
	}
	x.s.memberships[id] = *m
	return nil
}

func (x *tx) DeleteMembership(userID, eventID string) error {
	id := domain.MembershipID(userID, eventID)
	if _, ok := x.s.memberships[id]; !ok {
		return domain.ErrMembershipNotFound
	}
	delete(x.s.memberships, id)
	return nil
}

func (x *tx) AdjustEventsJoined(userID string, delta int) error {
	u := x.s.users[userID]
	u.NumberEventJoined += delta
	x.s.users[userID] = u
	return nil
}

func (x *tx) AdjustParticipants(eventID string, delta int) error {
	ev, ok := x.s.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	ev.Participants += delta
	x.s.events[eventID] = ev
	return nil
}
