package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/logging"
	"github.com/teamup-app/teamup-backend/internal/store"
)

// Notifier is told about successful joins so the organizer can be pushed.
type Notifier interface {
	ParticipantJoined(ctx context.Context, event *domain.Event, participantID string) error
}

// MembershipService applies the join and leave transitions
type MembershipService struct {
	store    store.Gateway
	notifier Notifier
	now      func() time.Time
}

// NewMembershipService creates a new MembershipService. notifier may be nil.
func NewMembershipService(gw store.Gateway, notifier Notifier) *MembershipService {
	return &MembershipService{
		store:    gw,
		notifier: notifier,
		now:      time.Now,
	}
}

// Join moves userID from NotMember to Member(participant) on eventID.
//
// The event read, the duplicate check, the capacity check and every write
// happen in one transaction. A membership created concurrently by the same
// user makes the transaction fail with domain.ErrAlreadyMember instead of
// producing a second record.
func (s *MembershipService) Join(ctx context.Context, userID, eventID string) (*domain.Membership, error) {
	if eventID == "" {
		return nil, domain.ErrEventNotFound
	}

	membership := &domain.Membership{
		UserID:   userID,
		EventID:  eventID,
		Role:     domain.RoleParticipant,
		JoinedAt: s.now().UTC(),
	}

	var event *domain.Event
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		ev, err := tx.GetEvent(eventID)
		if err != nil {
			return err
		}

		_, err = tx.GetMembership(userID, eventID)
		switch {
		case err == nil:
			return domain.ErrAlreadyMember
		case !errors.Is(err, domain.ErrMembershipNotFound):
			return err
		}

		if ev.IsFull() {
			return domain.ErrEventFull
		}

		if err := tx.CreateMembership(membership); err != nil {
			return err
		}
		if err := tx.AdjustEventsJoined(userID, 1); err != nil {
			return err
		}
		if err := tx.AdjustParticipants(eventID, 1); err != nil {
			return err
		}

		event = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	event.Participants++
	s.notifyJoin(ctx, event, userID)
	return membership, nil
}

// Leave moves userID from Member(participant) back to NotMember on eventID.
// The organizer of an event never leaves it through this transition.
func (s *MembershipService) Leave(ctx context.Context, userID, eventID string) error {
	if eventID == "" {
		return domain.ErrEventNotFound
	}

	return s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		ev, err := tx.GetEvent(eventID)
		if err != nil {
			return err
		}
		if ev.OrganizerID == userID {
			return domain.ErrOrganizerCannotLeave
		}

		m, err := tx.GetMembership(userID, eventID)
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return domain.ErrNotAMember
		}
		if err != nil {
			return err
		}
		if m.Role == domain.RoleOrganizer {
			return domain.ErrOrganizerCannotLeave
		}

		if err := tx.DeleteMembership(userID, eventID); err != nil {
			if errors.Is(err, domain.ErrMembershipNotFound) {
				return domain.ErrNotAMember
			}
			return err
		}
		if err := tx.AdjustEventsJoined(userID, -1); err != nil {
			return err
		}
		return tx.AdjustParticipants(eventID, -1)
	})
}

// notifyJoin runs only after the primary mutation committed; its failure is
// logged and never reported to the caller.
func (s *MembershipService) notifyJoin(ctx context.Context, event *domain.Event, participantID string) {
	if s.notifier == nil || event.OrganizerID == participantID {
		return
	}
	if err := s.notifier.ParticipantJoined(ctx, event, participantID); err != nil {
		logging.FromContext(ctx).WithFields(logrus.Fields{
			"operation": "membership.join",
			"event_id":  event.ID,
		}).WithError(err).Warn("organizer notification failed")
	}
}
