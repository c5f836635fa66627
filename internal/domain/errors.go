package domain

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrAlreadyMember        = errors.New("already a member of this event")
	ErrNotAMember           = errors.New("not a member of this event")
	ErrOrganizerCannotLeave = errors.New("organizer cannot leave their own event")
	ErrEventFull            = errors.New("event is full")
	ErrForbidden            = errors.New("forbidden")
	ErrServiceUnavailable   = errors.New("service unavailable")
)
