package service

import (
	"context"
	"time"

	"github.com/teamup-app/teamup-backend/internal/domain"
)

// TokenStore persists push registrations on user profiles
type TokenStore interface {
	SetNotificationToken(ctx context.Context, uid, token string, at time.Time) error
}

// TokenService associates callers with their push-messaging token
type TokenService struct {
	store TokenStore
	now   func() time.Time
}

// NewTokenService creates a new TokenService. A nil store makes every
// registration fail with domain.ErrServiceUnavailable.
func NewTokenService(store TokenStore) *TokenService {
	return &TokenService{store: store, now: time.Now}
}

// SetToken upserts token on targetUserID's profile. The target is supplied
// by the client and is only trusted when it matches the verified caller.
// Tokens are not deduplicated across users: the last writer wins.
func (s *TokenService) SetToken(ctx context.Context, callerID, targetUserID, token string) error {
	if callerID == "" || callerID != targetUserID {
		return domain.ErrForbidden
	}
	if s.store == nil {
		return domain.ErrServiceUnavailable
	}
	return s.store.SetNotificationToken(ctx, targetUserID, token, s.now().UTC())
}
