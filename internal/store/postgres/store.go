package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/store"
)

// Store implements store.Gateway on PostgreSQL. The (user_id, event_id)
// primary key on user_events is the uniqueness guarantee for memberships.
type Store struct {
	db *sql.DB
}

// New creates a new Store
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const eventColumns = `id, organizer_id, name, type, description, date, time,
	address, lat, lng, participants, max_participants, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.OrganizerID,
		&e.Name,
		&e.Type,
		&e.Description,
		&e.Date,
		&e.Time,
		&e.Location.Address,
		&e.Location.Lat,
		&e.Location.Lng,
		&e.Participants,
		&e.MaxParticipants,
		&e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &e, nil
}

// RunInTx runs fn inside a database transaction, committing only when fn
// succeeds.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &tx{ctx: ctx, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateEvent inserts the event, the organizer membership and bumps the
// organizer counter in one transaction.
func (s *Store) CreateEvent(ctx context.Context, event *domain.Event, organizer *domain.Membership) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	organizer.EventID = event.ID

	return s.RunInTx(ctx, func(ctx context.Context, t store.Tx) error {
		x := t.(*tx)
		_, err := x.tx.ExecContext(ctx, `
			INSERT INTO events (`+eventColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`,
			event.ID,
			event.OrganizerID,
			event.Name,
			event.Type,
			event.Description,
			event.Date,
			event.Time,
			event.Location.Address,
			event.Location.Lat,
			event.Location.Lng,
			event.Participants,
			event.MaxParticipants,
			event.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		if err := x.CreateMembership(organizer); err != nil {
			return err
		}
		return x.AdjustEventsJoined(organizer.UserID, 1)
	})
}

// GetEvent retrieves an event by id
func (s *Store) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID)
	return scanEvent(row)
}

// ListEvents returns events dated on or after fromDate, soonest first
func (s *Store) ListEvents(ctx context.Context, fromDate string, limit int) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE date >= $1
		ORDER BY date ASC, time ASC
		LIMIT $2
	`, fromDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// GetUser retrieves a user profile by Firebase UID
func (s *Store) GetUser(ctx context.Context, uid string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	var token sql.NullString
	var tokenAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT uid, display_name, number_event_joined, fcm_token, fcm_token_updated_at
		FROM users
		WHERE uid = $1
	`, uid).Scan(&u.UID, &u.DisplayName, &u.NumberEventJoined, &token, &tokenAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if token.Valid {
		u.NotificationToken = token.String
	}
	if tokenAt.Valid {
		u.NotificationTokenSetAt = tokenAt.Time
	}
	return &u, nil
}

// SetNotificationToken upserts the push token and its timestamp on the profile
func (s *Store) SetNotificationToken(ctx context.Context, uid, token string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (uid, fcm_token, fcm_token_updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO UPDATE
		SET fcm_token = EXCLUDED.fcm_token,
		    fcm_token_updated_at = EXCLUDED.fcm_token_updated_at
	`, uid, token, at)
	if err != nil {
		return fmt.Errorf("failed to set notification token: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type tx struct {
	ctx context.Context
	tx  *sql.Tx
}

// GetEvent locks the event row until the transaction ends, serializing
// concurrent membership transitions on the same event.
func (x *tx) GetEvent(eventID string) (*domain.Event, error) {
	row := x.tx.QueryRowContext(x.ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
	return scanEvent(row)
}

func (x *tx) GetMembership(userID, eventID string) (*domain.Membership, error) {
	var m domain.Membership
	err := x.tx.QueryRowContext(x.ctx, `
		SELECT user_id, event_id, role, joined_at
		FROM user_events
		WHERE user_id = $1 AND event_id = $2
	`, userID, eventID).Scan(&m.UserID, &m.EventID, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

func (x *tx) CreateMembership(m *domain.Membership) error {
	_, err := x.tx.ExecContext(x.ctx, `
		INSERT INTO user_events (user_id, event_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, m.UserID, m.EventID, m.Role, m.JoinedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

func (x *tx) DeleteMembership(userID, eventID string) error {
	res, err := x.tx.ExecContext(x.ctx, `
		DELETE FROM user_events WHERE user_id = $1 AND event_id = $2
	`, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if n == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

func (x *tx) AdjustEventsJoined(userID string, delta int) error {
	_, err := x.tx.ExecContext(x.ctx, `
		INSERT INTO users (uid, number_event_joined)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE
		SET number_event_joined = users.number_event_joined + EXCLUDED.number_event_joined
	`, userID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust events joined: %w", err)
	}
	return nil
}

func (x *tx) AdjustParticipants(eventID string, delta int) error {
	_, err := x.tx.ExecContext(x.ctx, `
		UPDATE events SET participants = participants + $2 WHERE id = $1
	`, eventID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust participants: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}

var _ store.Gateway = (*Store)(nil)
