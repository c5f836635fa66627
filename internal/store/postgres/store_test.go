package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/events/service"
	"github.com/teamup-app/teamup-backend/internal/store"
)

var eventCols = []string{
	"id", "organizer_id", "name", "type", "description", "date", "time",
	"address", "lat", "lng", "participants", "max_participants", "created_at",
}

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return New(db), mock, db
}

func eventRow(id, organizer string, participants, max int) *sqlmock.Rows {
	return sqlmock.NewRows(eventCols).AddRow(
		id, organizer, "Five-a-side", "football", "", "2030-01-01", "18:00",
		"Stade", 45.7, 4.8, participants, max, time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}

func TestStore_Join(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()
	svc := service.NewMembershipService(s, nil)

	t.Run("creates membership and bumps counters", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 1, 0))
		mock.ExpectQuery(`FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "role", "joined_at"}))
		mock.ExpectExec(`INSERT INTO user_events`).
			WithArgs("u1", "E1", domain.RoleParticipant, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("u1", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE events SET participants`).
			WithArgs("E1", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		m, err := svc.Join(context.Background(), "u1", "E1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleParticipant, m.Role)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing record is AlreadyMember", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 2, 0))
		mock.ExpectQuery(`FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "role", "joined_at"}).
				AddRow("u1", "E1", domain.RoleParticipant, time.Now()))
		mock.ExpectRollback()

		_, err := svc.Join(context.Background(), "u1", "E1")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent insert hits the primary key", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 1, 0))
		mock.ExpectQuery(`FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "role", "joined_at"}))
		mock.ExpectExec(`INSERT INTO user_events`).
			WillReturnError(&pq.Error{Code: pgerrcode.UniqueViolation})
		mock.ExpectRollback()

		_, err := svc.Join(context.Background(), "u1", "E1")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("full event", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 10, 10))
		mock.ExpectQuery(`FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "role", "joined_at"}))
		mock.ExpectRollback()

		_, err := svc.Join(context.Background(), "u1", "E1")
		assert.ErrorIs(t, err, domain.ErrEventFull)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(eventCols))
		mock.ExpectRollback()

		_, err := svc.Join(context.Background(), "u1", "nope")
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Leave(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()
	svc := service.NewMembershipService(s, nil)

	t.Run("deletes membership and decrements counters", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 2, 0))
		mock.ExpectQuery(`FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "role", "joined_at"}).
				AddRow("u1", "E1", domain.RoleParticipant, time.Now()))
		mock.ExpectExec(`DELETE FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("u1", -1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE events SET participants`).
			WithArgs("E1", -1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, svc.Leave(context.Background(), "u1", "E1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no record is NotAMember", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 1, 0))
		mock.ExpectQuery(`FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "role", "joined_at"}))
		mock.ExpectRollback()

		err := svc.Leave(context.Background(), "u1", "E1")
		assert.ErrorIs(t, err, domain.ErrNotAMember)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("record deleted concurrently is NotAMember", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 2, 0))
		mock.ExpectQuery(`FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "role", "joined_at"}).
				AddRow("u1", "E1", domain.RoleParticipant, time.Now()))
		mock.ExpectExec(`DELETE FROM user_events`).
			WithArgs("u1", "E1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := svc.Leave(context.Background(), "u1", "E1")
		assert.ErrorIs(t, err, domain.ErrNotAMember)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("organizer never reaches the membership table", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("E1").
			WillReturnRows(eventRow("E1", "org", 2, 0))
		mock.ExpectRollback()

		err := svc.Leave(context.Background(), "org", "E1")
		assert.ErrorIs(t, err, domain.ErrOrganizerCannotLeave)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_CommitUniqueViolation(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: pgerrcode.UniqueViolation})

	err := s.RunInTx(context.Background(), func(context.Context, store.Tx) error { return nil })
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetEvent(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectQuery(`FROM events WHERE id = \$1$`).
		WithArgs("E1").
		WillReturnRows(eventRow("E1", "org", 3, 8))

	ev, err := s.GetEvent(context.Background(), "E1")
	require.NoError(t, err)
	assert.Equal(t, "org", ev.OrganizerID)
	assert.Equal(t, 3, ev.Participants)
	assert.Equal(t, 8, ev.MaxParticipants)
	assert.Equal(t, "Stade", ev.Location.Address)

	mock.ExpectQuery(`FROM events WHERE id = \$1$`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(eventCols))

	_, err = s.GetEvent(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListEvents(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	rows := eventRow("E1", "org", 1, 0).AddRow(
		"E2", "org2", "Run", "running", "", "2030-01-02", "07:00",
		"Quais", 45.75, 4.84, 4, 20, time.Now(),
	)
	mock.ExpectQuery(`FROM events\s+WHERE date >= \$1\s+ORDER BY date ASC, time ASC\s+LIMIT \$2`).
		WithArgs("2030-01-01", 50).
		WillReturnRows(rows)

	events, err := s.ListEvents(context.Background(), "2030-01-01", 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "E2", events[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateEvent(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO events`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_events`).
		WithArgs("org", sqlmock.AnyArg(), domain.RoleOrganizer, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("org", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ev := &domain.Event{OrganizerID: "org", Name: "Run", Participants: 1}
	organizer := &domain.Membership{UserID: "org", Role: domain.RoleOrganizer}
	require.NoError(t, s.CreateEvent(context.Background(), ev, organizer))

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, ev.ID, organizer.EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Users(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO users \(uid, fcm_token, fcm_token_updated_at\)`).
		WithArgs("u1", "tok", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.SetNotificationToken(context.Background(), "u1", "tok", at))

	mock.ExpectQuery(`FROM users\s+WHERE uid = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "display_name", "number_event_joined", "fcm_token", "fcm_token_updated_at"}).
			AddRow("u1", "Sam", 2, nil, nil))
	u, err := s.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.NumberEventJoined)
	assert.Empty(t, u.NotificationToken)
	assert.True(t, u.NotificationTokenSetAt.IsZero())

	mock.ExpectQuery(`FROM users\s+WHERE uid = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "display_name", "number_event_joined", "fcm_token", "fcm_token_updated_at"}))
	_, err = s.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EnsureSchema(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
