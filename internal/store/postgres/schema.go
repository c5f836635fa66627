package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	uid                  TEXT PRIMARY KEY,
	display_name         TEXT NOT NULL DEFAULT '',
	number_event_joined  INTEGER NOT NULL DEFAULT 0,
	fcm_token            TEXT,
	fcm_token_updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS events (
	id               TEXT PRIMARY KEY,
	organizer_id     TEXT NOT NULL,
	name             TEXT NOT NULL,
	type             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	date             TEXT NOT NULL,
	time             TEXT NOT NULL,
	address          TEXT NOT NULL DEFAULT '',
	lat              DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng              DOUBLE PRECISION NOT NULL DEFAULT 0,
	participants     INTEGER NOT NULL DEFAULT 0,
	max_participants INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS events_date_idx ON events (date);

CREATE TABLE IF NOT EXISTS user_events (
	user_id   TEXT NOT NULL,
	event_id  TEXT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
	role      TEXT NOT NULL,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, event_id)
);
`

// EnsureSchema creates the tables backing the gateway when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
