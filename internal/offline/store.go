package offline

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Entry is a stored response
type Entry struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Store keeps entries per named cache in insertion order.
// Re-putting a key moves it to the newest position; reads never reorder.
type Store interface {
	Get(ctx context.Context, cache, key string) (*Entry, error)
	Put(ctx context.Context, cache, key string, e *Entry) error
	Delete(ctx context.Context, cache, key string) error
	// Trim evicts, oldest first, entries stored before olderThan and then
	// entries beyond maxEntries. A zero olderThan or maxEntries disables
	// that ceiling.
	Trim(ctx context.Context, cache string, maxEntries int, olderThan time.Time) error
}
