package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const partitionLayout = "2006-01-02"

// record is one line of a partition file
type record struct {
	ReceivedAt time.Time       `json:"received_at"`
	Source     string          `json:"source"`
	Log        json.RawMessage `json:"log"`
}

// FileSink appends client and server error logs to one file per UTC day
// (<dir>/YYYY-MM-DD.log, one JSON object per line). Files are only ever
// appended to or removed whole.
type FileSink struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create monitoring dir: %w", err)
	}
	return &FileSink{dir: dir, now: time.Now}, nil
}

func (s *FileSink) partition(day time.Time) string {
	return filepath.Join(s.dir, day.UTC().Format(partitionLayout)+".log")
}

// Append writes logs sent by a client and returns how many were saved
func (s *FileSink) Append(ctx context.Context, logs []json.RawMessage) (int, error) {
	return s.write(ctx, "client", logs)
}

// Report records a server-side fault
func (s *FileSink) Report(ctx context.Context, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = s.write(ctx, "server", []json.RawMessage{raw})
	return err
}

func (s *FileSink) write(ctx context.Context, source string, logs []json.RawMessage) (int, error) {
	if len(logs) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := s.now()
	var buf bytes.Buffer
	for _, l := range logs {
		var compact bytes.Buffer
		if err := json.Compact(&compact, l); err != nil {
			return 0, fmt.Errorf("invalid log entry: %w", err)
		}
		line, err := json.Marshal(record{ReceivedAt: now.UTC(), Source: source, Log: compact.Bytes()})
		if err != nil {
			return 0, fmt.Errorf("failed to marshal log entry: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.partition(now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log partition: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("failed to append logs: %w", err)
	}
	return len(logs), nil
}

// Prune removes partitions for days before cutoff and returns the removed file names
func (s *FileSink) Prune(cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list log partitions: %w", err)
	}

	cutoffDay := cutoff.UTC().Format(partitionLayout)
	var removed []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".log") {
			continue
		}
		day := strings.TrimSuffix(name, ".log")
		if _, err := time.Parse(partitionLayout, day); err != nil {
			continue
		}
		// layout sorts lexically
		if day >= cutoffDay {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
