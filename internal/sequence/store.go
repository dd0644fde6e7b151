package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DBName is the store file created inside each project directory.
const DBName = "framepress.db"

// Store manages sequence persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the sequence database inside dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, DBName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const frameColumns = "id, position, name, timestamp_ms, page_break_after, created_at, updated_at"

func scanFrame(row interface{ Scan(...any) error }) (Frame, error) {
	var (
		frame       Frame
		timestampMS int64
		pageBreak   int
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(&frame.ID, &frame.Position, &frame.Name, &timestampMS, &pageBreak, &createdAt, &updatedAt); err != nil {
		return Frame{}, err
	}
	frame.Timestamp = time.Duration(timestampMS) * time.Millisecond
	frame.PageBreakAfter = pageBreak != 0
	frame.CreatedAt = parseTimestamp(createdAt)
	frame.UpdatedAt = parseTimestamp(updatedAt)
	return frame, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// List returns all frames ordered by position.
func (s *Store) List(ctx context.Context) ([]Frame, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+frameColumns+` FROM frames ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var frames []Frame
	for rows.Next() {
		frame, err := scanFrame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return frames, nil
}

// Count reports the number of persisted frames.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM frames`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return count, nil
}

// Append inserts a frame at the end of the sequence and returns it with its
// assigned identity and position.
func (s *Store) Append(ctx context.Context, timestamp time.Duration) (Frame, error) {
	ctx = ensureContext(ctx)
	count, err := s.Count(ctx)
	if err != nil {
		return Frame{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	name := FrameName(count)
	var id int64
	if err := retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx,
			`INSERT INTO frames (position, name, timestamp_ms, page_break_after, created_at, updated_at)
             VALUES (?, ?, ?, 0, ?, ?)`,
			count, name, timestamp.Milliseconds(), now, now)
		if execErr != nil {
			return execErr
		}
		id, execErr = res.LastInsertId()
		return execErr
	}); err != nil {
		return Frame{}, fmt.Errorf("append frame: %w", err)
	}
	return Frame{
		ID:        id,
		Position:  count,
		Name:      name,
		Timestamp: timestamp,
	}, nil
}

// Apply loads the sequence, runs the mutation against the in-memory
// container, and persists the resulting order in one transaction. The
// mutation's error aborts the write untouched.
func (s *Store) Apply(ctx context.Context, mutate func(*Sequence) error) ([]Frame, error) {
	ctx = ensureContext(ctx)
	frames, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	seq := New(frames)
	if err := mutate(seq); err != nil {
		return nil, err
	}
	updated := seq.Frames()
	if err := s.rewrite(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// rewrite replaces the persisted order with the given frames. Positions are
// written through a disjoint negative range first so the UNIQUE constraint
// never trips mid-update.
func (s *Store) rewrite(ctx context.Context, frames []Frame) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rewrite tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	keep := make([]any, 0, len(frames))
	for _, frame := range frames {
		keep = append(keep, frame.ID)
	}
	if len(keep) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM frames`); err != nil {
			return fmt.Errorf("clear frames: %w", err)
		}
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
		if _, err := tx.ExecContext(ctx, `DELETE FROM frames WHERE id NOT IN (`+placeholders+`)`, keep...); err != nil {
			return fmt.Errorf("delete frames: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, frame := range frames {
		if _, err := tx.ExecContext(ctx,
			`UPDATE frames SET position = ?, updated_at = ? WHERE id = ?`,
			-(frame.Position + 1), now, frame.ID); err != nil {
			return fmt.Errorf("stage position: %w", err)
		}
	}
	for _, frame := range frames {
		if _, err := tx.ExecContext(ctx,
			`UPDATE frames SET position = ?, name = ?, page_break_after = ?, updated_at = ? WHERE id = ?`,
			frame.Position, frame.Name, boolToInt(frame.PageBreakAfter), now, frame.ID); err != nil {
			return fmt.Errorf("update frame: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rewrite: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
