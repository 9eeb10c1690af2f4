package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists checkpoints to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite checkpoint store.
// The path should be a file path (e.g., "./checkpoints.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id   TEXT NOT NULL,
			step        INTEGER NOT NULL,
			id          TEXT NOT NULL,
			version     INTEGER NOT NULL,
			produced_by TEXT NOT NULL,
			next_node   TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			state       BLOB NOT NULL,
			PRIMARY KEY (thread_id, step)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_checkpoints_thread_id
		ON checkpoints(thread_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store. The insert is a single statement, so the
// checkpoint is recorded atomically or not at all.
func (s *SQLiteStore) Append(ctx context.Context, cp *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, step, id, version, produced_by, next_node, created_at, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, cp.ThreadID, cp.Step, cp.ID, cp.Version, cp.ProducedBy, cp.NextNode,
		cp.CreatedAt.UTC().Format(time.RFC3339Nano), []byte(cp.State))

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrStepConflict
		}
		return fmt.Errorf("append checkpoint: %w", err)
	}
	return nil
}

// Latest implements Store.
func (s *SQLiteStore) Latest(ctx context.Context, threadID string) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	cp := &Checkpoint{ThreadID: threadID}
	var createdAt string
	var state []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT step, id, version, produced_by, next_node, created_at, state
		FROM checkpoints
		WHERE thread_id = ?
		ORDER BY step DESC
		LIMIT 1
	`, threadID).Scan(&cp.Step, &cp.ID, &cp.Version, &cp.ProducedBy, &cp.NextNode, &createdAt, &state)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load latest checkpoint: %w", err)
	}

	cp.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	cp.State = state
	return cp, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, threadID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT step, produced_by, next_node, created_at, LENGTH(state)
		FROM checkpoints
		WHERE thread_id = ?
		ORDER BY step
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	infos := make([]Info, 0)
	for rows.Next() {
		var info Info
		var createdAt string
		if err := rows.Scan(&info.Step, &info.ProducedBy, &info.NextNode, &createdAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan checkpoint info: %w", err)
		}
		info.ThreadID = threadID
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}

	return infos, nil
}

// DeleteThread implements Store.
func (s *SQLiteStore) DeleteThread(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM checkpoints WHERE thread_id = ?
	`, threadID)
	if err != nil {
		return fmt.Errorf("delete thread checkpoints: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)
