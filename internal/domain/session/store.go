package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pairpad/backend/internal/infrastructure/logging"
)

// Store provides SQLite-backed session persistence.
type Store struct {
	db        *sql.DB
	retention time.Duration
	logger    *logging.Logger
	onReap    func(count int)
	done      chan struct{}
}

// Open opens (or creates) a session database at path and runs migrations.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string, retention time.Duration, logger *logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// WAL mode for concurrent readers alongside the writer
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		db:        db,
		retention: retention,
		logger:    logger,
		done:      make(chan struct{}),
	}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		language   TEXT NOT NULL,
		code       TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// OnReap registers a callback invoked with the number of sessions removed
// on each reaper pass. Must be set before StartReaper.
func (s *Store) OnReap(fn func(count int)) {
	s.onReap = fn
}

// GetOrCreate returns the session for id, creating it with defaults if it
// does not exist. A row older than the retention window is treated as
// absent and replaced, so a stale document is never returned even if the
// reaper has not run yet.
func (s *Store) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	sess := &Session{SessionID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT language, code, updated_at FROM sessions WHERE session_id = ?`, id,
	).Scan(&sess.Language, &sess.Code, &sess.UpdatedAt)

	switch {
	case err == sql.ErrNoRows:
		return s.create(ctx, id)
	case err != nil:
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if time.Since(sess.UpdatedAt) > s.retention {
		return s.create(ctx, id)
	}

	return sess, nil
}

func (s *Store) create(ctx context.Context, id string) (*Session, error) {
	sess := &Session{
		SessionID: id,
		Language:  DefaultLanguage,
		Code:      "",
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, language, code, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			language = excluded.language,
			code = excluded.code,
			updated_at = excluded.updated_at`,
		sess.SessionID, sess.Language, sess.Code, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Update merges the given fields into the session and advances updated_at,
// resetting the expiry clock. Updating an unknown id is a no-op success;
// the document is expected to exist from GetOrCreate.
func (s *Store) Update(ctx context.Context, id string, upd Update) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			code = COALESCE(?, code),
			language = COALESCE(?, language),
			updated_at = ?
		WHERE session_id = ?`,
		upd.Code, upd.Language, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session whose updated_at is older than
// cutoff and reports how many were removed.
func (s *Store) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < ?`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return int(affected), nil
}

// StartReaper launches the background reclamation loop. It is best-effort:
// failures are logged and the next tick tries again. Stop with Close.
func (s *Store) StartReaper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.reap()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Store) reap() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.DeleteExpired(ctx, time.Now().UTC().Add(-s.retention))
	if err != nil {
		s.logger.Warn("Session reap failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("Reaped expired sessions", zap.Int("count", count))
		if s.onReap != nil {
			s.onReap(count)
		}
	}
}

// Close stops the reaper and closes the database.
func (s *Store) Close() error {
	close(s.done)
	return s.db.Close()
}
