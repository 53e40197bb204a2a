// Package progress keeps a SQLite log of lesson sessions: which lesson was
// opened from which host, for how long, and how much of it was explored.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrUnknownSession = errors.New("progress: unknown session")

// Store wraps the sessions database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Session is one opened lesson. EndedAt is zero while the session is open.
type Session struct {
	ID        string
	Lesson    string
	Scenario  string
	Host      string
	StartedAt time.Time
	EndedAt   time.Time
	Frames    uint64
	Elapsed   float64
	Switches  int
}

// Duration is the wall time the session was open.
func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Summary is what a host reports when a session closes.
type Summary struct {
	Scenario string
	Frames   uint64
	Elapsed  float64
	Switches int
}

// LessonStats aggregates finished sessions of one lesson.
type LessonStats struct {
	Lesson   string
	Sessions int
	Frames   uint64
	Elapsed  float64
	LastSeen time.Time
}

// Open creates or opens the database at path, creating parent directories
// and the schema as needed. A leading ~ is expanded to the home directory.
func Open(path string) (*Store, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("progress: cannot expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("progress: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("progress: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("progress: cannot connect to database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("progress: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			lesson TEXT NOT NULL,
			scenario TEXT NOT NULL,
			host TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER,
			frames INTEGER NOT NULL DEFAULT 0,
			elapsed REAL NOT NULL DEFAULT 0,
			switches INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_sessions_lesson ON sessions(lesson);
	`)
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Begin records a newly opened session and returns its ID.
func (s *Store) Begin(ctx context.Context, lesson, scenario, host string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, lesson, scenario, host, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, lesson, scenario, host, s.now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("progress: cannot begin session: %w", err)
	}
	return id, nil
}

// Finish closes session id with the host's summary.
func (s *Store) Finish(ctx context.Context, id string, sum Summary) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET ended_at = ?, scenario = COALESCE(NULLIF(?, ''), scenario), frames = ?, elapsed = ?, switches = ?
		 WHERE id = ?`,
		s.now().UnixMilli(), sum.Scenario, int64(sum.Frames), sum.Elapsed, sum.Switches, id,
	)
	if err != nil {
		return fmt.Errorf("progress: cannot finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("progress: cannot finish session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson, scenario, host, started_at, ended_at, frames, elapsed, switches
		 FROM sessions
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("progress: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			ses     Session
			started int64
			ended   sql.NullInt64
			frames  int64
		)
		if err := rows.Scan(&ses.ID, &ses.Lesson, &ses.Scenario, &ses.Host, &started, &ended, &frames, &ses.Elapsed, &ses.Switches); err != nil {
			return nil, fmt.Errorf("progress: cannot scan row: %w", err)
		}
		ses.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			ses.EndedAt = time.UnixMilli(ended.Int64)
		}
		ses.Frames = uint64(frames)
		out = append(out, ses)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress: row iteration error: %w", err)
	}
	return out, nil
}

// Stats aggregates finished sessions per lesson, ordered by lesson ID.
func (s *Store) Stats(ctx context.Context) ([]LessonStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lesson, COUNT(*), COALESCE(SUM(frames), 0), COALESCE(SUM(elapsed), 0), MAX(ended_at)
		 FROM sessions
		 WHERE ended_at IS NOT NULL
		 GROUP BY lesson
		 ORDER BY lesson`,
	)
	if err != nil {
		return nil, fmt.Errorf("progress: cannot query stats: %w", err)
	}
	defer rows.Close()

	var out []LessonStats
	for rows.Next() {
		var (
			st     LessonStats
			frames int64
			last   int64
		)
		if err := rows.Scan(&st.Lesson, &st.Sessions, &frames, &st.Elapsed, &last); err != nil {
			return nil, fmt.Errorf("progress: cannot scan stats row: %w", err)
		}
		st.Frames = uint64(frames)
		st.LastSeen = time.UnixMilli(last)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress: row iteration error: %w", err)
	}
	return out, nil
}
