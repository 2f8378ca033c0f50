package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/offertalk/internal/domain"
	"github.com/ashureev/offertalk/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Serializes writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		job_title TEXT NOT NULL,
		seeker_min REAL NOT NULL,
		seeker_target REAL NOT NULL,
		seeker_max REAL NOT NULL,
		recruiter_min REAL NOT NULL,
		recruiter_max REAL NOT NULL,
		facts_json TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves a session by id. Malformed persisted records fail closed.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, role, job_title,
		       seeker_min, seeker_target, seeker_max,
		       recruiter_min, recruiter_max,
		       facts_json, messages_json, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session domain.Session
	var factsJSON, messagesJSON string
	var createdAt, updatedAt int64

	err := row.Scan(
		&session.ID, &session.Role, &session.JobTitle,
		&session.SeekerRange.Min, &session.SeekerRange.Target, &session.SeekerRange.Max,
		&session.RecruiterRange.Min, &session.RecruiterRange.Max,
		&factsJSON, &messagesJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(factsJSON), &session.Facts); err != nil {
		return nil, fmt.Errorf("decode facts for session %s: %w", sessionID, err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &session.Messages); err != nil {
		return nil, fmt.Errorf("decode messages for session %s: %w", sessionID, err)
	}
	if session.Facts == nil {
		session.Facts = domain.NewFactLedger()
	}
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("malformed session record: %w", err)
	}

	return &session, nil
}

// Save persists the full session record, creating or replacing it.
func (s *SQLiteStore) Save(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("refusing to save malformed session: %w", err)
	}

	facts := session.Facts
	if facts == nil {
		facts = domain.NewFactLedger()
	}
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encode facts: %w", err)
	}
	messages := session.Messages
	if messages == nil {
		messages = []domain.Message{}
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.UpdatedAt = time.Now()

	query := `
	INSERT INTO sessions (session_id, role, job_title,
		seeker_min, seeker_target, seeker_max,
		recruiter_min, recruiter_max,
		facts_json, messages_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		facts_json = excluded.facts_json,
		messages_json = excluded.messages_json,
		updated_at = excluded.updated_at`

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	exec := func() error {
		_, err := s.db.ExecContext(ctx, query,
			session.ID, string(session.Role), session.JobTitle,
			session.SeekerRange.Min, session.SeekerRange.Target, session.SeekerRange.Max,
			session.RecruiterRange.Min, session.RecruiterRange.Max,
			string(factsJSON), string(messagesJSON),
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		)
		return err
	}

	if err := exec(); err != nil {
		if !shared.IsSQLiteConflictError(err) {
			return fmt.Errorf("save session: %w", err)
		}
		time.Sleep(50 * time.Millisecond)
		if err := exec(); err != nil {
			return fmt.Errorf("save session after retry: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
