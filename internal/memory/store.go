// Package memory persists the history of focus sessions.
//
// The store owns the persisted collection exclusively: records are
// immutable once written, reads return snapshots, and feedback is a
// new record rather than a mutation. Writes are serialized within the
// process; concurrent processes are an accepted single-user boundary.
package memory

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNoData is returned by Average when no record carries the field.
var ErrNoData = errors.New("no data")

// EmptySummary is the message shown when no sessions exist yet.
const EmptySummary = "No previous sessions found yet."

// planMaxChars bounds the stored plan text, matching the summary
// prefix kept by earlier versions of the tool.
const planMaxChars = 500

// SessionRecord is one persisted entry describing a focus attempt.
// ActualFocusMinutes and FatigueScore are optional; absent values are
// excluded from averages.
type SessionRecord struct {
	ID                 string    `json:"id"`
	Goal               string    `json:"goal"`
	Duration           string    `json:"duration"` // user-supplied free form
	Plan               string    `json:"plan_summary"`
	ActualFocusMinutes *int      `json:"actual_focus,omitempty"`
	FatigueScore       *int      `json:"fatigue_score,omitempty"` // 1-5
	BreaksTaken        int       `json:"breaks_taken"`
	CreatedAt          time.Time `json:"timestamp"` // set at write time
}

// SessionStore persists session records in SQLite.
type SessionStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewSessionStore opens (or creates) the session database at path.
// Use ":memory:" for an ephemeral store in tests.
func NewSessionStore(path string, logger *zap.Logger) (*SessionStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}

	store := &SessionStore{db: db, logger: logger}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("session store ready", zap.String("path", path))
	return store, nil
}

// initialize creates the required table.
func (s *SessionStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		goal TEXT NOT NULL,
		duration TEXT NOT NULL,
		plan TEXT,
		actual_focus INTEGER,
		fatigue INTEGER,
		breaks INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Record appends a new session record. The store assigns the ID and
// the timestamp; callers never supply either. The plan text is kept
// as a bounded prefix. A fatigue score outside 1..5 is rejected.
func (s *SessionStore) Record(rec SessionRecord) error {
	if rec.FatigueScore != nil && (*rec.FatigueScore < 1 || *rec.FatigueScore > 5) {
		return fmt.Errorf("fatigue score must be between 1 and 5, got %d", *rec.FatigueScore)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan := strings.TrimSpace(rec.Plan)
	if runes := []rune(plan); len(runes) > planMaxChars {
		plan = string(runes[:planMaxChars])
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC().Truncate(time.Minute)

	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, goal, duration, plan, actual_focus, fatigue, breaks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Goal, rec.Duration, plan,
		nullableInt(rec.ActualFocusMinutes), nullableInt(rec.FatigueScore),
		rec.BreaksTaken, createdAt,
	)
	if err != nil {
		s.logger.Error("failed to record session", zap.String("goal", rec.Goal), zap.Error(err))
		return fmt.Errorf("failed to record session: %w", err)
	}

	s.logger.Debug("session recorded", zap.String("id", id), zap.String("goal", rec.Goal))
	return nil
}

// Recent returns up to n records in chronological order, most recent
// last. An empty store yields an empty slice, not an error.
func (s *SessionStore) Recent(n int) ([]SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		n = 3
	}

	rows, err := s.db.Query(
		`SELECT session_id, goal, duration, plan, actual_focus, fatigue, breaks, created_at
		 FROM sessions
		 ORDER BY id DESC
		 LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var actual, fatigue sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Goal, &rec.Duration, &rec.Plan,
			&actual, &fatigue, &rec.BreaksTaken, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if actual.Valid {
			v := int(actual.Int64)
			rec.ActualFocusMinutes = &v
		}
		if fatigue.Valid {
			v := int(fatigue.Int64)
			rec.FatigueScore = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	// Query is newest-first; reverse to chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Summary renders the recency window as display text, or the defined
// empty-state message when no records exist.
func (s *SessionStore) Summary(n int) string {
	records, err := s.Recent(n)
	if err != nil {
		s.logger.Warn("failed to build session summary", zap.Error(err))
		return EmptySummary
	}
	if len(records) == 0 {
		return EmptySummary
	}

	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s (%s) @ %s", r.Goal, r.Duration, r.CreatedAt.Format("2006-01-02 15:04")))
	}
	return strings.Join(lines, "\n")
}

// Averageable fields.
const (
	FieldActualFocus = "actual_focus"
	FieldFatigue     = "fatigue"
	FieldBreaks      = "breaks"
)

// Average computes the mean of a numeric field over all records where
// the field is present. Returns ErrNoData when no record qualifies.
func (s *SessionStore) Average(field string) (float64, int, error) {
	var column string
	switch field {
	case FieldActualFocus, FieldFatigue, FieldBreaks:
		column = field
	default:
		return 0, 0, fmt.Errorf("unknown field: %s", field)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var avg sql.NullFloat64
	var count int
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT AVG(%s), COUNT(%s) FROM sessions WHERE %s IS NOT NULL`, column, column, column),
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute average: %w", err)
	}
	if count == 0 || !avg.Valid {
		return 0, 0, ErrNoData
	}
	return avg.Float64, count, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
