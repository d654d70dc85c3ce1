// Package audit persists an append-only trail of submitted mutations.
//
// The log is an operator-facing record of who changed what and whether
// it stuck; it is never read back to rebuild state. SQLite keeps the
// trail durable across restarts while the books themselves live in
// memory.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flashillumination/flashbooks/internal/ledger"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one audited mutation.
type Entry struct {
	Seq        int64
	Token      string
	Entity     string
	Op         string
	RecordID   string
	OK         bool
	Errors     string // semicolon-joined validation codes, empty when OK
	RecordedAt time.Time
}

// Log is an append-only SQLite-backed mutation trail.
type Log struct {
	db *sql.DB
}

// Open creates or opens the audit database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// on an existing log.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect audit log: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent submission.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}

	return &Log{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Append inserts one entry. Idempotent on token: appending the same
// mutation twice is silently ignored.
func (l *Log) Append(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO mutations
		(seq, token, entity, op, record_id, ok, errors, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		e.Seq,
		e.Token,
		e.Entity,
		e.Op,
		e.RecordID,
		e.OK,
		e.Errors,
		e.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append audit entry %s: %w", e.Token, err)
	}
	return nil
}

// Entries returns the full trail in deterministic order.
func (l *Log) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, token, entity, op, record_id, ok, errors, recorded_at
		FROM mutations
		ORDER BY seq ASC, token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.Seq, &e.Token, &e.Entity, &e.Op, &e.RecordID, &e.OK, &e.Errors, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		t, err := time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		e.RecordedAt = t
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}

// LastSeq returns the highest recorded sequence number, 0 when empty.
// Used to resume the revision clock after a restart.
func (l *Log) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := l.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM mutations`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read last audit seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

// EntryFor builds an Entry from a mutation and its outcome.
func EntryFor(seq int64, token string, m ledger.Mutation, res ledger.MutationResult, at time.Time) Entry {
	codes := make([]string, 0, len(res.Errors))
	for _, ve := range res.Errors {
		codes = append(codes, string(ve.Code))
	}
	return Entry{
		Seq:        seq,
		Token:      token,
		Entity:     string(m.Entity),
		Op:         string(m.Op),
		RecordID:   res.ID,
		OK:         res.OK(),
		Errors:     strings.Join(codes, ";"),
		RecordedAt: at,
	}
}
