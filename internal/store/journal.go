package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mefu/internal/menu"
)

// Record is a persisted journal entry.
type Record struct {
	ID      string
	Session string
	menu.Entry
}

// Journal persists menu.Entry values under one session id. It implements
// menu.Journal; write failures are logged, not returned.
type Journal struct {
	db      *sql.DB
	session string
	logger  *slog.Logger

	mu  sync.Mutex
	seq int64
}

// Journal returns a journal bound to a fresh session id.
func (s *Store) Journal() *Journal {
	return &Journal{
		db:      s.db,
		session: uuid.NewString(),
		logger:  slog.Default().With("component", "store"),
	}
}

// SetLogger replaces the journal's logger.
func (j *Journal) SetLogger(l *slog.Logger) {
	j.logger = l
}

// Session returns the session id entries are recorded under.
func (j *Journal) Session() string {
	return j.session
}

// Record inserts e.
func (j *Journal) Record(e menu.Entry) {
	if err := j.Append(e); err != nil {
		j.logger.Warn("journal write failed", "kind", e.Kind, "error", err)
	}
}

// Append inserts e and reports the error.
func (j *Journal) Append(e menu.Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	j.mu.Lock()
	j.seq++
	seq := j.seq
	j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO journal (id, session, seq, kind, label, handler, row_index, depth, at_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), j.session, seq, string(e.Kind), e.Label, e.Handler, e.Row, e.Depth, e.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// List returns up to limit entries of this session, newest first.
// A limit <= 0 returns all of them.
func (j *Journal) List(limit int) ([]Record, error) {
	query := `SELECT id, session, kind, label, handler, row_index, depth, at_ns
		FROM journal WHERE session = ? ORDER BY seq DESC`
	args := []any{j.session}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var kind string
		var atNS int64
		if err := rows.Scan(&r.ID, &r.Session, &kind, &r.Label, &r.Handler, &r.Row, &r.Depth, &atNS); err != nil {
			return nil, err
		}
		r.Kind = menu.EntryKind(kind)
		r.At = time.Unix(0, atNS)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Last returns the newest entry of the given kind in this session.
func (j *Journal) Last(kind menu.EntryKind) (Record, error) {
	var r Record
	var k string
	var atNS int64
	err := j.db.QueryRow(
		`SELECT id, session, kind, label, handler, row_index, depth, at_ns
		 FROM journal WHERE session = ? AND kind = ? ORDER BY seq DESC LIMIT 1`,
		j.session, string(kind),
	).Scan(&r.ID, &r.Session, &k, &r.Label, &r.Handler, &r.Row, &r.Depth, &atNS)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	r.Kind = menu.EntryKind(k)
	r.At = time.Unix(0, atNS)
	return r, nil
}

// CountByKind counts entries of kind across all sessions.
func (j *Journal) CountByKind(kind menu.EntryKind) (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM journal WHERE kind = ?`, string(kind)).Scan(&n)
	return n, err
}
