// Package sqlite implements the journal on an embedded single-file SQLite
// database. This is the production backend: one transactional file holds the
// message log and the session registry, and ":memory:" gives an ephemeral
// store with identical semantics.
package sqlite

import (
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/marmos91/fixlink/pkg/journal"
)

const schema = `
CREATE TABLE IF NOT EXISTS message(
	seqNo     INTEGER NOT NULL,
	session   INTEGER NOT NULL,
	direction INTEGER NOT NULL,
	msg       BLOB,
	PRIMARY KEY (session, direction, seqNo)
);

CREATE TABLE IF NOT EXISTS session(
	sessionId     INTEGER PRIMARY KEY AUTOINCREMENT,
	targetCompId  TEXT NOT NULL,
	senderCompId  TEXT NOT NULL,
	outboundSeqNo INTEGER NOT NULL DEFAULT 0,
	inboundSeqNo  INTEGER NOT NULL DEFAULT 0,
	UNIQUE (targetCompId, senderCompId)
);
`

// Store is a journal.Store backed by SQLite.
type Store struct {
	db *sqlx.DB
}

var _ journal.Store = (*Store)(nil)

// Open opens (or creates) the journal database at path. Pass ":memory:" for
// an ephemeral store.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %q: %w", path, err)
	}

	// The journal write path is serialised; a single connection also keeps
	// ":memory:" databases coherent across the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init journal schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Sessions lists every registered session.
func (s *Store) Sessions() ([]journal.SessionRecord, error) {
	rows, err := s.db.Queryx(
		`SELECT sessionId, targetCompId, senderCompId, outboundSeqNo, inboundSeqNo FROM session`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []journal.SessionRecord
	for rows.Next() {
		var rec journal.SessionRecord
		if err := rows.Scan(&rec.Key, &rec.TargetCompID, &rec.SenderCompID, &rec.LastNumOut, &rec.LastNumIn); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CreateSession registers a new comp-id pair.
func (s *Store) CreateSession(targetCompID, senderCompID string) (journal.SessionRecord, error) {
	res, err := s.db.Exec(
		`INSERT INTO session(targetCompId, senderCompId) VALUES(?, ?)`,
		targetCompID, senderCompID)
	if err != nil {
		if isConstraintErr(err) {
			return journal.SessionRecord{}, fmt.Errorf(
				"%w: TargetCompID=%s SenderCompID=%s", journal.ErrSessionExists, targetCompID, senderCompID)
		}
		return journal.SessionRecord{}, fmt.Errorf("failed to create session: %w", err)
	}
	key, err := res.LastInsertId()
	if err != nil {
		return journal.SessionRecord{}, err
	}
	return journal.SessionRecord{Key: key, TargetCompID: targetCompID, SenderCompID: senderCompID}, nil
}

// Persist journals one raw frame and advances the registry counter for the
// frame's direction, atomically.
func (s *Store) Persist(raw []byte, sessionKey int64, dir journal.Direction) error {
	seqNo, err := journal.SeqNumFromRaw(raw)
	if err != nil {
		return err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO message(seqNo, session, direction, msg) VALUES(?, ?, ?, ?)`,
		seqNo, sessionKey, int(dir), raw); err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("%w: seq=%d session=%d direction=%s",
				journal.ErrDuplicateSeqNo, seqNo, sessionKey, dir)
		}
		return fmt.Errorf("failed to persist frame: %w", err)
	}

	column := "inboundSeqNo"
	if dir == journal.Outbound {
		column = "outboundSeqNo"
	}
	if _, err := tx.Exec(
		`UPDATE session SET `+column+` = ? WHERE sessionId = ?`, seqNo, sessionKey); err != nil {
		return fmt.Errorf("failed to advance session counter: %w", err)
	}

	return tx.Commit()
}

// Recover returns the raw frames with startSeq <= seq <= endSeq in order.
func (s *Store) Recover(sessionKey int64, dir journal.Direction, startSeq, endSeq int) ([][]byte, error) {
	if endSeq <= 0 {
		endSeq = math.MaxInt32
	}
	rows, err := s.db.Query(
		`SELECT msg FROM message
		 WHERE session = ? AND direction = ? AND seqNo >= ? AND seqNo <= ?
		 ORDER BY seqNo`,
		sessionKey, int(dir), startSeq, endSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to recover frames: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

// Entries dumps journaled frames in insertion order.
func (s *Store) Entries(sessionKey int64, dir *journal.Direction) ([]journal.Entry, error) {
	q := `SELECT seqNo, session, direction, msg FROM message`
	var clauses []string
	var args []any
	if sessionKey != 0 {
		clauses = append(clauses, "session = ?")
		args = append(args, sessionKey)
	}
	if dir != nil {
		clauses = append(clauses, "direction = ?")
		args = append(args, int(*dir))
	}
	for i, c := range clauses {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY rowid"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to dump journal: %w", err)
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var d int
		if err := rows.Scan(&e.SeqNum, &e.SessionKey, &d, &e.Raw); err != nil {
			return nil, err
		}
		e.Direction = journal.Direction(d)
		out = append(out, e)
	}
	return out, rows.Err()
}

func isConstraintErr(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}
