package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/scopedoc/internal/db"
)

// ErrDocumentNotFound is returned for unknown document versions.
var ErrDocumentNotFound = errors.New("document not found")

// Session statuses as stored.
const (
	StatusActive   = "active"
	StatusComplete = "complete"
)

// Summary is the listing row of one session.
type Summary struct {
	ID            string    `json:"id" db:"id"`
	ClientName    string    `json:"client_name" db:"client_name"`
	Status        string    `json:"status" db:"status"`
	QuestionCount int       `json:"question_count" db:"question_count"`
	CreatedAt     time.Time `json:"created_at" db:"-"`
	UpdatedAt     time.Time `json:"updated_at" db:"-"`
}

type summaryRow struct {
	Summary
	Created string `db:"created_at"`
	Updated string `db:"updated_at"`
}

func (r summaryRow) summary() Summary {
	s := r.Summary
	s.CreatedAt = db.ParseTime(r.Created)
	s.UpdatedAt = db.ParseTime(r.Updated)
	return s
}

// StoredDocument is one persisted document version. Body is the document
// JSON.
type StoredDocument struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Version   int       `json:"version" db:"version"`
	Body      string    `json:"-" db:"body"`
	Markdown  string    `json:"-" db:"markdown"`
	Score     int       `json:"score" db:"score"`
	Complete  bool      `json:"complete" db:"complete"`
	CreatedAt time.Time `json:"created_at" db:"-"`
}

type documentRow struct {
	StoredDocument
	Created string `db:"created_at"`
}

func (r documentRow) document() StoredDocument {
	d := r.StoredDocument
	d.CreatedAt = db.ParseTime(r.Created)
	return d
}

// Store persists sessions, their exported state and generated documents.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// CreateSession inserts an empty session row.
func (s *Store) CreateSession(ctx context.Context, id string, createdAt time.Time) error {
	ts := db.FormatTime(createdAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)`, id, ts, ts)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// SaveState replaces the stored state of a session and refreshes its
// listing columns in one transaction.
func (s *Store) SaveState(ctx context.Context, sum Summary, state map[string]string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET client_name = ?, status = ?, question_count = ?, updated_at = ? WHERE id = ?`,
		sum.ClientName, sum.Status, sum.QuestionCount, db.FormatTime(s.now()), sum.ID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_state WHERE session_id = ?`, sum.ID); err != nil {
		return fmt.Errorf("clearing session state: %w", err)
	}
	for key, value := range state {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_state (session_id, key, value) VALUES (?, ?, ?)`,
			sum.ID, key, value); err != nil {
			return fmt.Errorf("saving session state %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// LoadState returns the listing row and stored state of a session.
func (s *Store) LoadState(ctx context.Context, id string) (Summary, map[string]string, error) {
	var row summaryRow
	err := s.db.GetContext(ctx, &row, selectSessions+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, nil, ErrNotFound
	}
	if err != nil {
		return Summary{}, nil, fmt.Errorf("loading session: %w", err)
	}

	var kvs []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &kvs,
		`SELECT key, value FROM session_state WHERE session_id = ?`, id); err != nil {
		return Summary{}, nil, fmt.Errorf("loading session state: %w", err)
	}
	state := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		state[kv.Key] = kv.Value
	}
	return row.summary(), state, nil
}

const selectSessions = `SELECT id, client_name, status, question_count, created_at, updated_at FROM sessions`

// ListSessions returns sessions, most recently updated first. A limit of
// zero means no limit.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Summary, error) {
	query := selectSessions + " ORDER BY updated_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	var rows []summaryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.summary())
	}
	return out, nil
}

// LatestVersion returns the highest document version of a session, or 0.
func (s *Store) LatestVersion(ctx context.Context, sessionID string) (int, error) {
	var v int
	err := s.db.GetContext(ctx, &v,
		`SELECT COALESCE(MAX(version), 0) FROM documents WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("reading latest version: %w", err)
	}
	return v, nil
}

// SaveDocument inserts one document version. The (session, version) pair
// must be new.
func (s *Store) SaveDocument(ctx context.Context, d StoredDocument) (StoredDocument, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	d.CreatedAt = d.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO documents (id, session_id, version, body, markdown, score, complete, created_at)
		VALUES (:id, :session_id, :version, :body, :markdown, :score, :complete, :created_at)`,
		documentRow{StoredDocument: d, Created: db.FormatTime(d.CreatedAt)})
	if err != nil {
		return StoredDocument{}, fmt.Errorf("saving document v%d: %w", d.Version, err)
	}
	return d, nil
}

// GetDocument returns one document version; version 0 means the latest.
func (s *Store) GetDocument(ctx context.Context, sessionID string, version int) (*StoredDocument, error) {
	query := `SELECT id, session_id, version, body, markdown, score, complete, created_at
		FROM documents WHERE session_id = ?`
	args := []any{sessionID}
	if version > 0 {
		query += " AND version = ?"
		args = append(args, version)
	}
	query += " ORDER BY version DESC LIMIT 1"

	var row documentRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	d := row.document()
	return &d, nil
}

// ListDocuments returns the versions of a session, newest first, without
// their bodies.
func (s *Store) ListDocuments(ctx context.Context, sessionID string) ([]StoredDocument, error) {
	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, version, '' AS body, '' AS markdown, score, complete, created_at
		FROM documents WHERE session_id = ? ORDER BY version DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	out := make([]StoredDocument, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.document())
	}
	return out, nil
}
