package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/scopedoc/internal/db"
)

// ErrNotFound is returned by GetByID for unknown ids.
var ErrNotFound = errors.New("audit entry not found")

// Store persists audit entries.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

type entryRow struct {
	Entry
	TS string `db:"timestamp"`
}

func (r entryRow) entry() Entry {
	e := r.Entry
	e.Timestamp = db.ParseTime(r.TS)
	return e
}

// Log inserts a new audit entry. Empty ID, timestamp and actor are filled in.
func (s *Store) Log(ctx context.Context, entry Entry) (Entry, error) {
	if entry.SessionID == "" {
		return Entry{}, fmt.Errorf("audit entry without session id")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	entry.Timestamp = entry.Timestamp.UTC()
	if entry.Actor == "" {
		entry.Actor = ActorSystem
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO audit_entries (id, timestamp, session_id, actor, action, summary, detail)
		VALUES (:id, :timestamp, :session_id, :actor, :action, :summary, :detail)`,
		entryRow{Entry: entry, TS: db.FormatTime(entry.Timestamp)})
	if err != nil {
		return Entry{}, fmt.Errorf("inserting audit entry: %w", err)
	}
	return entry, nil
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, selectEntries+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting audit entry: %w", err)
	}
	e := row.entry()
	return &e, nil
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	SessionID string
	Action    Action
	Actor     Actor
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

const selectEntries = "SELECT id, timestamp, session_id, actor, action, summary, detail FROM audit_entries"

// Query returns audit entries matching the filter, oldest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Actor != "" {
		clauses = append(clauses, "actor = ?")
		args = append(args, string(filter.Actor))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, db.FormatTime(*filter.Since))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, db.FormatTime(*filter.Until))
	}

	query := selectEntries
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp ASC, rowid ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// DeleteSession removes every entry of a session. Returns the number of
// deleted rows.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("deleting audit entries: %w", err)
	}
	return res.RowsAffected()
}
