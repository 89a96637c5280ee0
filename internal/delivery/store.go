package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/scopedoc/internal/db"
)

// Store persists delivery records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

type recordRow struct {
	Record
	TS string `db:"created_at"`
}

// Save inserts r, filling in ID and CreatedAt when empty.
func (s *Store) Save(ctx context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO deliveries (id, session_id, document_version, channel, target, status, attempts, error, created_at)
		VALUES (:id, :session_id, :document_version, :channel, :target, :status, :attempts, :error, :created_at)`,
		recordRow{Record: r, TS: db.FormatTime(r.CreatedAt)})
	if err != nil {
		return Record{}, fmt.Errorf("inserting delivery: %w", err)
	}
	return r, nil
}

// List returns the delivery records of a session, oldest first.
func (s *Store) List(ctx context.Context, sessionID string) ([]Record, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, document_version, channel, target, status, attempts, error, created_at
		FROM deliveries WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		r := row.Record
		r.CreatedAt = db.ParseTime(row.TS)
		out = append(out, r)
	}
	return out, nil
}
