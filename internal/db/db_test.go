package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	tables := []string{"sessions", "session_state", "documents", "audit_entries", "deliveries"}
	for _, table := range tables {
		var count int
		if err := d.Get(&count, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenFileCascades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scopedoc.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()
	if d.Path() != path {
		t.Errorf("Path = %q", d.Path())
	}

	now := FormatTime(time.Now())
	d.MustExec(`INSERT INTO sessions (id, created_at, updated_at) VALUES ('s1', ?, ?)`, now, now)
	d.MustExec(`INSERT INTO session_state (session_id, key, value) VALUES ('s1', 'k', 'v')`)
	d.MustExec(`DELETE FROM sessions WHERE id = 's1'`)

	var count int
	if err := d.Get(&count, `SELECT COUNT(*) FROM session_state`); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected state rows to cascade, %d left", count)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 123456000, time.FixedZone("X", 3600))
	got := ParseTime(FormatTime(ts))
	if !got.Equal(ts) {
		t.Errorf("ParseTime(FormatTime) = %v, want %v", got, ts)
	}
	if !ParseTime("garbage").IsZero() {
		t.Error("expected zero time for garbage")
	}
	if FormatTime(ts) >= FormatTime(ts.Add(time.Second)) {
		t.Error("formatted times should sort chronologically")
	}
}
