package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/scopedoc/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	logged, err := store.Log(ctx, Entry{
		ID:        "test-1",
		Timestamp: ts,
		SessionID: "sess-1",
		Actor:     ActorClient,
		Action:    ActionAnswerRecorded,
		Summary:   "Answered: What is your budget?",
		Detail:    `{"facts":["budget_range"]}`,
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if logged.ID != "test-1" {
		t.Errorf("ID = %q", logged.ID)
	}

	got, err := store.GetByID(ctx, "test-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SessionID != "sess-1" || got.Actor != ActorClient || got.Action != ActionAnswerRecorded {
		t.Errorf("unexpected entry %+v", got)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.Detail != `{"facts":["budget_range"]}` {
		t.Errorf("detail = %q", got.Detail)
	}
}

func TestLogFillsDefaults(t *testing.T) {
	store := setupStore(t)
	e, err := store.Log(context.Background(), Entry{SessionID: "s", Action: ActionSessionReset})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if e.ID == "" || e.Timestamp.IsZero() || e.Actor != ActorSystem {
		t.Errorf("defaults not filled: %+v", e)
	}
	if _, err := store.Log(context.Background(), Entry{Action: ActionSessionReset}); err == nil {
		t.Error("expected error without session id")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)
	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{SessionID: "a", Actor: ActorClient, Action: ActionAnswerRecorded, Summary: "1"},
		{SessionID: "a", Action: ActionTopicClosed, Summary: "2"},
		{SessionID: "b", Actor: ActorClient, Action: ActionAnswerRecorded, Summary: "3"},
		{SessionID: "a", Actor: ActorConsultant, Action: ActionTopicReopened, Summary: "4"},
		{SessionID: "a", Action: ActionDocumentGenerated, Summary: "5"},
	}
	for i, e := range entries {
		e.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.Log(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	seed(t, store)
	since := time.Date(2026, 5, 1, 10, 2, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"all", QueryFilter{}, []string{"1", "2", "3", "4", "5"}},
		{"session", QueryFilter{SessionID: "a"}, []string{"1", "2", "4", "5"}},
		{"action", QueryFilter{Action: ActionAnswerRecorded}, []string{"1", "3"}},
		{"actor", QueryFilter{Actor: ActorConsultant}, []string{"4"}},
		{"since", QueryFilter{SessionID: "a", Since: &since}, []string{"4", "5"}},
		{"limit offset", QueryFilter{SessionID: "a", Limit: 2, Offset: 1}, []string{"2", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Summary != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, e.Summary, tt.want[i])
				}
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	store := setupStore(t)
	seed(t, store)
	n, err := store.DeleteSession(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("deleted %d, want 4", n)
	}
}

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPQueryBySession(t *testing.T) {
	r, store := setupRouter(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/?session=b", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var entries []Entry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Summary != "3" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestHTTPBadSince(t *testing.T) {
	r, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/audit/?since=yesterday", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)
	if _, err := store.Log(context.Background(), Entry{ID: "e1", SessionID: "s", Action: ActionSessionReset}); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit/e1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
