package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts delivery endpoints under /api/deliveries.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/deliveries", func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			http.Error(w, `{"error":"session is required"}`, http.StatusBadRequest)
			return
		}
		records, err := store.List(r.Context(), sessionID)
		if err != nil {
			http.Error(w, `{"error":"listing deliveries failed"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})
}
