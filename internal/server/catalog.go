package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/session"
)

// registerCatalogRoutes exposes the feature catalog read-only, for intake
// forms that let the client pick features up front.
func registerCatalogRoutes(r chi.Router, engine *session.Engine) {
	catalog := engine.Features()

	r.Get("/api/features", func(w http.ResponseWriter, r *http.Request) {
		list := catalog.Features()
		if t := r.URL.Query().Get("website_type"); t != "" {
			list = catalog.ByWebsiteType(intelligence.NormalizeWebsiteType(t))
		}
		if list == nil {
			list = []features.Feature{}
		}
		writeJSON(w, list)
	})

	r.Get("/api/features/{id}", func(w http.ResponseWriter, r *http.Request) {
		f, ok := catalog.Feature(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, `{"error":"feature not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, f)
	})

	r.Get("/api/packages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"packages": catalog.Packages(),
			"hosting":  catalog.HostingTiers(),
			"bundles":  catalog.Bundles(),
		})
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
