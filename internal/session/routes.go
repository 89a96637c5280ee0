package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/scopedoc/internal/docs"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/interview"
	"github.com/ziadkadry99/scopedoc/internal/scope"
)

// RegisterRoutes mounts the session API under /api/sessions.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", handleCreate(engine))
		r.Get("/", handleList(engine))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handleGet(engine))
			r.Post("/next", handleNext(engine))
			r.Post("/answers", handleAnswer(engine))
			r.Put("/foundation", handleFoundation(engine))
			r.Put("/features", handleFeatures(engine))
			r.Post("/topics/{topic}/reopen", handleReopen(engine))
			r.Get("/closure", handleClosure(engine))
			r.Get("/pricing", handlePricing(engine))
			r.Post("/documents", handleGenerate(engine))
			r.Get("/documents", handleListDocuments(engine))
			r.Get("/documents/{version}", handleGetDocument(engine))
			r.Post("/reset", handleReset(engine))
		})
	})
}

// httpError maps engine errors to status codes.
func httpError(w http.ResponseWriter, err error) {
	var missing *scope.MissingFieldsError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDocumentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrGenerationInFlight), errors.Is(err, ErrSessionComplete):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrUnknownFeature), errors.Is(err, ErrUnknownTopic):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          err.Error(),
			"missing_fields": missing.Fields,
		})
	case errors.Is(err, interview.ErrInvalidUpstreamResponse):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNoGenerator):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type createRequest struct {
	Foundation *intelligence.Foundation `json:"foundation,omitempty"`
}

func handleCreate(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
		}

		s, err := engine.Create(r.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		if req.Foundation != nil {
			if _, err := engine.SetFoundation(r.Context(), s.ID, *req.Foundation); err != nil {
				httpError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusCreated, s.View())
	}
}

func handleList(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		list, err := engine.List(r.Context(), limit)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGet(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := engine.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

func handleNext(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := engine.NextQuestion(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleAnswer(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in AnswerInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		res, err := engine.Answer(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleFoundation(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f intelligence.Foundation
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		view, err := engine.SetFoundation(r.Context(), chi.URLParam(r, "id"), f)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

type featuresRequest struct {
	Features []string `json:"features"`
}

func handleFeatures(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req featuresRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		sel, err := engine.SelectFeatures(r.Context(), chi.URLParam(r, "id"), req.Features)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sel)
	}
}

func handleReopen(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		reopened, err := engine.ReopenTopic(r.Context(), chi.URLParam(r, "id"), topic)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"topic": topic, "reopened": reopened})
	}
}

func handleClosure(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := engine.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		v := s.View()
		writeJSON(w, http.StatusOK, map[string]any{
			"closed_topics": v.Closure.Closed,
			"recent_topics": v.Closure.Recent,
			"context":       s.ClosureContext(),
		})
	}
}

func handlePricing(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := engine.Pricing(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleGenerate(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := engine.Generate(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, doc)
	}
}

func handleListDocuments(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := engine.Store().ListDocuments(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// handleGetDocument serves one version as JSON (default), Markdown or
// HTML. "latest" selects the newest version.
func handleGetDocument(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := 0
		if v := chi.URLParam(r, "version"); v != "latest" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, `{"error":"version must be a positive number or latest"}`, http.StatusBadRequest)
				return
			}
			version = n
		}

		doc, stored, err := engine.Document(r.Context(), chi.URLParam(r, "id"), version)
		if err != nil {
			httpError(w, err)
			return
		}

		switch r.URL.Query().Get("format") {
		case "", "json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(stored.Body))
		case "md", "markdown":
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write([]byte(stored.Markdown))
		case "html":
			page, err := docs.RenderHTML(doc)
			if err != nil {
				httpError(w, err)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(page)
		default:
			http.Error(w, `{"error":"format must be json, md or html"}`, http.StatusBadRequest)
		}
	}
}

func handleReset(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
