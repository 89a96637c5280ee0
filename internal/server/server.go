package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/scopedoc/internal/audit"
	"github.com/ziadkadry99/scopedoc/internal/db"
	"github.com/ziadkadry99/scopedoc/internal/delivery"
	"github.com/ziadkadry99/scopedoc/internal/logging"
	"github.com/ziadkadry99/scopedoc/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
	// RequestTimeout bounds every API request. Question generation waits on
	// the model, so keep it generous. Zero means 90 seconds.
	RequestTimeout time.Duration
}

// Server is the intake HTTP server: the session API, the interview socket
// and read-only audit, delivery and catalog endpoints.
type Server struct {
	cfg        Config
	db         *db.DB
	engine     *session.Engine
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server and registers every route.
func New(cfg Config, database *db.DB, engine *session.Engine, logger *slog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 90 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		db:     database,
		engine: engine,
		logger: logging.OrDiscard(logger),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		if s.engine != nil {
			session.RegisterRoutes(r, s.engine)
			registerCatalogRoutes(r, s.engine)
		}
		if s.db != nil {
			audit.RegisterRoutes(r, audit.NewStore(s.db))
			delivery.RegisterRoutes(r, delivery.NewStore(s.db))
		}
	})

	// The socket outlives any single request timeout.
	if s.engine != nil {
		session.RegisterSocket(r, s.engine)
	}

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Engine returns the session engine.
func (s *Server) Engine() *session.Engine { return s.engine }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("scopedoc server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server, then waits for background
// document deliveries.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.engine != nil {
		s.engine.Close()
	}
	return err
}
