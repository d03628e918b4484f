// Package web serves the HTML pages and form endpoints. Handlers are thin:
// each request opens its own store handle, runs one operation, and renders
// or redirects. The database file is the only state shared between requests.
package web

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"simpletodo/internal/model"
	"simpletodo/internal/store"
)

type Server struct {
	cfg  *model.AppConfig
	log  zerolog.Logger
	tmpl *pageTemplates
}

// New builds a server from the given configuration. Templates are parsed
// once here; everything else happens per request.
func New(cfg *model.AppConfig, logger zerolog.Logger) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, log: logger, tmpl: tmpl}, nil
}

// Handler returns the route table. Split out from ListenAndServe so tests
// can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /todo/{id}", s.handleDetail)
	mux.HandleFunc("POST /add", s.handleAdd)
	mux.HandleFunc("POST /update", s.handleUpdate)
	mux.HandleFunc("POST /add-subtask", s.handleAddSubtask)
	mux.HandleFunc("POST /toggle-subtask", s.handleToggleSubtask)
	mux.HandleFunc("POST /complete", s.handleComplete)
	mux.HandleFunc("POST /delete", s.handleDelete)
	return s.withLogging(mux)
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{Addr: s.cfg.ListenAddr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	return server.ListenAndServe()
}

// openStore opens a fresh store handle for one request. The schema check
// runs on every open, so the handle always sees the final schema shape.
func (s *Server) openStore() (*store.SQLiteStore, error) {
	return store.Open(s.cfg.DBPath)
}
