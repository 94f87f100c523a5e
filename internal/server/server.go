// Package server exposes comparisons, categorization and history over a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fjacquet/statement-compare/internal/categorizer"
	"fjacquet/statement-compare/internal/history"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/pipeline"
	"fjacquet/statement-compare/internal/store"
)

const (
	maxJSONBody       = 10 << 20
	maxUploadBody     = 32 << 20
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Dependencies wires a Server. History may be nil, in which case the history
// routes answer 503.
type Dependencies struct {
	Pipeline    *pipeline.Pipeline
	Categorizer *categorizer.Categorizer
	Custom      *categorizer.CustomCategories
	Store       store.CategoryRepository
	History     history.Repository
	Logger      logging.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	pipeline    *pipeline.Pipeline
	categorizer *categorizer.Categorizer
	custom      *categorizer.CustomCategories
	store       store.CategoryRepository
	history     history.Repository
	logger      logging.Logger

	// saveMu serializes custom category writes to disk.
	saveMu sync.Mutex
}

// New builds a Server.
func New(deps Dependencies) (*Server, error) {
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("server: pipeline is required")
	}
	if deps.Categorizer == nil {
		deps.Categorizer = categorizer.Default()
	}
	if deps.Custom == nil {
		deps.Custom = categorizer.NewCustomCategories()
	}
	return &Server{
		pipeline:    deps.Pipeline,
		categorizer: deps.Categorizer,
		custom:      deps.Custom,
		store:       deps.Store,
		history:     deps.History,
		logger:      logging.OrDefault(deps.Logger).WithField(logging.FieldComponent, "server"),
	}, nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/compare/upload", s.handleCompareUpload)
	mux.HandleFunc("POST /api/categorize", s.handleCategorize)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{name}", s.handleRemoveCategory)
	mux.HandleFunc("GET /api/history", s.handleListHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetHistory)
	mux.HandleFunc("GET /api/history/{id}/edits", s.handleListEdits)
	mux.HandleFunc("POST /api/history/{id}/edits", s.handleLogEdit)
	return loggingMiddleware(s.logger, mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", logging.F("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
