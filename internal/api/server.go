// Package api exposes the corpus operations over HTTP. Routes use the
// net/http method patterns, bodies are JSON, and errors map to status
// codes through the structured error package.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corpusdb/corpusdb/internal/service"
)

// Server is the HTTP front end over the service layer.
type Server struct {
	svc *service.Service
	log *slog.Logger
}

// NewServer creates an HTTP server over the given service.
func NewServer(svc *service.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /libraries/{$}", s.handleCreateLibrary)
	mux.HandleFunc("GET /libraries/{$}", s.handleListLibraries)
	mux.HandleFunc("GET /libraries/{id}", s.handleGetLibrary)
	mux.HandleFunc("PUT /libraries/{id}", s.handleUpdateLibrary)
	mux.HandleFunc("DELETE /libraries/{id}", s.handleDeleteLibrary)

	mux.HandleFunc("POST /documents/{$}", s.handleCreateDocument)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("PUT /documents/{id}", s.handleUpdateDocument)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("GET /documents/library/{lib_id}", s.handleListDocumentsByLibrary)
	mux.HandleFunc("DELETE /documents/library/{lib_id}", s.handleDeleteDocumentsByLibrary)

	mux.HandleFunc("POST /chunks/{$}", s.handleCreateChunk)
	mux.HandleFunc("POST /chunks/random", s.handleCreateRandomChunk)
	mux.HandleFunc("POST /chunks/search", s.handleSearch)
	mux.HandleFunc("GET /chunks/{id}", s.handleGetChunk)
	mux.HandleFunc("PUT /chunks/{id}", s.handleUpdateChunk)
	mux.HandleFunc("DELETE /chunks/{id}", s.handleDeleteChunk)
	mux.HandleFunc("GET /chunks/document/{doc_id}", s.handleListChunksByDocument)
	mux.HandleFunc("DELETE /chunks/document/{doc_id}", s.handleDeleteChunksByDocument)

	return s.withLogging(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
