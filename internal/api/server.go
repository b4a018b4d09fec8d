// Package api exposes validation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"invoiceqc/internal/records"
	"invoiceqc/internal/store"
	"invoiceqc/internal/validation"
)

// RunStore records and lists validation runs.
type RunStore interface {
	SaveRun(ctx context.Context, run store.Run) error
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// Server serves the validation API.
type Server struct {
	engine *validation.Engine
	runs   RunStore
	log    zerolog.Logger
}

// NewServer creates a server. runs may be nil, which disables run history.
func NewServer(engine *validation.Engine, runs RunStore, log zerolog.Logger) *Server {
	return &Server{engine: engine, runs: runs, log: log}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.health)
	r.Post("/validate-json", s.validateJSON)
	r.Get("/runs", s.listRuns)
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateJSON validates a JSON array of invoice records. Every request is
// its own batch with its own duplicate state.
func (s *Server) validateJSON(w http.ResponseWriter, r *http.Request) {
	invoices, err := records.Decode(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, records.ErrSchema) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err)
		return
	}

	rep := s.engine.ValidateBatch(invoices)

	if s.runs != nil {
		run := store.NewRun("api", rep.Summary)
		if err := s.runs.SaveRun(r.Context(), run); err != nil {
			s.log.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("Failed to record run")
		} else {
			w.Header().Set("X-Run-Id", run.ID)
		}
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, errors.New("run history is disabled"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
