// Package server exposes a resident lang cache over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Skidy89/simple-language-loader/internal/cache"
	"github.com/Skidy89/simple-language-loader/internal/export"
	"github.com/Skidy89/simple-language-loader/internal/interpolation"
	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"

	"github.com/rs/zerolog/log"
)

// Server serves the lang table of one directory from a resident cache.
type Server struct {
	dir   string
	cache *cache.Resident
	mux   *http.ServeMux
}

// New creates a server for dir backed by c.
func New(dir string, c *cache.Resident) *Server {
	s := &Server{dir: dir, cache: c, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /langs", s.handleAll)
	s.mux.HandleFunc("GET /langs/{id}", s.handleResource)
	s.mux.HandleFunc("GET /langs/{id}/{key}", s.handleKey)
	s.mux.HandleFunc("POST /reload", s.handleReload)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("dir", s.dir).Msg("Serving lang files")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleAll returns every resource. With ?fresh=1 the directory is re-read
// without touching the resident table.
func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("fresh") != "" {
		table, err := s.cache.LoadUncached(r.Context(), s.dir)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, table.Decoded())
		return
	}

	table, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, table.Decoded())
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	table, ok := s.load(w, r)
	if !ok {
		return
	}
	raw, found := table[r.PathValue("id")]
	if !found {
		writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	writeJSON(w, http.StatusOK, raw.Decoded())
}

// handleKey returns one decoded value. Query parameters fill scalar placeholders.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	table, ok := s.load(w, r)
	if !ok {
		return
	}
	raw, found := table[r.PathValue("id")]
	if !found {
		writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	rawValue, found := raw[r.PathValue("key")]
	if !found {
		writeError(w, http.StatusNotFound, "unknown key")
		return
	}

	value := parser.Decode(rawValue)
	if query := r.URL.Query(); !value.IsArray() && len(query) > 0 {
		args := make(map[string]string, len(query))
		for name := range query {
			args[name] = query.Get(name)
		}
		value = parser.ScalarValue(interpolation.Fill(value.Scalar, args))
	}
	writeJSON(w, http.StatusOK, value)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	table, ok := s.load(w, r)
	if !ok {
		return
	}
	log.Info().Int("resources", len(table)).Msg("Reloaded lang files")
	writeJSON(w, http.StatusOK, map[string]any{"resources": table.Resources()})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (loader.Table, bool) {
	table, err := s.cache.LoadOrBuild(r.Context(), s.dir)
	if err != nil {
		log.Error().Err(err).Str("dir", s.dir).Msg("Load lang files")
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return table, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := export.Encode(w, export.FormatJSON, v); err != nil {
		log.Warn().Err(err).Msg("Write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
