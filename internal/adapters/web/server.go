// Package web serves the daemon's queries as a JSON API over HTTP.
// Binds to localhost only. No network exposure, no auth needed.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/ports"
)

// maxBody caps request bodies; link and match take whole note bodies.
const maxBody = 4 * 1024 * 1024

// Server serves the JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	log      logr.Logger
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .notelink/run/http.port
}

// NewServer creates an HTTP server answering from queries.
// The portFilePath is where the bound port is written for discovery.
func NewServer(queries socket.AppQueries, portFilePath string, log logr.Logger) *Server {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Server{
		queries:      queries,
		log:          log.WithName("web"),
		started:      time.Now(),
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a notes-dir-specific port: 27000 + (hash(abs_path) % 1000).
func DefaultPort(notesDir string) int {
	abs, err := filepath.Abs(notesDir)
	if err != nil {
		abs = notesDir
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 27000 + int(n%1000)
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/titles", s.handleTitles)
	mux.HandleFunc("GET /api/backlinks", s.handleBacklinks)
	mux.HandleFunc("POST /api/link", s.handleLink)
	mux.HandleFunc("POST /api/match", s.handleMatch)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	return mux
}

// Start begins listening on the preferred port (0 picks a free one).
// Writes the port to the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Write port file for discovery
	if s.portFilePath != "" {
		if err := os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644); err != nil {
			s.log.Error(err, "write port file", "path", s.portFilePath)
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(err, "http server stopped")
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the API base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := s.queries.Health()
	result.Status = "ok"
	result.Uptime = time.Since(s.started).Round(time.Second).String()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queries.Titles())
}

func (s *Server) handleBacklinks(w http.ResponseWriter, r *http.Request) {
	params := socket.BacklinksParams{
		ID:    r.URL.Query().Get("id"),
		Title: r.URL.Query().Get("title"),
	}
	if params.ID == "" && params.Title == "" {
		writeError(w, http.StatusBadRequest, "backlinks needs an id or a title")
		return
	}
	result, err := s.queries.Backlinks(params)
	if errors.Is(err, ports.ErrNoteNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	var params socket.LinkParams
	if !decodeBody(w, r, &params) {
		return
	}
	start := time.Now()
	result := s.queries.Link(params)
	result.Elapsed = time.Since(start).String()
	s.log.V(1).Info("link", "chars", len(params.Text), "links", result.Count)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var params socket.MatchParams
	if !decodeBody(w, r, &params) {
		return
	}
	start := time.Now()
	result := s.queries.Match(params.Text)
	result.Elapsed = time.Since(start).String()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeBody reads a JSON request body into dst, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
