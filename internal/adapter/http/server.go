package http

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health, readiness, metrics and the rendered artifacts.
type Server struct {
	httpServer *http.Server
	artifacts  string
	logger     *slog.Logger
}

// Artifact describes one file in the output directory.
type Artifact struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /artifacts routes. Artifacts are served read-only from artifactsDir.
func NewServer(addr string, ready sharedobs.ReadinessChecker, artifactsDir string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		artifacts: artifactsDir,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /artifacts", s.handleList)
	mux.HandleFunc("GET /artifacts/{name}", s.handleArtifact)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(s.artifacts)
	if errors.Is(err, fs.ErrNotExist) {
		sharedobs.WriteJSON(w, http.StatusOK, []Artifact{})
		return
	}
	if err != nil {
		s.logger.Error("list artifacts", "dir", s.artifacts, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot list artifacts"})
		return
	}

	out := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Artifact{Name: e.Name(), Size: info.Size(), Modified: info.ModTime().UTC()})
	}
	slices.SortFunc(out, func(a, b Artifact) int { return strings.Compare(a.Name, b.Name) })
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !fs.ValidPath(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	if info, err := os.Stat(filepath.Join(s.artifacts, name)); err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, os.DirFS(s.artifacts), name)
}
