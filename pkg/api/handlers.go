package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fagerli/flagstore/pkg/store"
)

// Server holds the API server state
type Server struct {
	reader  FlagReader
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(reader FlagReader, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		reader:  reader,
		config:  config,
		metrics: metrics,
	}
}

// handleHealth reports service liveness and the loaded container.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{
		"status":    "healthy",
		"container": s.reader.Container(),
	})
}

// handleGetPackage resolves a package name to its id and boolean offset.
func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		sendError(w, "Package name is required", http.StatusBadRequest)
		return
	}

	info, err := s.reader.GetPackage(name)
	if err != nil {
		if errors.Is(err, store.ErrPackageNotFound) {
			s.metrics.RecordLookup("package", false)
			sendError(w, "Package not found", http.StatusNotFound)
			return
		}
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordLookup("package", true)
	sendSuccess(w, info)
}

// handleGetFlag resolves a flag to its metadata and current value.
func (s *Server) handleGetFlag(w http.ResponseWriter, r *http.Request) {
	pkg := chi.URLParam(r, "package")
	flag := chi.URLParam(r, "flag")
	if pkg == "" || flag == "" {
		sendError(w, "Package and flag names are required", http.StatusBadRequest)
		return
	}

	info, err := s.reader.GetFlag(pkg, flag)
	if err != nil {
		if errors.Is(err, store.ErrPackageNotFound) || errors.Is(err, store.ErrFlagNotFound) {
			s.metrics.RecordLookup("flag", false)
			sendError(w, "Flag not found", http.StatusNotFound)
			return
		}
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordLookup("flag", true)
	sendSuccess(w, info)
}

// handleStats summarizes the loaded tables.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.reader.Stats()
	s.metrics.UpdateTableStats(stats.NumPackages, stats.NumFlags)
	sendSuccess(w, stats)
}
