package api

import (
	"encoding/json"
	"net/http"
	"time"

	"encore/database"
	"encore/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Server exposes the operator surface: health, manual stream-update
// trigger, run status and trigger history. Admin endpoints require a
// bearer token matching the configured bcrypt hash.
type Server struct {
	db             *database.DB
	streamUpdates  service.StreamUpdateService
	auditRepo      service.AuditLogRepository
	adminTokenHash string
	mux            *chi.Mux
}

// New creates a new API server
func New(db *database.DB, streamUpdates service.StreamUpdateService, auditRepo service.AuditLogRepository, adminTokenHash string) *Server {
	s := &Server{
		db:             db,
		streamUpdates:  streamUpdates,
		auditRepo:      auditRepo,
		adminTokenHash: adminTokenHash,
		mux:            chi.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Get("/healthz", s.handleHealth)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminMiddleware)
		r.Post("/stream-update", s.handleStreamUpdate)
		r.Get("/stream-update/status", s.handleStreamUpdateStatus)
		r.Get("/stream-update/history", s.handleStreamUpdateHistory)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// adminMiddleware resolves the caller to admin or not. The token is
// compared against a bcrypt hash so the plaintext never lives in config.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if s.adminTokenHash == "" {
			writeError(w, http.StatusForbidden, "admin access is not configured")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.adminTokenHash), []byte(token)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStreamUpdate(w http.ResponseWriter, r *http.Request) {
	var opts service.ManualRunOptions
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if opts.MaxBatches < 0 || opts.BatchSize < 0 {
		writeError(w, http.StatusBadRequest, "maxBatches and batchSize must be positive")
		return
	}

	log.WithFields(log.Fields{
		"max_batches": opts.MaxBatches,
		"batch_size":  opts.BatchSize,
		"reset":       opts.Reset,
	}).Info("Manual stream update triggered")

	summary := s.streamUpdates.RunManual(r.Context(), opts)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStreamUpdateStatus(w http.ResponseWriter, r *http.Request) {
	run, err := s.streamUpdates.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read run status")
		return
	}
	if run == nil {
		writeJSON(w, http.StatusOK, map[string]any{"run": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runId":          run.RunID,
		"runDate":        run.RunDate,
		"processing":     run.Processing,
		"lockedAt":       run.LockedAt,
		"lastArtistId":   run.LastArtistID,
		"processedCount": run.ProcessedCount,
		"skippedCount":   run.SkippedCount,
		"errorCount":     run.ErrorCount,
		"completed":      run.Completed,
		"lastError":      run.LastError,
	})
}

func (s *Server) handleStreamUpdateHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.auditRepo.ListRecent(r.Context(), "stream_update", 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read audit history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
