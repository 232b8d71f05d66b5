package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/config"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/metrics"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/prompt"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/review"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/session"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/store"
)

// maxChunkBytes caps a single uploaded capture fragment
const maxChunkBytes = 10 << 20

// HTTPServer provides the recording platform HTTP API
type HTTPServer struct {
	server     *http.Server
	logger     *slog.Logger
	config     *config.Config
	sessionMgr *session.Manager
	capture    *session.ChunkCapture
	workflow   *review.Workflow
	store      *store.Store
	pageClient *prompt.Client
	metrics    *metrics.Metrics

	// Server state
	startTime time.Time
	mu        sync.Mutex
	streams   map[string]*session.ChunkStream
	queues    map[string]*prompt.Queue
}

// NewHTTPServer creates the HTTP API server
func NewHTTPServer(logger *slog.Logger, appConfig *config.Config,
	sessionMgr *session.Manager, capture *session.ChunkCapture,
	workflow *review.Workflow, st *store.Store, pageClient *prompt.Client,
	m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:     logger,
		config:     appConfig,
		sessionMgr: sessionMgr,
		capture:    capture,
		workflow:   workflow,
		store:      st,
		pageClient: pageClient,
		metrics:    m,
		startTime:  time.Now(),
		streams:    make(map[string]*session.ChunkStream),
		queues:     make(map[string]*prompt.Queue),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", appConfig.HTTP.Address, appConfig.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Recording session lifecycle
	mux.HandleFunc("/sessions", h.withMetrics("/sessions", h.handleSessions))
	mux.HandleFunc("/sessions/start", h.withMetrics("/sessions/start", h.handleSessionStart))
	mux.HandleFunc("/sessions/chunks", h.withMetrics("/sessions/chunks", h.handleSessionChunks))
	mux.HandleFunc("/sessions/stop", h.withMetrics("/sessions/stop", h.handleSessionStop))
	mux.HandleFunc("/sessions/reset", h.withMetrics("/sessions/reset", h.handleSessionReset))

	// Passage delivery
	mux.HandleFunc("/prompts/current", h.withMetrics("/prompts/current", h.handlePromptCurrent))
	mux.HandleFunc("/prompts/next", h.withMetrics("/prompts/next", h.handlePromptNext))
	mux.HandleFunc("/prompts/skip", h.withMetrics("/prompts/skip", h.handlePromptSkip))

	// Review workflow
	mux.HandleFunc("/recordings/pending", h.withMetrics("/recordings/pending", h.handlePendingRecordings))
	mux.HandleFunc("/recordings/", h.withMetrics("/recordings/{email}", h.handleUserRecordings))
	mux.HandleFunc("/reviews/accept", h.withMetrics("/reviews/accept", h.handleAccept))
	mux.HandleFunc("/reviews/reject", h.withMetrics("/reviews/reject", h.handleReject))

	// Artifact download
	mux.HandleFunc("/artifacts", h.withMetrics("/artifacts", h.handleArtifact))

	// Monitoring and management
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// queueFor returns the user's passage queue, creating it on first use. An
// empty queue is primed on every call, so a failed first load heals as soon
// as the passage source recovers.
func (h *HTTPServer) queueFor(ctx context.Context, email string) (*prompt.Queue, error) {
	h.mu.Lock()
	q, exists := h.queues[email]
	if !exists {
		q = prompt.NewQueue(h.pageClient, h.workflow, h.logger, email,
			h.config.Prompts.PrefetchThreshold)
		h.queues[email] = q
	}
	h.mu.Unlock()

	if !q.Exhausted() && len(q.Available(nil)) == 0 {
		if err := q.LoadNextPage(ctx); err != nil {
			h.metrics.RecordPageLoadError()
			return nil, err
		}
		h.metrics.RecordPageLoad()
	}

	return q, nil
}

// exclusionFor loads the user's combined accepted+skipped transcript set
func (h *HTTPServer) exclusionFor(email string) (map[string]struct{}, error) {
	record, err := h.store.Load(email)
	if err != nil {
		return nil, err
	}
	return record.ExclusionSet(), nil
}

func emailParam(r *http.Request) (string, error) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		return "", fmt.Errorf("email parameter required")
	}
	return email, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleSessions implements GET /sessions
func (h *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	infos := h.sessionMgr.Sessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_sessions": len(infos),
		"timestamp":      time.Now().UTC(),
		"sessions":       infos,
	})
}

// handleSessionStart implements POST /sessions/start. The passage recorded
// is whatever the user's queue currently points at.
func (h *HTTPServer) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.queueFor(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("passage source unavailable: %v", err))
		return
	}

	exclusion, err := h.exclusionFor(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	passage, passageIndex, ok := q.Current(exclusion)
	if !ok {
		writeError(w, http.StatusConflict, "no passage available to record")
		return
	}

	// Offer and acquire under one lock so concurrent starts cannot cross
	// streams between users.
	stream := session.NewChunkStream(256)
	h.mu.Lock()
	h.capture.Offer(stream)
	sess, err := h.sessionMgr.StartSession(r.Context(), email, passage, passageIndex)
	if err == nil {
		h.streams[email] = stream
	}
	h.mu.Unlock()

	if err != nil {
		var validationErr *session.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusUnprocessableEntity, validationErr.Error())
		case errors.Is(err, session.ErrSessionActive):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.metrics.RecordSessionFailed()
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.metrics.RecordSessionStarted()
	h.metrics.SetActiveSessions(h.sessionMgr.ActiveCount())

	writeJSON(w, http.StatusCreated, sess.Info())
}

// handleSessionChunks implements POST /sessions/chunks: one capture
// fragment per request, raw bytes in the body.
func (h *HTTPServer) handleSessionChunks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	stream, ok := h.streams[email]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no live capture stream for user")
		return
	}

	chunk, err := io.ReadAll(io.LimitReader(r.Body, maxChunkBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read chunk body")
		return
	}
	if len(chunk) == 0 {
		writeError(w, http.StatusBadRequest, "empty chunk")
		return
	}

	if err := stream.Push(chunk); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleSessionStop implements POST /sessions/stop
func (h *HTTPServer) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, ok := h.sessionMgr.Get(email)
	if !ok {
		writeError(w, http.StatusNotFound, "no session for user")
		return
	}

	stopStart := time.Now()
	stopErr := sess.Stop()

	h.mu.Lock()
	delete(h.streams, email)
	h.mu.Unlock()
	h.metrics.SetActiveSessions(h.sessionMgr.ActiveCount())

	if stopErr != nil {
		h.metrics.RecordSessionFailed()
		h.logger.Error("Session stop failed",
			slog.String("user", email),
			slog.String("error", stopErr.Error()),
		)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"session": sess.Info(),
			"error":   stopErr.Error(),
		})
		return
	}

	if artifact, ready := sess.Artifact(); ready {
		h.metrics.RecordSessionCompleted(time.Since(stopStart).Seconds(),
			artifact.DurationSeconds, len(artifact.Data))
	}

	writeJSON(w, http.StatusOK, sess.Info())
}

// handleSessionReset implements POST /sessions/reset
func (h *HTTPServer) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed := h.sessionMgr.Remove(email)

	h.mu.Lock()
	delete(h.streams, email)
	h.mu.Unlock()
	h.metrics.SetActiveSessions(h.sessionMgr.ActiveCount())

	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// handlePromptCurrent implements GET /prompts/current
func (h *HTTPServer) handlePromptCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.queueFor(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("passage source unavailable: %v", err))
		return
	}

	exclusion, err := h.exclusionFor(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	passage, index, ok := q.Current(exclusion)
	writeJSON(w, http.StatusOK, map[string]any{
		"passage":   passage,
		"index":     index,
		"available": ok,
		"drained":   q.Drained(exclusion),
		"exhausted": q.Exhausted(),
	})
}

// handlePromptNext implements POST /prompts/next
func (h *HTTPServer) handlePromptNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.queueFor(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("passage source unavailable: %v", err))
		return
	}

	exclusion, err := h.exclusionFor(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	q.Next(r.Context(), exclusion)
	h.metrics.RecordPassageServed()

	passage, index, ok := q.Current(exclusion)
	writeJSON(w, http.StatusOK, map[string]any{
		"passage":   passage,
		"index":     index,
		"available": ok,
		"drained":   q.Drained(exclusion),
	})
}

// handlePromptSkip implements POST /prompts/skip
func (h *HTTPServer) handlePromptSkip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.queueFor(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("passage source unavailable: %v", err))
		return
	}

	exclusion, err := h.exclusionFor(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := q.Skip(exclusion); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	h.metrics.RecordPassageSkipped()

	// Recompute with the fresh exclusion set so the response reflects
	// the passage now facing the user.
	exclusion, err = h.exclusionFor(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	passage, index, ok := q.Current(exclusion)
	writeJSON(w, http.StatusOK, map[string]any{
		"passage":   passage,
		"index":     index,
		"available": ok,
		"drained":   q.Drained(exclusion),
	})
}

// handlePendingRecordings implements GET /recordings/pending
func (h *HTTPServer) handlePendingRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pending, err := h.workflow.Pending()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_pending": len(pending),
		"timestamp":     time.Now().UTC(),
		"recordings":    pending,
	})
}

// handleUserRecordings implements GET /recordings/{email}
func (h *HTTPServer) handleUserRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimPrefix(r.URL.Path, "/recordings/")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email required in path")
		return
	}

	record, err := h.store.Load(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleAccept implements POST /reviews/accept
func (h *HTTPServer) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, h.workflow.Accept, h.metrics.RecordReviewAccepted)
}

// handleReject implements POST /reviews/reject
func (h *HTTPServer) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, h.workflow.Reject, h.metrics.RecordReviewRejected)
}

func (h *HTTPServer) handleDecision(w http.ResponseWriter, r *http.Request,
	decide func(recorder, recordingID string) error, record func()) {

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Recorder    string `json:"recorder"`
		RecordingID string `json:"recording_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Recorder == "" || req.RecordingID == "" {
		writeError(w, http.StatusBadRequest, "recorder and recording_id required")
		return
	}

	if err := decide(req.Recorder, req.RecordingID); err != nil {
		if errors.Is(err, review.ErrRecordingNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	record()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleArtifact implements GET /artifacts?email=...&id=...
func (h *HTTPServer) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recordingID := r.URL.Query().Get("id")
	if recordingID == "" {
		writeError(w, http.StatusBadRequest, "id parameter required")
		return
	}

	record, err := h.store.Load(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, rec := range record.Recordings {
		if rec.Metadata.ID != recordingID {
			continue
		}
		data, err := h.store.ReadArtifact(rec.ArtifactPath)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", rec.Metadata.Audio.FileName))
		w.Write(data)
		return
	}

	writeError(w, http.StatusNotFound, "recording not found")
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)
	pageStats := h.pageClient.GetStats()
	reviewStats := h.workflow.GetStats()

	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]any{
			"name":    "audio-recording-platform",
			"version": "1.0.0",
		},
		"components": map[string]any{
			"session_manager": map[string]any{
				"status":          "running",
				"active_sessions": h.sessionMgr.ActiveCount(),
			},
			"passage_source": map[string]any{
				"status":          "running",
				"total_requests":  pageStats.TotalRequests,
				"failed_requests": pageStats.FailedRequests,
				"pages_loaded":    pageStats.PagesLoaded,
			},
			"review": map[string]any{
				"status":   "running",
				"accepted": reviewStats.Accepted,
				"rejected": reviewStats.Rejected,
			},
		},
	}

	writeJSON(w, http.StatusOK, health)
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sanitizedConfig := map[string]any{
		"http": map[string]any{
			"port":    h.config.HTTP.Port,
			"address": h.config.HTTP.Address,
		},
		"audio": map[string]any{
			"target_sample_rate":     h.config.Audio.TargetSampleRate,
			"bit_depth":              h.config.Audio.BitDepth,
			"max_recording_duration": h.config.Audio.MaxRecordingDuration,
		},
		"prompts": map[string]any{
			"base_url":           h.config.Prompts.BaseURL,
			"timeout":            h.config.Prompts.Timeout,
			"prefetch_threshold": h.config.Prompts.PrefetchThreshold,
		},
		"storage": map[string]any{
			"database_path": h.config.Storage.DatabasePath,
			"artifacts_dir": h.config.Storage.ArtifactsDir,
		},
		"logging": map[string]any{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	writeJSON(w, http.StatusOK, sanitizedConfig)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	queueStats := make([]prompt.QueueStats, 0, len(h.queues))
	for _, q := range h.queues {
		queueStats = append(queueStats, q.Stats())
	}
	h.mu.Unlock()

	stats := map[string]any{
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC(),
		"sessions": map[string]any{
			"active_count": h.sessionMgr.ActiveCount(),
		},
		"passage_source": h.pageClient.GetStats(),
		"queues":         queueStats,
		"review":         h.workflow.GetStats(),
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]any{
		"service": "Audio Recording Platform",
		"version": "1.0.0",
		"endpoints": map[string]any{
			"GET /":                        "API documentation",
			"GET /health":                  "Service health check",
			"GET /config":                  "Get service configuration",
			"GET /stats":                   "Get service statistics",
			"GET /metrics":                 "Prometheus metrics",
			"GET /sessions":                "List recording sessions",
			"POST /sessions/start":         "Start a recording session (email param)",
			"POST /sessions/chunks":        "Upload a capture fragment (email param, raw body)",
			"POST /sessions/stop":          "Stop a recording session (email param)",
			"POST /sessions/reset":         "Discard a recording session (email param)",
			"GET /prompts/current":         "Current passage for a user (email param)",
			"POST /prompts/next":           "Advance to the next passage (email param)",
			"POST /prompts/skip":           "Skip the current passage (email param)",
			"GET /recordings/pending":      "All recordings awaiting review",
			"GET /recordings/{email}":      "A user's record and recordings",
			"POST /reviews/accept":         "Accept a recording",
			"POST /reviews/reject":         "Reject a recording",
			"GET /artifacts?email=...&id=": "Download a recording artifact",
		},
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, apiDoc)
}
