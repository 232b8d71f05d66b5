package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/audio"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/config"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/metrics"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/prompt"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/review"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/session"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/store"
)

// promauto registers against the default registry, so the package shares
// one Metrics instance across tests.
var testMetrics = metrics.NewMetrics()

func newTestServer(t *testing.T, sourceURL string) *HTTPServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	pageClient, err := prompt.NewClient(prompt.ClientConfig{BaseURL: sourceURL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	cfg := &config.Config{
		HTTP:    config.HTTPConfig{Port: 8080, Address: "127.0.0.1"},
		Audio:   config.AudioConfig{TargetSampleRate: 44100, BitDepth: 16, MaxRecordingDuration: 70},
		Prompts: config.PromptsConfig{BaseURL: sourceURL, Timeout: 1, PrefetchThreshold: 5},
	}

	capture := session.NewChunkCapture()
	normalizer := audio.NewNormalizer(audio.NewFFmpegDecoder(""), 44100, 16)
	sessionMgr := session.NewManager(logger, capture, normalizer, st,
		session.ManagerConfig{MaxDuration: time.Minute})
	t.Cleanup(sessionMgr.Stop)

	workflow := review.NewWorkflow(st, logger)

	return NewHTTPServer(logger, cfg, sessionMgr, capture, workflow, st, pageClient, testMetrics)
}

func TestQueueForRetriesFailedPrime(t *testing.T) {
	var healthy atomic.Bool
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.URL.Path == "/user-1.json" {
			json.NewEncoder(w).Encode([]string{"a passage to read"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer source.Close()

	h := newTestServer(t, source.URL)
	ctx := context.Background()

	if _, err := h.queueFor(ctx, "user@example.com"); err == nil {
		t.Fatal("Expected prime against a failing source to error")
	}

	// The cached queue must re-prime once the source recovers
	healthy.Store(true)
	q, err := h.queueFor(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("Expected the cached queue to re-prime, got %v", err)
	}
	if got := len(q.Available(nil)); got != 1 {
		t.Fatalf("Expected 1 passage after source recovery, got %d", got)
	}
}
