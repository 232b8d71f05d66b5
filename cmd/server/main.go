package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/audio"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/config"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/metrics"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/prompt"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/review"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/server"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/session"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/store"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "audio-recording-platform"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary
	logger.Info("Configuration loaded",
		slog.Int("http_port", cfg.HTTP.Port),
		slog.String("http_address", cfg.HTTP.Address),
		slog.Int("target_sample_rate", cfg.Audio.TargetSampleRate),
		slog.Int("bit_depth", cfg.Audio.BitDepth),
		slog.Int("max_recording_duration", cfg.Audio.MaxRecordingDuration),
		slog.String("prompts_base_url", cfg.Prompts.BaseURL),
		slog.String("database_path", cfg.Storage.DatabasePath),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Open the persistence layer
	st, err := store.Open(cfg.Storage.DatabasePath, cfg.Storage.ArtifactsDir)
	if err != nil {
		logger.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("Store opened",
		slog.String("database_path", cfg.Storage.DatabasePath),
		slog.String("artifacts_dir", cfg.Storage.ArtifactsDir),
	)

	// Initialize paragraph source client
	pageClient, err := prompt.NewClient(prompt.ClientConfig{
		BaseURL: cfg.Prompts.BaseURL,
		Timeout: cfg.Prompts.GetTimeoutDuration(),
	})
	if err != nil {
		logger.Error("Failed to create passage source client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the normalization pipeline
	decoder := audio.NewFFmpegDecoder(cfg.Audio.FFmpegTempDir)
	normalizer := audio.NewNormalizer(decoder, cfg.Audio.TargetSampleRate, cfg.Audio.BitDepth)
	logger.Info("Normalization pipeline initialized",
		slog.Int("target_sample_rate", cfg.Audio.TargetSampleRate),
		slog.Int("bit_depth", cfg.Audio.BitDepth),
	)

	// Initialize review workflow
	workflow := review.NewWorkflow(st, logger)

	// Initialize session manager
	capture := session.NewChunkCapture()
	sessionMgr := session.NewManager(logger, capture, normalizer, st, session.ManagerConfig{
		MaxDuration: cfg.Audio.GetMaxRecordingDuration(),
	})
	logger.Info("Session manager initialized",
		slog.Duration("max_recording_duration", cfg.Audio.GetMaxRecordingDuration()),
	)

	// Initialize and start HTTP API server
	httpServer := server.NewHTTPServer(logger, cfg, sessionMgr, capture, workflow, st, pageClient, appMetrics)
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	// Stop session manager (finish live captures and stop background routines)
	sessionMgr.Stop()

	// Log final statistics
	pageStats := pageClient.GetStats()
	reviewStats := workflow.GetStats()
	logger.Info("Final service statistics",
		slog.Uint64("page_requests", pageStats.TotalRequests),
		slog.Uint64("pages_loaded", pageStats.PagesLoaded),
		slog.Uint64("reviews_accepted", reviewStats.Accepted),
		slog.Uint64("reviews_rejected", reviewStats.Rejected),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
