package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/audio"
	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/store"
)

// State is the recording session lifecycle state
type State int

const (
	StateIdle State = iota
	StateAwaitingPermission
	StateCapturing
	StateStopping
	StateEncoding
	StateReady
	StateError
)

// String returns the lowercase state name used in logs and API responses
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPermission:
		return "awaiting_permission"
	case StateCapturing:
		return "capturing"
	case StateStopping:
		return "stopping"
	case StateEncoding:
		return "encoding"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether the session has finished, successfully or not
func (s State) Terminal() bool {
	return s == StateReady || s == StateError
}

// StopReason records what ended the capture phase
type StopReason string

const (
	StopReasonNone     StopReason = ""
	StopReasonManual   StopReason = "manual"
	StopReasonDeadline StopReason = "deadline"
)

// ValidationError reports an incomplete speaker profile. A session refused
// for validation never touches the capture device.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("speaker profile incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// MicrophoneAccessError wraps a failed capture acquisition
type MicrophoneAccessError struct {
	Err error
}

func (e *MicrophoneAccessError) Error() string {
	return fmt.Sprintf("microphone access failed: %v", e.Err)
}

func (e *MicrophoneAccessError) Unwrap() error { return e.Err }

// Repository persists finished recordings and their owning user records.
// *store.Store satisfies it.
type Repository interface {
	Load(email string) (*store.UserRecord, error)
	Save(email string, record *store.UserRecord) error
	WriteArtifact(recordingID string, data []byte) (string, error)
	WriteMetadata(meta store.RecordingMetadata) (string, error)
}

// Config contains per-session settings
type Config struct {
	// MaxDuration is the hard capture ceiling. The session stops itself
	// when it elapses, exactly as if the user had pressed stop.
	MaxDuration time.Duration
}

// Session drives one recording attempt through its lifecycle:
//
//	Idle -> AwaitingPermission -> Capturing -> Stopping -> Encoding -> Ready
//
// with Error reachable from every phase that touches the device or the
// pipeline. The stop transition runs exactly once regardless of how many
// triggers race (manual stop, the duration ceiling, manager shutdown); a
// stop that arrives before capture has begun is refused and leaves the
// transition armed.
type Session struct {
	User         string
	Passage      string
	PassageIndex int
	Speaker      store.SpeakerInfo
	StartedAt    time.Time

	capture    Capture
	normalizer *audio.Normalizer
	repo       Repository
	logger     *slog.Logger
	config     Config

	mu         sync.RWMutex
	state      State
	stopReason StopReason
	err        error
	stream     Stream
	buffer     *audio.CaptureBuffer
	timer      *time.Timer
	artifact   *audio.Artifact
	metadata   *store.RecordingMetadata

	captureDone chan struct{}
	done        chan struct{}
}

// New creates an idle session for one user and passage
func New(user, passage string, passageIndex int, speaker store.SpeakerInfo,
	capture Capture, normalizer *audio.Normalizer, repo Repository,
	logger *slog.Logger, config Config) *Session {

	return &Session{
		User:         user,
		Passage:      passage,
		PassageIndex: passageIndex,
		Speaker:      speaker,
		capture:      capture,
		normalizer:   normalizer,
		repo:         repo,
		logger:       logger,
		config:       config,
		state:        StateIdle,
		buffer:       audio.NewCaptureBuffer(),
		captureDone:  make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start validates the speaker profile, acquires the capture stream and
// begins consuming chunks. On a ValidationError the session stays Idle and
// no device request is made; on an acquisition failure it moves to Error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot start session in state %s", state)
	}

	if missing := missingProfileFields(s.Speaker); len(missing) > 0 {
		s.mu.Unlock()
		return &ValidationError{Missing: missing}
	}

	s.state = StateAwaitingPermission
	s.mu.Unlock()

	stream, err := s.capture.RequestStream(ctx)
	if err != nil {
		accessErr := &MicrophoneAccessError{Err: err}
		s.fail(accessErr)
		s.logger.Warn("Capture acquisition failed",
			slog.String("user", s.User),
			slog.String("error", err.Error()),
		)
		return accessErr
	}

	if err := stream.Start(); err != nil {
		accessErr := &MicrophoneAccessError{Err: err}
		s.fail(accessErr)
		return accessErr
	}

	s.mu.Lock()
	s.state = StateCapturing
	s.stream = stream
	s.StartedAt = time.Now()
	s.timer = time.AfterFunc(s.config.MaxDuration, func() {
		if err := s.finish(StopReasonDeadline); err != nil {
			s.logger.Error("Deadline stop failed",
				slog.String("user", s.User),
				slog.String("error", err.Error()),
			)
		}
	})
	s.mu.Unlock()

	go s.consume(stream)

	s.logger.Info("Recording session started",
		slog.String("user", s.User),
		slog.Int("passage_index", s.PassageIndex),
		slog.Duration("max_duration", s.config.MaxDuration),
	)

	return nil
}

// consume drains the capture stream into the session buffer. A stream that
// ends while the session is still capturing means the producer died.
func (s *Session) consume(stream Stream) {
	defer close(s.captureDone)

	for chunk := range stream.Chunks() {
		s.buffer.AddChunk(chunk)
	}

	s.captureLost(stream)
}

// captureLost handles the chunk channel closing underneath a capturing
// session. During a normal stop the state has already left Capturing by the
// time the channel closes, so this is a no-op there.
func (s *Session) captureLost(stream Stream) {
	s.mu.Lock()
	if s.state != StateCapturing {
		s.mu.Unlock()
		return
	}
	err := stream.Failure()
	if err == nil {
		err = fmt.Errorf("capture stream ended unexpectedly")
	}
	s.state = StateError
	s.err = err
	s.stream = nil
	timer := s.timer
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	close(s.done)

	s.logger.Error("Capture lost",
		slog.String("user", s.User),
		slog.String("error", err.Error()),
	)
}

// Stop ends the capture manually. The first stop trigger wins; later calls
// return the outcome of that first transition.
func (s *Session) Stop() error {
	return s.finish(StopReasonManual)
}

// finish performs the stop transition. Only the trigger that finds the
// session capturing runs the teardown; triggers racing or trailing it see
// its outcome. A stop before capture has begun is refused without consuming
// the transition, so a later trigger still works.
func (s *Session) finish(reason StopReason) error {
	s.mu.Lock()
	switch s.state {
	case StateCapturing:
		s.state = StateStopping
		s.stopReason = reason
		stream := s.stream
		s.stream = nil
		timer := s.timer
		s.mu.Unlock()
		return s.teardown(stream, timer, reason)
	case StateStopping, StateEncoding, StateReady:
		s.mu.Unlock()
		return nil
	case StateError:
		err := s.err
		s.mu.Unlock()
		return err
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot stop session in state %s", state)
	}
}

// teardown releases the stream, drains the remaining chunks, then encodes
// and persists. It runs exactly once, on whichever trigger moved the
// session out of Capturing.
func (s *Session) teardown(stream Stream, timer *time.Timer, reason StopReason) error {
	defer close(s.done)

	if timer != nil {
		timer.Stop()
	}

	// Releasing the stream closes its chunk channel, which ends the
	// consume goroutine once the queued fragments are drained.
	if err := stream.Stop(); err != nil {
		s.logger.Warn("Stream release failed",
			slog.String("user", s.User),
			slog.String("error", err.Error()),
		)
	}
	<-s.captureDone

	s.mu.Lock()
	s.state = StateEncoding
	s.mu.Unlock()

	s.logger.Info("Capture stopped",
		slog.String("user", s.User),
		slog.String("reason", string(reason)),
		slog.Int("chunks", s.buffer.ChunkCount()),
		slog.Int("bytes", s.buffer.Size()),
	)

	return s.encode()
}

// encode runs the normalization pipeline over the captured blob and persists
// the artifact, sidecar metadata and updated user record.
func (s *Session) encode() error {
	blob := s.buffer.Concatenate()

	encodeStart := time.Now()
	artifact, err := s.normalizer.Normalize(context.Background(), blob)
	if err != nil {
		s.fail(err)
		s.logger.Error("Normalization failed",
			slog.String("user", s.User),
			slog.Int("blob_bytes", len(blob)),
			slog.String("error", err.Error()),
		)
		return err
	}

	speakerID := s.Speaker.ID
	if speakerID == "" {
		speakerID = "speaker"
	}
	recordingID := fmt.Sprintf("%s_p%d_%d", speakerID, s.PassageIndex, time.Now().UnixMilli())

	meta := store.RecordingMetadata{
		ID: recordingID,
		Speaker: store.SpeakerMetadata{
			ID:           s.Speaker.ID,
			PlaceOfBirth: s.Speaker.PlaceOfBirth,
			Gender:       s.Speaker.Gender,
			Age:          s.Speaker.Age,
		},
		Audio: store.AudioInfo{
			FileName:        recordingID + ".wav",
			SampleRate:      artifact.SampleRate,
			BitDepth:        artifact.BitDepth,
			Channels:        "Mono",
			DurationSeconds: artifact.DurationSeconds,
		},
		Transcript: s.Passage,
	}

	artifactPath, err := s.repo.WriteArtifact(recordingID, artifact.Data)
	if err != nil {
		s.fail(fmt.Errorf("write artifact: %w", err))
		return s.Err()
	}

	if _, err := s.repo.WriteMetadata(meta); err != nil {
		s.fail(fmt.Errorf("write metadata: %w", err))
		return s.Err()
	}

	record, err := s.repo.Load(s.User)
	if err != nil {
		s.fail(fmt.Errorf("load user record: %w", err))
		return s.Err()
	}
	record.Recordings = append(record.Recordings, store.ReviewableRecording{
		Metadata:      meta,
		ArtifactPath:  artifactPath,
		Status:        store.StatusPending,
		RecorderEmail: s.User,
	})
	record.RecordingsCount++
	if err := s.repo.Save(s.User, record); err != nil {
		s.fail(fmt.Errorf("save user record: %w", err))
		return s.Err()
	}

	s.mu.Lock()
	s.state = StateReady
	s.artifact = artifact
	s.metadata = &meta
	s.mu.Unlock()

	s.logger.Info("Recording ready for review",
		slog.String("user", s.User),
		slog.String("recording_id", recordingID),
		slog.Float64("duration_seconds", artifact.DurationSeconds),
		slog.Int("artifact_bytes", len(artifact.Data)),
		slog.Duration("encode_time", time.Since(encodeStart)),
	)

	return nil
}

// fail moves the session to the Error terminal state
func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.err = err
	s.mu.Unlock()
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// StopReason returns what ended the capture, if it has ended
func (s *Session) StopReason() StopReason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopReason
}

// Err returns the terminal error for sessions in the Error state
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Artifact returns the normalized recording once the session is Ready
func (s *Session) Artifact() (*audio.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifact, s.state == StateReady
}

// Metadata returns the recording metadata once the session is Ready
func (s *Session) Metadata() (*store.RecordingMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, false
	}
	return s.metadata, true
}

// Done is closed when the stop transition has fully completed
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Info returns a monitoring snapshot
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{
		User:         s.User,
		PassageIndex: s.PassageIndex,
		State:        s.state.String(),
		StopReason:   string(s.stopReason),
		StartedAt:    s.StartedAt,
		Chunks:       s.buffer.ChunkCount(),
		CapturedSize: s.buffer.Size(),
	}
	if s.err != nil {
		info.Error = s.err.Error()
	}
	if s.artifact != nil {
		info.DurationSeconds = s.artifact.DurationSeconds
	}
	return info
}

// Info represents session state for monitoring and APIs
type Info struct {
	User            string    `json:"user"`
	PassageIndex    int       `json:"passage_index"`
	State           string    `json:"state"`
	StopReason      string    `json:"stop_reason,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	Chunks          int       `json:"chunks"`
	CapturedSize    int       `json:"captured_size"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Error           string    `json:"error,omitempty"`
}

func missingProfileFields(info store.SpeakerInfo) []string {
	var missing []string
	if strings.TrimSpace(info.ID) == "" {
		missing = append(missing, "speaker_id")
	}
	if strings.TrimSpace(info.PlaceOfBirth) == "" {
		missing = append(missing, "place_of_birth")
	}
	if info.Age <= 0 {
		missing = append(missing, "age")
	}
	return missing
}
