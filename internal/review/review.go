package review

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/store"
)

// ErrRecordingNotFound is returned when the recording id does not exist in
// the recorder's record.
var ErrRecordingNotFound = fmt.Errorf("recording not found")

// Repository is the persistence surface the workflow needs. *store.Store
// satisfies it.
type Repository interface {
	Load(email string) (*store.UserRecord, error)
	Save(email string, record *store.UserRecord) error
	Users() ([]string, error)
}

// Workflow applies review decisions to recorded submissions. Decisions are
// serialized through one mutex so a load-modify-save never interleaves with
// another write to the same record.
type Workflow struct {
	repo   Repository
	logger *slog.Logger

	mu sync.Mutex

	// Statistics
	accepted uint64
	rejected uint64
	skips    uint64
}

// Stats represents workflow statistics for monitoring
type Stats struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
	Skips    uint64 `json:"skips"`
}

// NewWorkflow creates a review workflow over the given repository
func NewWorkflow(repo Repository, logger *slog.Logger) *Workflow {
	return &Workflow{repo: repo, logger: logger}
}

// Accept marks a recording accepted and adds its transcript to the
// recorder's accepted exclusion set. Accepting an already accepted
// recording changes nothing.
func (w *Workflow) Accept(recorder, recordingID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	record, err := w.repo.Load(recorder)
	if err != nil {
		return fmt.Errorf("load recorder record: %w", err)
	}

	idx := findRecording(record.Recordings, recordingID)
	if idx < 0 {
		return ErrRecordingNotFound
	}

	record.Recordings[idx].Status = store.StatusAccepted

	transcript := strings.TrimSpace(record.Recordings[idx].Metadata.Transcript)
	if !containsTrimmed(record.AcceptedTranscripts, transcript) {
		record.AcceptedTranscripts = append(record.AcceptedTranscripts, transcript)
	}

	if err := w.repo.Save(recorder, record); err != nil {
		return fmt.Errorf("save recorder record: %w", err)
	}

	w.accepted++
	w.logger.Info("Recording accepted",
		slog.String("recorder", recorder),
		slog.String("recording_id", recordingID),
	)

	return nil
}

// Reject removes a recording entirely and decrements the recorder's
// recording count. The rejected passage stays eligible for a fresh attempt,
// so the exclusion sets are untouched.
func (w *Workflow) Reject(recorder, recordingID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	record, err := w.repo.Load(recorder)
	if err != nil {
		return fmt.Errorf("load recorder record: %w", err)
	}

	idx := findRecording(record.Recordings, recordingID)
	if idx < 0 {
		return ErrRecordingNotFound
	}

	record.Recordings = append(record.Recordings[:idx], record.Recordings[idx+1:]...)
	if record.RecordingsCount > 0 {
		record.RecordingsCount--
	}

	if err := w.repo.Save(recorder, record); err != nil {
		return fmt.Errorf("save recorder record: %w", err)
	}

	w.rejected++
	w.logger.Info("Recording rejected",
		slog.String("recorder", recorder),
		slog.String("recording_id", recordingID),
	)

	return nil
}

// RecordSkip adds a passage to the user's skipped exclusion set. Set
// semantics: skipping the same passage twice changes nothing.
func (w *Workflow) RecordSkip(user, transcript string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	record, err := w.repo.Load(user)
	if err != nil {
		return fmt.Errorf("load user record: %w", err)
	}

	transcript = strings.TrimSpace(transcript)
	if containsTrimmed(record.SkippedTranscripts, transcript) {
		return nil
	}

	record.SkippedTranscripts = append(record.SkippedTranscripts, transcript)
	if err := w.repo.Save(user, record); err != nil {
		return fmt.Errorf("save user record: %w", err)
	}

	w.skips++
	w.logger.Debug("Passage skipped",
		slog.String("user", user),
	)

	return nil
}

// Pending lists every recording still awaiting a decision, across all users
func (w *Workflow) Pending() ([]store.ReviewableRecording, error) {
	users, err := w.repo.Users()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var pending []store.ReviewableRecording
	for _, user := range users {
		record, err := w.repo.Load(user)
		if err != nil {
			return nil, fmt.Errorf("load record for %s: %w", user, err)
		}
		for _, rec := range record.Recordings {
			if rec.Status == store.StatusPending {
				pending = append(pending, rec)
			}
		}
	}

	return pending, nil
}

// GetStats returns decision counters
func (w *Workflow) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Stats{
		Accepted: w.accepted,
		Rejected: w.rejected,
		Skips:    w.skips,
	}
}

func findRecording(recordings []store.ReviewableRecording, id string) int {
	for i, rec := range recordings {
		if rec.Metadata.ID == id {
			return i
		}
	}
	return -1
}

func containsTrimmed(list []string, transcript string) bool {
	for _, t := range list {
		if strings.TrimSpace(t) == transcript {
			return true
		}
	}
	return false
}
