package store

import (
	"encoding/json"
	"strings"
)

// Recording review states. Rejected recordings are deleted outright, so no
// rejected state is ever persisted.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// User roles carried on the persisted record
const (
	RoleRecorder = "recorder"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// SpeakerInfo is the speaker profile a recorder fills in before capturing
type SpeakerInfo struct {
	ID           string `json:"id"`
	PlaceOfBirth string `json:"placeOfBirth"`
	Gender       string `json:"gender"`
	Age          int    `json:"age"`
}

// Complete reports whether all required profile fields are filled in
func (s SpeakerInfo) Complete() bool {
	return s.ID != "" && s.PlaceOfBirth != "" && s.Age > 0
}

// AudioInfo describes the normalized audio artifact of a recording
type AudioInfo struct {
	FileName        string  `json:"fileName"`
	SampleRate      int     `json:"sampleRate"`
	BitDepth        int     `json:"bitDepth"`
	Channels        string  `json:"channels"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// SpeakerMetadata is the speaker snapshot embedded in recording metadata
type SpeakerMetadata struct {
	ID           string `json:"id"`
	PlaceOfBirth string `json:"place_of_birth"`
	Gender       string `json:"gender"`
	Age          int    `json:"age"`
}

// RecordingMetadata is the labeled-dataset record for one recording
type RecordingMetadata struct {
	ID         string          `json:"id"`
	Speaker    SpeakerMetadata `json:"speaker"`
	Audio      AudioInfo       `json:"audio"`
	Transcript string          `json:"transcript"`
}

// MarshalPretty renders the metadata as a standalone pretty-printed JSON
// document, the sidecar emitted next to the audio artifact.
func (m RecordingMetadata) MarshalPretty() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ReviewableRecording is a recording awaiting or past review
type ReviewableRecording struct {
	Metadata      RecordingMetadata `json:"metadata"`
	ArtifactPath  string            `json:"artifactPath"`
	Status        string            `json:"status"`
	RecorderEmail string            `json:"recorderEmail"`
}

// UserRecord is the wholesale per-user persisted record, read and written
// as one unit on every mutation.
type UserRecord struct {
	Role                string                `json:"role"`
	RecordingsCount     int                   `json:"recordingsCount"`
	SpeakerInfo         SpeakerInfo           `json:"speakerInfo"`
	Recordings          []ReviewableRecording `json:"recordings"`
	AcceptedTranscripts []string              `json:"acceptedTranscripts"`
	SkippedTranscripts  []string              `json:"skippedTranscripts"`
}

// NewUserRecord returns the zero record assigned to a first-time user
func NewUserRecord() *UserRecord {
	return &UserRecord{
		Role:                RoleRecorder,
		Recordings:          []ReviewableRecording{},
		AcceptedTranscripts: []string{},
		SkippedTranscripts:  []string{},
	}
}

// ExclusionSet returns the union of accepted and skipped transcripts as a
// trimmed-text membership set. A passage is available iff its trimmed text
// is not a member.
func (u *UserRecord) ExclusionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(u.AcceptedTranscripts)+len(u.SkippedTranscripts))
	for _, t := range u.AcceptedTranscripts {
		set[strings.TrimSpace(t)] = struct{}{}
	}
	for _, t := range u.SkippedTranscripts {
		set[strings.TrimSpace(t)] = struct{}{}
	}
	return set
}
