package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"), filepath.Join(dir, "artifacts"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestLoadUnknownUserReturnsZeroRecord(t *testing.T) {
	s := newTestStore(t)

	record, err := s.Load("new@example.com")
	require.NoError(t, err)

	assert.Equal(t, RoleRecorder, record.Role)
	assert.Zero(t, record.RecordingsCount)
	assert.Empty(t, record.Recordings)
	assert.Empty(t, record.AcceptedTranscripts)
	assert.Empty(t, record.SkippedTranscripts)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	record := NewUserRecord()
	record.RecordingsCount = 3
	record.SpeakerInfo = SpeakerInfo{ID: "spk01", PlaceOfBirth: "Cairo", Gender: "Female", Age: 29}
	record.AcceptedTranscripts = []string{"first passage"}
	record.Recordings = []ReviewableRecording{{
		Metadata: RecordingMetadata{
			ID:         "spk01_p0_1700000000000",
			Transcript: "first passage",
			Audio:      AudioInfo{FileName: "spk01_p0_1700000000000.wav", SampleRate: 44100, BitDepth: 16, Channels: "Mono", DurationSeconds: 4.2},
		},
		Status:        StatusPending,
		RecorderEmail: "user@example.com",
	}}

	require.NoError(t, s.Save("User@Example.com", record))

	// Keys are lowercased, so mixed-case lookups hit the same record
	loaded, err := s.Load("user@example.com")
	require.NoError(t, err)

	assert.Equal(t, 3, loaded.RecordingsCount)
	assert.Equal(t, "spk01", loaded.SpeakerInfo.ID)
	require.Len(t, loaded.Recordings, 1)
	assert.Equal(t, "spk01_p0_1700000000000", loaded.Recordings[0].Metadata.ID)
	assert.Equal(t, 4.2, loaded.Recordings[0].Metadata.Audio.DurationSeconds)
}

func TestSaveLastWriterWins(t *testing.T) {
	s := newTestStore(t)

	first := NewUserRecord()
	first.RecordingsCount = 1
	require.NoError(t, s.Save("a@b.com", first))

	second := NewUserRecord()
	second.RecordingsCount = 2
	require.NoError(t, s.Save("a@b.com", second))

	loaded, err := s.Load("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.RecordingsCount)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("b@example.com", NewUserRecord()))
	require.NoError(t, s.Save("A@example.com", NewUserRecord()))

	users, err := s.Users()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, users)
}

func TestWriteAndReadArtifact(t *testing.T) {
	s := newTestStore(t)

	data := []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0}
	path, err := s.WriteArtifact("spk01_p2_1700000000000", data)
	require.NoError(t, err)
	assert.Equal(t, "spk01_p2_1700000000000.wav", filepath.Base(path))

	read, err := s.ReadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, data, read)
}

func TestReadArtifactRejectsEscapingPaths(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ReadArtifact("/etc/passwd")
	assert.Error(t, err)
}

func TestWriteMetadataSidecar(t *testing.T) {
	s := newTestStore(t)

	meta := RecordingMetadata{
		ID:         "spk01_p0_1700000000000",
		Speaker:    SpeakerMetadata{ID: "spk01", PlaceOfBirth: "Cairo", Gender: "Female", Age: 29},
		Audio:      AudioInfo{FileName: "spk01_p0_1700000000000.wav", SampleRate: 44100, BitDepth: 16, Channels: "Mono", DurationSeconds: 4.2},
		Transcript: "a passage",
	}

	path, err := s.WriteMetadata(meta)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"place_of_birth": "Cairo"`)
	assert.Contains(t, string(data), "\n  ") // pretty-printed
}

func TestExclusionSetUnionsTrimmedTranscripts(t *testing.T) {
	record := NewUserRecord()
	record.AcceptedTranscripts = []string{" passage one ", "passage two"}
	record.SkippedTranscripts = []string{"passage two", "passage three"}

	set := record.ExclusionSet()

	assert.Len(t, set, 3)
	assert.Contains(t, set, "passage one")
	assert.Contains(t, set, "passage two")
	assert.Contains(t, set, "passage three")
}

func TestSpeakerInfoComplete(t *testing.T) {
	tests := []struct {
		name string
		info SpeakerInfo
		want bool
	}{
		{"complete", SpeakerInfo{ID: "s", PlaceOfBirth: "p", Gender: "Male", Age: 30}, true},
		{"missing id", SpeakerInfo{PlaceOfBirth: "p", Age: 30}, false},
		{"missing place", SpeakerInfo{ID: "s", Age: 30}, false},
		{"zero age", SpeakerInfo{ID: "s", PlaceOfBirth: "p"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Complete())
		})
	}
}
