package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

// fakeDecoder implements Decoder with canned responses
type fakeDecoder struct {
	channels   [][]float64
	sampleRate int
	decodeErr  error

	resampleErr   error
	resampleCalls int
}

func (f *fakeDecoder) Decode(ctx context.Context, blob []byte) ([][]float64, int, error) {
	if f.decodeErr != nil {
		return nil, 0, f.decodeErr
	}
	return f.channels, f.sampleRate, nil
}

func (f *fakeDecoder) Resample(ctx context.Context, samples []float64, fromRate, toRate int) ([]float64, error) {
	f.resampleCalls++
	if f.resampleErr != nil {
		return nil, f.resampleErr
	}

	// Linear length scaling stands in for real resampling
	outLen := int(float64(len(samples)) * float64(toRate) / float64(fromRate))
	out := make([]float64, outLen)
	for i := range out {
		src := int(float64(i) * float64(fromRate) / float64(toRate))
		if src >= len(samples) {
			src = len(samples) - 1
		}
		out[i] = samples[src]
	}
	return out, nil
}

func TestNormalizeProducesArtifact(t *testing.T) {
	nativeRate := 48000
	dec := &fakeDecoder{
		channels:   [][]float64{sineSamples(nativeRate, 0.5, 440.0)},
		sampleRate: nativeRate,
	}

	n := NewNormalizer(dec, 44100, 16)

	artifact, err := n.Normalize(context.Background(), []byte("captured-blob"))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if artifact.SampleRate != 44100 {
		t.Errorf("Expected target rate 44100, got %d", artifact.SampleRate)
	}

	if artifact.BitDepth != 16 {
		t.Errorf("Expected bit depth 16, got %d", artifact.BitDepth)
	}

	if err := ValidateWAV(artifact.Data); err != nil {
		t.Errorf("Artifact is not a valid container: %v", err)
	}

	// Duration must come from the container, ~0.5s at the target rate
	if math.Abs(artifact.DurationSeconds-0.5) > 0.01 {
		t.Errorf("Expected duration ~0.5, got %f", artifact.DurationSeconds)
	}

	if dec.resampleCalls != 1 {
		t.Errorf("Expected exactly one resample call, got %d", dec.resampleCalls)
	}
}

func TestNormalizeMonoFoldDiscardsExtraChannels(t *testing.T) {
	first := []float64{0.1, 0.2, 0.3, 0.4}
	second := []float64{0.9, 0.9, 0.9, 0.9}

	dec := &fakeDecoder{
		channels:   [][]float64{first, second},
		sampleRate: 44100,
	}

	n := NewNormalizer(dec, 44100, 16)

	artifact, err := n.Normalize(context.Background(), []byte("blob"))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	decoded, _, err := DecodeWAV(artifact.Data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if len(decoded) != len(first) {
		t.Fatalf("Expected %d samples from first channel, got %d", len(first), len(decoded))
	}

	for i := range first {
		if math.Abs(decoded[i]-first[i]) > 0.001 {
			t.Errorf("Sample %d: expected first-channel value %f, got %f", i, first[i], decoded[i])
		}
	}
}

func TestNormalizeSkipsResampleAtTargetRate(t *testing.T) {
	dec := &fakeDecoder{
		channels:   [][]float64{{0.1, 0.2}},
		sampleRate: 44100,
	}

	n := NewNormalizer(dec, 44100, 16)

	if _, err := n.Normalize(context.Background(), []byte("blob")); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if dec.resampleCalls != 0 {
		t.Errorf("Expected no resample at target rate, got %d calls", dec.resampleCalls)
	}
}

func TestNormalizeDecodeFailure(t *testing.T) {
	dec := &fakeDecoder{decodeErr: fmt.Errorf("corrupt container")}
	n := NewNormalizer(dec, 44100, 16)

	artifact, err := n.Normalize(context.Background(), []byte("bad"))
	if artifact != nil {
		t.Error("Expected no partial artifact on decode failure")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected *DecodeError, got %T: %v", err, err)
	}
}

func TestNormalizeResampleFailureClassifiedAsDecode(t *testing.T) {
	dec := &fakeDecoder{
		channels:    [][]float64{{0.1, 0.2}},
		sampleRate:  48000,
		resampleErr: fmt.Errorf("render failed"),
	}
	n := NewNormalizer(dec, 44100, 16)

	_, err := n.Normalize(context.Background(), []byte("blob"))

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected *DecodeError for resample failure, got %T: %v", err, err)
	}
}

func TestNormalizeNoChannels(t *testing.T) {
	dec := &fakeDecoder{channels: [][]float64{}, sampleRate: 44100}
	n := NewNormalizer(dec, 44100, 16)

	_, err := n.Normalize(context.Background(), []byte("blob"))

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected *DecodeError for zero channels, got %T: %v", err, err)
	}
}

func TestNormalizeDurationRounding(t *testing.T) {
	// 14701 samples at 44100 Hz = 0.33335... seconds, rounds to 0.33
	dec := &fakeDecoder{
		channels:   [][]float64{make([]float64, 14701)},
		sampleRate: 44100,
	}
	n := NewNormalizer(dec, 44100, 16)

	artifact, err := n.Normalize(context.Background(), []byte("blob"))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if artifact.DurationSeconds != 0.33 {
		t.Errorf("Expected duration rounded to 0.33, got %v", artifact.DurationSeconds)
	}
}
