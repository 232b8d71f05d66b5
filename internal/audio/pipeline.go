package audio

import (
	"context"
	"fmt"
	"math"
)

// Decoder is the platform decode/resample capability the pipeline delegates
// format handling to. Implementations decode arbitrary captured audio blobs
// into per-channel floating-point samples at their native rate.
type Decoder interface {
	Decode(ctx context.Context, blob []byte) (channels [][]float64, sampleRate int, err error)
	Resample(ctx context.Context, samples []float64, fromRate, toRate int) ([]float64, error)
}

// Artifact is the normalized output of the pipeline: a canonical WAV
// container plus the duration a playback decoder reports for it.
type Artifact struct {
	Data            []byte
	SampleRate      int
	BitDepth        int
	DurationSeconds float64
}

// DecodeError indicates the captured blob could not be decoded or resampled.
// The recording is abandoned; no partial artifact is kept.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("audio decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DurationError indicates the artifact was produced but its duration could
// not be measured back from the container.
type DurationError struct {
	Err error
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("duration measurement failed: %v", e.Err)
}

func (e *DurationError) Unwrap() error { return e.Err }

// Normalizer converts arbitrary-format captured audio into a fixed-format
// mono WAV artifact at the configured target rate and bit depth.
type Normalizer struct {
	decoder    Decoder
	targetRate int
	bitDepth   int
}

// NewNormalizer creates a normalizer delegating format handling to the
// given decoder.
func NewNormalizer(decoder Decoder, targetRate, bitDepth int) *Normalizer {
	return &Normalizer{
		decoder:    decoder,
		targetRate: targetRate,
		bitDepth:   bitDepth,
	}
}

// Normalize decodes the captured blob, folds it to mono by taking the first
// channel only (additional channels are discarded, not mixed), resamples to
// the target rate and encodes the canonical container. Duration is measured
// by re-decoding the produced container rather than computed from the sample
// count: the authoritative value is whatever a playback decoder reports.
func (n *Normalizer) Normalize(ctx context.Context, blob []byte) (*Artifact, error) {
	channels, nativeRate, err := n.decoder.Decode(ctx, blob)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	if len(channels) == 0 {
		return nil, &DecodeError{Err: fmt.Errorf("decoder produced no channels")}
	}

	mono := channels[0]

	resampled := mono
	if nativeRate != n.targetRate {
		resampled, err = n.decoder.Resample(ctx, mono, nativeRate, n.targetRate)
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("resample %d -> %d Hz: %w", nativeRate, n.targetRate, err)}
		}
	}

	encoded, err := EncodeWAV(resampled, n.targetRate, n.bitDepth)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("encode container: %w", err)}
	}

	duration, err := MeasureDuration(encoded)
	if err != nil {
		return nil, &DurationError{Err: err}
	}

	return &Artifact{
		Data:            encoded,
		SampleRate:      n.targetRate,
		BitDepth:        n.bitDepth,
		DurationSeconds: math.Round(duration*100) / 100,
	}, nil
}
