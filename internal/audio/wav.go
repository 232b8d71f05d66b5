package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WAVHeader represents the 44-byte header of a canonical PCM WAV file
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// HeaderSize is the size of the canonical PCM WAV header in bytes.
const HeaderSize = 44

// EncodeWAV encodes normalized floating-point samples in [-1, 1] into a mono
// PCM WAV container at the given sample rate and bit depth (8 or 16).
// Samples are clamped to [-1, 1], scaled by 2^(bitDepth-1)-1 and written as
// signed little-endian integers of bitDepth/8 bytes. An empty sample slice
// produces a valid container with an empty data payload.
func EncodeWAV(samples []float64, sampleRate int, bitDepth int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	if bitDepth != 8 && bitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (must be 8 or 16)", bitDepth)
	}

	numChannels := uint16(1) // Mono
	bytesPerSample := bitDepth / 8
	dataSize := uint32(len(samples) * bytesPerSample)
	fileSize := 36 + dataSize // data starts at offset 44

	header := WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     fileSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   numChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(numChannels) * uint32(bitDepth) / 8,
		BlockAlign:    numChannels * uint16(bitDepth) / 8,
		BitsPerSample: uint16(bitDepth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(samples)*bytesPerSample))

	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	multiplier := float64(int(1)<<(bitDepth-1) - 1)
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}

		switch bitDepth {
		case 16:
			if err := binary.Write(buf, binary.LittleEndian, int16(s*multiplier)); err != nil {
				return nil, fmt.Errorf("failed to write audio data: %w", err)
			}
		case 8:
			if err := binary.Write(buf, binary.LittleEndian, int8(s*multiplier)); err != nil {
				return nil, fmt.Errorf("failed to write audio data: %w", err)
			}
		}
	}

	return buf.Bytes(), nil
}

// DecodeWAV decodes a mono PCM WAV container back into normalized
// floating-point samples and the sample rate declared in the header.
func DecodeWAV(data []byte) ([]float64, int, error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, 0, err
	}

	if header.NumChannels != 1 {
		return nil, 0, fmt.Errorf("unsupported channel count: %d (only mono is supported)", header.NumChannels)
	}

	bitDepth := int(header.BitsPerSample)
	if bitDepth != 8 && bitDepth != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth: %d (only 8 and 16 bit are supported)", bitDepth)
	}

	bytesPerSample := bitDepth / 8
	payload := data[HeaderSize:]
	if int(header.Subchunk2Size) < len(payload) {
		payload = payload[:header.Subchunk2Size]
	}

	numSamples := len(payload) / bytesPerSample
	multiplier := float64(int(1)<<(bitDepth-1) - 1)

	samples := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		switch bitDepth {
		case 16:
			raw := int16(binary.LittleEndian.Uint16(payload[i*2:]))
			samples[i] = float64(raw) / multiplier
		case 8:
			raw := int8(payload[i])
			samples[i] = float64(raw) / multiplier
		}
	}

	return samples, int(header.SampleRate), nil
}

// ValidateWAV validates a WAV container format without decoding the audio data
func ValidateWAV(data []byte) error {
	_, err := readHeader(data)
	return err
}

// MeasureDuration reports the duration in seconds that a playback decoder
// would derive from the container's header fields.
func MeasureDuration(data []byte) (float64, error) {
	header, err := readHeader(data)
	if err != nil {
		return 0, err
	}

	if header.SampleRate == 0 {
		return 0, fmt.Errorf("invalid sample rate: 0")
	}

	bytesPerSample := uint32(header.BitsPerSample) / 8
	if bytesPerSample == 0 {
		return 0, fmt.Errorf("invalid bit depth: %d", header.BitsPerSample)
	}

	numSamples := header.Subchunk2Size / bytesPerSample / uint32(header.NumChannels)
	return float64(numSamples) / float64(header.SampleRate), nil
}

// Info describes the format fields of a WAV container
type Info struct {
	SampleRate    uint32  `json:"sample_rate"`
	Channels      uint16  `json:"channels"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	Duration      float64 `json:"duration_seconds"`
	DataSize      uint32  `json:"data_size_bytes"`
	NumSamples    uint32  `json:"num_samples"`
}

// GetInfo extracts format metadata from a WAV container
func GetInfo(data []byte) (*Info, error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	bytesPerSample := uint32(header.BitsPerSample) / 8
	if bytesPerSample == 0 || header.SampleRate == 0 {
		return nil, fmt.Errorf("invalid format fields: bit_depth=%d sample_rate=%d",
			header.BitsPerSample, header.SampleRate)
	}

	numSamples := header.Subchunk2Size / bytesPerSample
	duration := float64(numSamples) / float64(header.SampleRate)

	return &Info{
		SampleRate:    header.SampleRate,
		Channels:      header.NumChannels,
		BitsPerSample: header.BitsPerSample,
		Duration:      duration,
		DataSize:      header.Subchunk2Size,
		NumSamples:    numSamples,
	}, nil
}

// readHeader parses and validates the fixed 44-byte header
func readHeader(data []byte) (*WAVHeader, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("WAV data too short: need at least %d bytes, got %d", HeaderSize, len(data))
	}

	buf := bytes.NewReader(data)
	var header WAVHeader

	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	if string(header.ChunkID[:]) != "RIFF" {
		return nil, fmt.Errorf("invalid WAV file: missing RIFF header")
	}

	if string(header.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("invalid WAV file: missing WAVE format")
	}

	if string(header.Subchunk1ID[:]) != "fmt " {
		return nil, fmt.Errorf("invalid WAV file: missing fmt chunk")
	}

	if string(header.Subchunk2ID[:]) != "data" {
		return nil, fmt.Errorf("invalid WAV file: missing data chunk")
	}

	if header.AudioFormat != 1 {
		return nil, fmt.Errorf("unsupported audio format: %d (only PCM is supported)", header.AudioFormat)
	}

	return &header, nil
}
