package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegDecoder implements Decoder by shelling out to ffmpeg/ffprobe. It is
// the deployment-side stand-in for the platform decode/resample capability:
// captured blobs may arrive in any container ffmpeg understands.
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
	tmpDir      string
}

// NewFFmpegDecoder creates a decoder using the ffmpeg and ffprobe binaries
// on PATH. Temporary decode inputs are written under tmpDir (or the system
// temp directory when empty).
func NewFFmpegDecoder(tmpDir string) *FFmpegDecoder {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	return &FFmpegDecoder{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		tmpDir:      tmpDir,
	}
}

// Decode probes the blob for its native sample rate and channel count, then
// decodes it to raw PCM and splits the interleaved stream into per-channel
// normalized sample arrays.
func (d *FFmpegDecoder) Decode(ctx context.Context, blob []byte) ([][]float64, int, error) {
	if len(blob) == 0 {
		return nil, 0, fmt.Errorf("empty audio blob")
	}

	in, err := os.CreateTemp(d.tmpDir, "capture-*.bin")
	if err != nil {
		return nil, 0, fmt.Errorf("create temp input: %w", err)
	}
	defer os.Remove(in.Name())

	if _, err := in.Write(blob); err != nil {
		in.Close()
		return nil, 0, fmt.Errorf("write temp input: %w", err)
	}
	in.Close()

	sampleRate, channels, err := d.probe(ctx, in.Name())
	if err != nil {
		return nil, 0, err
	}

	// ffmpeg -i input -f s16le pipe:1 keeps the native rate and channel layout
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-v", "error",
		"-i", in.Name(),
		"-f", "s16le", "-acodec", "pcm_s16le",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	raw := stdout.Bytes()
	frames := len(raw) / 2 / channels

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(raw[offset:]))
			out[ch][i] = float64(sample) / 32767.0
		}
	}

	return out, sampleRate, nil
}

// Resample converts a mono sample array between rates using ffmpeg's
// resampler over raw PCM pipes.
func (d *FFmpegDecoder) Resample(ctx context.Context, samples []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid rates: from=%d to=%d", fromRate, toRate)
	}

	if fromRate == toRate {
		return samples, nil
	}

	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(s*32767)))
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-v", "error",
		"-f", "s16le", "-ar", strconv.Itoa(fromRate), "-ac", "1",
		"-i", "pipe:0",
		"-f", "s16le", "-ar", strconv.Itoa(toRate), "-ac", "1",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(raw)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg resample: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	outRaw := stdout.Bytes()
	out := make([]float64, len(outRaw)/2)
	for i := range out {
		out[i] = float64(int16(binary.LittleEndian.Uint16(outRaw[i*2:]))) / 32767.0
	}

	return out, nil
}

// probe reads the sample rate and channel count of the first audio stream
func (d *FFmpegDecoder) probe(ctx context.Context, path string) (sampleRate, channels int, err error) {
	cmd := exec.CommandContext(ctx, d.ffprobePath,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,channels",
		"-of", "csv=p=0",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, 0, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	fields := strings.Split(strings.TrimSpace(stdout.String()), ",")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("ffprobe: unexpected output %q", stdout.String())
	}

	sampleRate, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: parse sample rate %q: %w", fields[0], err)
	}

	channels, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: parse channels %q: %w", fields[1], err)
	}

	if sampleRate <= 0 || channels <= 0 {
		return 0, 0, fmt.Errorf("ffprobe: invalid stream format: rate=%d channels=%d", sampleRate, channels)
	}

	return sampleRate, channels, nil
}
