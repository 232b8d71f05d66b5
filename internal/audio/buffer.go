package audio

import (
	"sync"
	"time"
)

// CaptureBuffer accumulates raw audio chunks delivered by a live capture
// stream. Chunks arrive in delivery order over a single stream; the buffer
// concatenates them into one blob when capture stops.
type CaptureBuffer struct {
	chunks     [][]byte
	totalBytes int
	lastUpdate time.Time

	mu sync.RWMutex
}

// CaptureBufferStats represents buffer statistics for monitoring
type CaptureBufferStats struct {
	ChunkCount int       `json:"chunk_count"`
	TotalBytes int       `json:"total_bytes"`
	LastUpdate time.Time `json:"last_update"`
}

// NewCaptureBuffer creates an empty capture buffer
func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{
		chunks:     make([][]byte, 0, 16),
		lastUpdate: time.Now(),
	}
}

// AddChunk appends a raw chunk to the buffer. The chunk is copied so the
// caller may reuse its slice.
func (b *CaptureBuffer) AddChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := make([]byte, len(chunk))
	copy(c, chunk)

	b.chunks = append(b.chunks, c)
	b.totalBytes += len(c)
	b.lastUpdate = time.Now()
}

// Concatenate joins all accumulated chunks into a single blob in arrival order.
func (b *CaptureBuffer) Concatenate() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	blob := make([]byte, 0, b.totalBytes)
	for _, c := range b.chunks {
		blob = append(blob, c...)
	}

	return blob
}

// Reset discards all accumulated chunks
func (b *CaptureBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = b.chunks[:0]
	b.totalBytes = 0
	b.lastUpdate = time.Now()
}

// Size returns the total number of accumulated bytes
func (b *CaptureBuffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalBytes
}

// ChunkCount returns the number of accumulated chunks
func (b *CaptureBuffer) ChunkCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chunks)
}

// GetLastUpdate returns the time of the last buffer update
func (b *CaptureBuffer) GetLastUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdate
}

// GetStats returns current buffer statistics
func (b *CaptureBuffer) GetStats() CaptureBufferStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return CaptureBufferStats{
		ChunkCount: len(b.chunks),
		TotalBytes: b.totalBytes,
		LastUpdate: b.lastUpdate,
	}
}
