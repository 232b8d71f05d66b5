package session

import (
	"context"
	"fmt"
	"sync"
)

// Stream is a live capture handle. Chunks delivers encoded audio fragments in
// capture order; the channel is closed when the stream stops. Stop releases
// the underlying device handle and is safe to call more than once. Failure
// reports why the stream ended when it ended abnormally.
type Stream interface {
	Start() error
	Stop() error
	Chunks() <-chan []byte
	Failure() error
}

// Capture acquires audio input streams. Acquisition can fail when the user
// denies access or no device is present; that failure is surfaced as a
// MicrophoneAccessError by the session.
type Capture interface {
	RequestStream(ctx context.Context) (Stream, error)
}

// ChunkStream is an in-memory Stream fed by an external producer, typically
// an upload endpoint relaying capture fragments from a client device.
type ChunkStream struct {
	ch chan []byte

	mu      sync.Mutex
	started bool
	closed  bool
	failure error
}

// NewChunkStream creates a chunk stream with the given channel capacity
func NewChunkStream(capacity int) *ChunkStream {
	if capacity <= 0 {
		capacity = 64
	}
	return &ChunkStream{ch: make(chan []byte, capacity)}
}

// Start marks the stream as accepting chunks
func (c *ChunkStream) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("stream already stopped")
	}
	c.started = true
	return nil
}

// Push delivers one capture fragment. It fails once the stream has stopped,
// so late fragments from a slow producer are dropped rather than queued.
func (c *ChunkStream) Push(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("stream stopped")
	}
	if !c.started {
		return fmt.Errorf("stream not started")
	}

	select {
	case c.ch <- chunk:
		return nil
	default:
		return fmt.Errorf("stream buffer full")
	}
}

// Stop closes the chunk channel. Idempotent.
func (c *ChunkStream) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}

// Abort closes the stream with a failure, modelling a capture device that
// died mid-take. A plain Stop after an abort keeps the failure.
func (c *ChunkStream) Abort(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.failure = err
	close(c.ch)
}

// Failure returns the abort error for streams that ended abnormally
func (c *ChunkStream) Failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Chunks returns the fragment channel
func (c *ChunkStream) Chunks() <-chan []byte {
	return c.ch
}

// ChunkCapture hands out pre-built streams, one per acquisition. It backs
// the HTTP ingest path where the server owns the stream and relays uploaded
// fragments into it. The pending slot holds one stream; offering again
// replaces a stream that was never acquired, such as one left behind by a
// refused session start.
type ChunkCapture struct {
	mu      sync.Mutex
	pending *ChunkStream
	denied  error
}

// NewChunkCapture creates a Capture whose next stream is registered via
// Offer. RequestStream fails when no stream has been offered.
func NewChunkCapture() *ChunkCapture {
	return &ChunkCapture{}
}

// Offer registers the stream for the next acquisition
func (c *ChunkCapture) Offer(s *ChunkStream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = s
}

// Deny makes subsequent acquisitions fail with the given error, modelling a
// refused device permission.
func (c *ChunkCapture) Deny(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.denied = err
}

// RequestStream hands out the offered stream
func (c *ChunkCapture) RequestStream(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.denied != nil {
		return nil, c.denied
	}
	if c.pending == nil {
		return nil, fmt.Errorf("no capture stream available")
	}

	s := c.pending
	c.pending = nil
	return s, nil
}
