package audio

import (
	"bytes"
	"sync"
	"testing"
)

func TestCaptureBufferConcatenate(t *testing.T) {
	buf := NewCaptureBuffer()

	buf.AddChunk([]byte{1, 2, 3})
	buf.AddChunk([]byte{4, 5})
	buf.AddChunk([]byte{6})

	blob := buf.Concatenate()
	expected := []byte{1, 2, 3, 4, 5, 6}

	if !bytes.Equal(blob, expected) {
		t.Errorf("Expected %v, got %v", expected, blob)
	}

	if buf.Size() != 6 {
		t.Errorf("Expected size 6, got %d", buf.Size())
	}

	if buf.ChunkCount() != 3 {
		t.Errorf("Expected 3 chunks, got %d", buf.ChunkCount())
	}
}

func TestCaptureBufferIgnoresEmptyChunks(t *testing.T) {
	buf := NewCaptureBuffer()

	buf.AddChunk(nil)
	buf.AddChunk([]byte{})
	buf.AddChunk([]byte{7})

	if buf.ChunkCount() != 1 {
		t.Errorf("Expected 1 chunk, got %d", buf.ChunkCount())
	}
}

func TestCaptureBufferCopiesChunks(t *testing.T) {
	buf := NewCaptureBuffer()

	chunk := []byte{1, 2, 3}
	buf.AddChunk(chunk)
	chunk[0] = 99

	blob := buf.Concatenate()
	if blob[0] != 1 {
		t.Error("Buffer must copy chunks, not alias caller slices")
	}
}

func TestCaptureBufferReset(t *testing.T) {
	buf := NewCaptureBuffer()
	buf.AddChunk([]byte{1, 2, 3})

	buf.Reset()

	if buf.Size() != 0 || buf.ChunkCount() != 0 {
		t.Errorf("Expected empty buffer after reset, got size=%d chunks=%d",
			buf.Size(), buf.ChunkCount())
	}

	if len(buf.Concatenate()) != 0 {
		t.Error("Expected empty blob after reset")
	}
}

func TestCaptureBufferConcurrentAppend(t *testing.T) {
	buf := NewCaptureBuffer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf.AddChunk([]byte{0, 1})
			}
		}()
	}
	wg.Wait()

	if buf.Size() != 2000 {
		t.Errorf("Expected 2000 bytes, got %d", buf.Size())
	}
}
