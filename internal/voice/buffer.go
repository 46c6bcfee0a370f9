package voice

import "sync"

// AudioBuffer is an unbounded FIFO of raw audio chunks shared by a
// connection's receive loop (producer) and recognition loop (consumer).
type AudioBuffer struct {
	mu     sync.Mutex
	chunks [][]byte
	closed bool
}

func NewAudioBuffer() *AudioBuffer {
	return &AudioBuffer{}
}

// Append queues a chunk. Chunks appended after Close are dropped.
func (b *AudioBuffer) Append(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.chunks = append(b.chunks, chunk)
}

// Drain removes and returns every queued chunk in arrival order.
func (b *AudioBuffer) Drain() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	chunks := b.chunks
	b.chunks = nil
	return chunks
}

func (b *AudioBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

func (b *AudioBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *AudioBuffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
