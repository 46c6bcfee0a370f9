package voice

import (
	"sync"
	"testing"
)

func TestAudioBuffer_DrainIsFIFO(t *testing.T) {
	b := NewAudioBuffer()
	b.Append([]byte("a"))
	b.Append([]byte("b"))
	b.Append([]byte("c"))

	if b.Len() != 3 {
		t.Fatalf("expected 3 chunks, got %d", b.Len())
	}

	got := b.Drain()
	if len(got) != 3 || string(got[0]) != "a" || string(got[1]) != "b" || string(got[2]) != "c" {
		t.Fatalf("unexpected drain order %q", got)
	}
	if b.Len() != 0 || len(b.Drain()) != 0 {
		t.Fatal("expected buffer to be empty after drain")
	}
}

func TestAudioBuffer_Close(t *testing.T) {
	b := NewAudioBuffer()
	b.Append([]byte("kept"))
	b.Close()
	b.Append([]byte("dropped"))

	if !b.Closed() {
		t.Fatal("expected buffer to report closed")
	}
	got := b.Drain()
	if len(got) != 1 || string(got[0]) != "kept" {
		t.Fatalf("expected only the chunk appended before close, got %q", got)
	}
}

func TestAudioBuffer_ConcurrentAppendAndDrain(t *testing.T) {
	const producers, perProducer = 4, 250
	b := NewAudioBuffer()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				b.Append([]byte{byte(p), byte(i)})
			}
		}(p)
	}

	done := make(chan struct{})
	total := 0
	go func() {
		defer close(done)
		for total < producers*perProducer {
			total += len(b.Drain())
		}
	}()

	wg.Wait()
	<-done

	if total != producers*perProducer {
		t.Fatalf("expected %d chunks, drained %d", producers*perProducer, total)
	}
}

func TestAudioBuffer_PerProducerOrder(t *testing.T) {
	b := NewAudioBuffer()
	for i := 0; i < 100; i++ {
		b.Append([]byte{byte(i)})
	}

	var seen []byte
	for _, chunk := range b.Drain() {
		seen = append(seen, chunk...)
	}
	for i, v := range seen {
		if int(v) != i {
			t.Fatalf("chunk %d out of order: %d", i, v)
		}
	}
}
