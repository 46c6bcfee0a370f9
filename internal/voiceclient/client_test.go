package voiceclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ikari-backend/internal/models"
)

// silentMic yields zeroed frames until closed.
type silentMic struct {
	mu     sync.Mutex
	closed bool
}

func (m *silentMic) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.EOF
	}
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func (m *silentMic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *silentMic) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type recordingSpeaker struct {
	mu     sync.Mutex
	played [][]byte
	closed bool
}

func (s *recordingSpeaker) Write(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, pcm)
	return nil
}

func (s *recordingSpeaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSpeaker) snapshot() ([][]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.played...), s.closed
}

var testUpgrader = websocket.Upgrader{}

func testConfig(url string) Config {
	return Config{
		RelayURL:     "ws" + strings.TrimPrefix(url, "http"),
		SampleRate:   16000,
		FrameSamples: 1600,
		PollTimeout:  20 * time.Millisecond,
	}
}

func TestRun_StreamsFramesAndPlaysFinalAudio(t *testing.T) {
	pcm := []byte{10, 20, 30, 40}
	audio := wav(chunk("fmt ", make([]byte, 16)), chunk("data", pcm))

	var (
		mu         sync.Mutex
		frameSizes []int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sent := false
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frame, err := base64.StdEncoding.DecodeString(string(data))
			if err != nil {
				return
			}
			mu.Lock()
			frameSizes = append(frameSizes, len(frame))
			mu.Unlock()

			if !sent {
				sent = true
				for _, ev := range []models.TranscriptEvent{
					{Transcript: "もし"},
					{Transcript: "もしもし", IsFinal: true, Audio: base64.StdEncoding.EncodeToString(audio)},
				} {
					payload, _ := json.Marshal(ev)
					conn.WriteMessage(websocket.TextMessage, payload)
				}
			}
		}
	}))
	defer srv.Close()

	mic := &silentMic{}
	speaker := &recordingSpeaker{}
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- New(testConfig(srv.URL), mic, speaker, &out).Run(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		played, _ := speaker.snapshot()
		if len(played) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("final audio was never played")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("expected clean exit on cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	played, closed := speaker.snapshot()
	if !bytes.Equal(played[0], pcm) {
		t.Errorf("expected WAV header stripped, played %v", played[0])
	}
	if !closed || !mic.isClosed() {
		t.Error("expected microphone and speaker to be closed")
	}
	if !strings.Contains(out.String(), "\rもし") || !strings.Contains(out.String(), "\rもしもし\n") {
		t.Errorf("unexpected transcript output %q", out.String())
	}

	mu.Lock()
	defer mu.Unlock()
	for _, size := range frameSizes {
		if size != 3200 {
			t.Fatalf("expected 3200 byte frames, got %d", size)
		}
	}
}

func TestRun_RelayDisconnectIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	mic := &silentMic{}
	speaker := &recordingSpeaker{}

	err := New(testConfig(srv.URL), mic, speaker, io.Discard).Run(context.Background())
	if err == nil {
		t.Fatal("expected an error when the relay drops the connection")
	}
	if _, closed := speaker.snapshot(); !closed || !mic.isClosed() {
		t.Error("expected devices to be closed after failure")
	}
}

func TestRun_DialFailureClosesDevices(t *testing.T) {
	mic := &silentMic{}
	speaker := &recordingSpeaker{}
	cfg := testConfig("http://127.0.0.1:1")

	if err := New(cfg, mic, speaker, io.Discard).Run(context.Background()); err == nil {
		t.Fatal("expected dial error")
	}
	if _, closed := speaker.snapshot(); !closed || !mic.isClosed() {
		t.Error("expected devices to be closed after dial failure")
	}
}
