package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ikari-backend/internal/models"
	"ikari-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Relay streams microphone audio from WebSocket clients into speech
// recognition and pushes transcripts back over the same socket.
type Relay struct {
	recognizer    services.Recognizer
	synth         services.Synthesizer
	drainInterval time.Duration

	mu          sync.RWMutex
	connections map[uuid.UUID]*websocket.Conn
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

// NewRelay builds a relay. synth may be nil, in which case final transcripts
// are sent without audio.
func NewRelay(recognizer services.Recognizer, synth services.Synthesizer, drainInterval time.Duration) *Relay {
	return &Relay{
		recognizer:    recognizer,
		synth:         synth,
		drainInterval: drainInterval,
		connections:   make(map[uuid.UUID]*websocket.Conn),
		cancelFuncs:   make(map[uuid.UUID]context.CancelFunc),
	}
}

// HandleWebSocket serves one client for the lifetime of its socket.
func (h *Relay) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	connID := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	h.registerConnection(connID, conn, cancel)

	buffer := NewAudioBuffer()
	recognizing := make(chan struct{})
	go func() {
		defer close(recognizing)
		h.recognitionLoop(ctx, connID, conn, buffer)
	}()

	h.receiveLoop(connID, conn, buffer)

	buffer.Close()
	h.unregisterConnection(connID)
	<-recognizing
}

// ActiveConnections reports how many clients are connected.
func (h *Relay) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// CloseAll drops every client. Hijacked sockets are not closed by
// http.Server.Shutdown, so the relay binary calls this on shutdown.
func (h *Relay) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.connections {
		conn.Close()
		if cancel, ok := h.cancelFuncs[id]; ok {
			cancel()
		}
	}
}

func (h *Relay) registerConnection(connID uuid.UUID, conn *websocket.Conn, cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[connID] = conn
	h.cancelFuncs[connID] = cancel

	log.Printf("Voice relay connected: %s (total: %d)", connID, len(h.connections))
}

func (h *Relay) unregisterConnection(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cancel, ok := h.cancelFuncs[connID]; ok {
		cancel()
		delete(h.cancelFuncs, connID)
	}
	if conn, ok := h.connections[connID]; ok {
		conn.Close()
		delete(h.connections, connID)
	}

	log.Printf("Voice relay disconnected: %s", connID)
}

// receiveLoop returns on the first read or decode error.
func (h *Relay) receiveLoop(connID uuid.UUID, conn *websocket.Conn, buffer *AudioBuffer) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket read error on %s: %v", connID, err)
			}
			return
		}

		chunk, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			log.Printf("Invalid audio frame on %s: %v", connID, err)
			return
		}
		buffer.Append(chunk)
	}
}

func (h *Relay) recognitionLoop(ctx context.Context, connID uuid.UUID, conn *websocket.Conn, buffer *AudioBuffer) {
	ticker := time.NewTicker(h.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if buffer.Closed() {
			return
		}
		chunks := buffer.Drain()
		if len(chunks) == 0 {
			continue
		}

		err := h.recognizer.Recognize(ctx, chunks, func(t services.Transcript) error {
			return h.sendTranscript(ctx, conn, t)
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error in speech recognition on %s: %v", connID, err)
		}
	}
}

func (h *Relay) sendTranscript(ctx context.Context, conn *websocket.Conn, t services.Transcript) error {
	event := models.TranscriptEvent{
		Transcript: t.Text,
		IsFinal:    t.IsFinal,
	}
	if t.IsFinal {
		if audio := services.SpeakBase64(ctx, h.synth, t.Text); !audio.Fallback {
			event.Audio = audio.Value
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
