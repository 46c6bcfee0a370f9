package voiceclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"ikari-backend/internal/models"
)

// Speaker consumes raw PCM for playback.
type Speaker interface {
	Write(pcm []byte) error
	Close() error
}

// Client streams microphone frames to the voice relay and plays back the
// audio attached to final transcripts.
type Client struct {
	cfg     Config
	mic     io.ReadCloser
	speaker Speaker
	out     io.Writer
}

func New(cfg Config, mic io.ReadCloser, speaker Speaker, out io.Writer) *Client {
	return &Client{cfg: cfg, mic: mic, speaker: speaker, out: out}
}

// Run streams until ctx is cancelled, the microphone ends or the relay
// connection fails. The microphone, speaker and socket are closed before it
// returns. Cancellation is not an error.
func (c *Client) Run(ctx context.Context) error {
	defer c.speaker.Close()
	defer c.mic.Close()

	// Unblocks a pending microphone read on cancellation.
	stop := context.AfterFunc(ctx, func() { c.mic.Close() })
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.RelayURL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to connect to voice relay: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	events := make(chan models.TranscriptEvent, 16)
	readErr := make(chan error, 1)
	go readEvents(conn, events, readErr, done)

	frame := make([]byte, c.cfg.FrameBytes())
	for {
		if ctx.Err() != nil {
			closeGracefully(conn)
			return nil
		}

		if _, err := io.ReadFull(c.mic, frame); err != nil {
			if ctx.Err() != nil {
				closeGracefully(conn)
				return nil
			}
			return fmt.Errorf("microphone read failed: %w", err)
		}

		payload := base64.StdEncoding.EncodeToString(frame)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			return fmt.Errorf("failed to send audio frame: %w", err)
		}

		if err := c.poll(ctx, events, readErr); err != nil {
			return err
		}
	}
}

// poll waits at most PollTimeout for one server event.
func (c *Client) poll(ctx context.Context, events <-chan models.TranscriptEvent, readErr <-chan error) error {
	timer := time.NewTimer(c.cfg.PollTimeout)
	defer timer.Stop()

	select {
	case event := <-events:
		c.handleEvent(event)
	case err := <-readErr:
		return fmt.Errorf("voice relay connection lost: %w", err)
	case <-timer.C:
	case <-ctx.Done():
	}
	return nil
}

func (c *Client) handleEvent(event models.TranscriptEvent) {
	if !event.IsFinal {
		fmt.Fprintf(c.out, "\r%s", event.Transcript)
		return
	}
	fmt.Fprintf(c.out, "\r%s\n", event.Transcript)

	if event.Audio == "" {
		return
	}
	audio, err := base64.StdEncoding.DecodeString(event.Audio)
	if err != nil {
		log.Printf("Invalid audio in transcript event: %v", err)
		return
	}
	if err := c.speaker.Write(pcmPayload(audio)); err != nil {
		log.Printf("Playback error: %v", err)
	}
}

// readEvents owns all socket reads. A gorilla connection cannot be read again
// after a read deadline fires, so the run loop polls this goroutine instead.
func readEvents(conn *websocket.Conn, events chan<- models.TranscriptEvent, readErr chan<- error, done <-chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}

		var event models.TranscriptEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("Ignoring malformed relay event: %v", err)
			continue
		}

		select {
		case events <- event:
		case <-done:
			return
		}
	}
}

func closeGracefully(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		log.Printf("Failed to close voice relay connection: %v", err)
	}
}
