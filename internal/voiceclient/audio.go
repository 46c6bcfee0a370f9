package voiceclient

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
)

// FFmpegCapture reads s16le mono microphone audio from an ffmpeg subprocess.
type FFmpegCapture struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	closeOnce sync.Once
}

func NewFFmpegCapture(device string, sampleRate int) (*FFmpegCapture, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.New("ffmpeg is required for microphone capture (install ffmpeg and ensure it is in PATH)")
	}
	args, err := captureArgs(runtime.GOOS, device, sampleRate)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg mic capture: %w", err)
	}
	return &FFmpegCapture{cmd: cmd, stdout: stdout}, nil
}

func captureArgs(goos, device string, sampleRate int) ([]string, error) {
	var input []string
	switch goos {
	case "darwin":
		if device == "" {
			device = ":0"
		}
		input = []string{"-f", "avfoundation", "-i", device}
	case "linux":
		if device == "" {
			device = "default"
		}
		input = []string{"-f", "pulse", "-i", device}
	default:
		return nil, fmt.Errorf("mic capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, input...)
	return append(args,
		"-ac", "1", "-ar", fmt.Sprintf("%d", sampleRate),
		"-f", "s16le", "-",
	), nil
}

func (m *FFmpegCapture) Read(p []byte) (int, error) {
	return m.stdout.Read(p)
}

// Close stops ffmpeg. It is safe to call more than once.
func (m *FFmpegCapture) Close() error {
	m.closeOnce.Do(func() {
		if m.cmd.Process != nil {
			_ = m.cmd.Process.Kill()
			_ = m.cmd.Wait()
		}
	})
	return nil
}

// FFplayPlayer plays raw s16le mono audio written to it through ffplay.
type FFplayPlayer struct {
	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func NewFFplayPlayer(sampleRate int) (*FFplayPlayer, error) {
	if _, err := exec.LookPath("ffplay"); err != nil {
		return nil, errors.New("ffplay is required for playback (install ffmpeg/ffplay and ensure it is in PATH)")
	}
	cmd := exec.Command("ffplay",
		"-nodisp",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
		"-i", "pipe:0",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffplay stdin: %w", err)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffplay: %w", err)
	}
	return &FFplayPlayer{cmd: cmd, stdin: stdin}, nil
}

func (p *FFplayPlayer) Write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return errors.New("ffplay is closed")
	}
	_, err := p.stdin.Write(data)
	return err
}

func (p *FFplayPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return nil
	}
	p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	p.stdin = nil
	return nil
}

// pcmPayload returns the samples of a RIFF/WAVE container, or audio unchanged
// when it is not one.
func pcmPayload(audio []byte) []byte {
	if len(audio) < 12 || !bytes.Equal(audio[0:4], []byte("RIFF")) || !bytes.Equal(audio[8:12], []byte("WAVE")) {
		return audio
	}

	offset := 12
	for offset+8 <= len(audio) {
		id := audio[offset : offset+4]
		size := int(binary.LittleEndian.Uint32(audio[offset+4 : offset+8]))
		body := offset + 8
		if bytes.Equal(id, []byte("data")) {
			end := body + size
			if end > len(audio) {
				end = len(audio)
			}
			return audio[body:end]
		}
		// chunks are word aligned
		offset = body + size + size%2
	}
	return audio
}
