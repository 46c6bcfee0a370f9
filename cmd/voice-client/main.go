package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ikari-backend/internal/voiceclient"
)

func main() {
	cfg, err := voiceclient.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Configuration failed: %v", err)
	}

	mic, err := voiceclient.NewFFmpegCapture(cfg.InputDevice, cfg.SampleRate)
	if err != nil {
		log.Fatalf("✗ Microphone unavailable: %v", err)
	}

	speaker, err := voiceclient.NewFFplayPlayer(cfg.SampleRate)
	if err != nil {
		mic.Close()
		log.Fatalf("✗ Speaker unavailable: %v", err)
	}
	log.Printf("✓ Audio devices ready (%d Hz, %d samples per frame)", cfg.SampleRate, cfg.FrameSamples)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("✓ Streaming to %s (Ctrl+C to stop)", cfg.RelayURL)
	if err := voiceclient.New(*cfg, mic, speaker, os.Stdout).Run(ctx); err != nil {
		log.Fatalf("✗ Voice client stopped: %v", err)
	}
	log.Println("Voice client stopped")
}
