package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ikari-backend/internal/config"
	"ikari-backend/internal/router"
	"ikari-backend/internal/services"
	"ikari-backend/internal/voice"
)

func main() {
	log.Println("🚀 Starting Ikari voice relay...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.LoadCommon()
	log.Println("✓ Environment variables loaded")

	ctx := context.Background()

	// ──── Step 2: Initialize Speech-to-Text ────
	recognizer, err := services.NewGoogleRecognizer(ctx, cfg.VoiceLanguage, cfg.VoiceSampleRate)
	if err != nil {
		log.Fatalf("✗ Speech-to-Text initialization failed: %v", err)
	}
	defer recognizer.Close()
	log.Printf("✓ Speech-to-Text client initialized (%s, %d Hz)", cfg.VoiceLanguage, cfg.VoiceSampleRate)

	// ──── Step 3: Initialize Text-to-Speech ────
	// Without it final transcripts are relayed without audio.
	var synth services.Synthesizer
	tts, err := services.NewGoogleSynthesizer(ctx, services.RelayVoice(cfg.VoiceLanguage, cfg.VoiceSampleRate))
	if err != nil {
		log.Printf("✗ Text-to-Speech initialization failed: %v", err)
	} else {
		defer tts.Close()
		synth = tts
		log.Println("✓ Text-to-Speech client initialized")
	}

	// ──── Step 4: Start Voice Relay ────
	relay := voice.NewRelay(recognizer, synth, cfg.VoiceDrainInterval)
	r := router.NewRelay(relay, cfg.FrontendURL)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.VoiceRelayPort),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		relay.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Ikari voice relay ready on http://localhost:%s", cfg.VoiceRelayPort)
	log.Printf("  WS:  ws://localhost:%s/ws", cfg.VoiceRelayPort)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
