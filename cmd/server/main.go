package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ikari-backend/internal/config"
	"ikari-backend/internal/handlers"
	"ikari-backend/internal/middleware"
	"ikari-backend/internal/router"
	"ikari-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Ikari chat backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		log.Fatalf("✗ Prompt configuration failed: %v", err)
	}
	log.Println("✓ Prompts loaded")

	ctx := context.Background()

	// ──── Step 2: Initialize Completion Model ────
	// A failed model keeps the server up; /chat answers 503 until restart.
	completer, err := services.NewCompleter(ctx, cfg)
	if err != nil {
		log.Printf("✗ Completion model initialization failed: %v", err)
	} else {
		if closer, ok := completer.(io.Closer); ok {
			defer closer.Close()
		}
		log.Printf("✓ Completion model initialized (%s, %s)", cfg.LLMProvider, cfg.LLMModel)
	}

	// ──── Step 3: Initialize Text-to-Speech ────
	var synth services.Synthesizer
	tts, err := services.NewGoogleSynthesizer(ctx, services.ChatVoice(cfg.VoiceLanguage, cfg.VoiceSampleRate))
	if err != nil {
		log.Printf("✗ Text-to-Speech initialization failed: %v", err)
	} else {
		defer tts.Close()
		synth = tts
		log.Println("✓ Text-to-Speech client initialized")
	}

	// ──── Initialize Services ────
	chatService, err := services.NewChatService(completer, synth, prompts, cfg.ProgressScale)
	if err != nil {
		log.Fatalf("✗ Chat service initialization failed: %v", err)
	}
	progress := chatService.ProgressRange()
	log.Printf("✓ Chat service ready (progress %d..%d)", progress.Min, progress.Max)
	tokenGate := middleware.NewTokenGate(cfg.Token)

	var chatLimiter *middleware.RateLimiter
	if cfg.ChatRateLimit > 0 {
		chatLimiter = middleware.NewRateLimiter(cfg.ChatRateLimit, time.Minute)
		defer chatLimiter.Stop()
		log.Printf("✓ Chat rate limit: %d req/min per client", cfg.ChatRateLimit)
	}

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(chatService)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(tokenGate, chatLimiter, chatHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Ikari chat backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
