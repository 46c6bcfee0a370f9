package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ikari-backend/internal/handlers"
	"ikari-backend/internal/middleware"
	"ikari-backend/internal/voice"
)

// New builds the chat service router. Every route sits behind the token gate.
// chatLimiter may be nil.
func New(
	tokenGate *middleware.TokenGate,
	chatLimiter *middleware.RateLimiter,
	chatHandler *handlers.ChatHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.Group(func(r chi.Router) {
		r.Use(tokenGate.Middleware)
		r.Get("/", chatHandler.Root)

		r.Group(func(r chi.Router) {
			if chatLimiter != nil {
				r.Use(chatLimiter.Middleware)
			}
			r.Post("/chat", chatHandler.Chat)
		})
	})

	return r
}

// NewRelay builds the voice relay router. The socket endpoint is public.
func NewRelay(relay *voice.Relay, frontendURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/ws", relay.HandleWebSocket)

	return r
}
