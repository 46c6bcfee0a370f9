package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// TokenGate admits only requests whose Authorization header is exactly
// "Bearer <secret>". There is one shared secret for all callers.
type TokenGate struct {
	expected []byte
}

func NewTokenGate(secret string) *TokenGate {
	return &TokenGate{expected: []byte("Bearer " + secret)}
}

// Middleware rejects with 403 before any handler logic runs.
func (g *TokenGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Not authenticated", r)
			return
		}

		if subtle.ConstantTimeCompare([]byte(authHeader), g.expected) != 1 {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Invalid authentication token", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID(r),
		},
	})
}
