package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"ikari-backend/internal/models"
	"ikari-backend/internal/services"
)

type chatService interface {
	Turn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Root is the liveness payload.
func (h *ChatHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := validateChatRequest(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp, err := h.chatService.Turn(r.Context(), req)
	if err != nil {
		log.Printf("Error in chat generation: %v", err)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func validateChatRequest(req models.ChatRequest) error {
	fields := map[string]string{}
	if req.Messages == nil {
		fields["messages"] = "messages is required"
	}
	for i, msg := range req.Messages {
		if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
			fields[fmt.Sprintf("messages[%d].role", i)] = `role must be "user" or "assistant"`
		}
	}
	if len(fields) > 0 {
		return &services.ValidationError{Fields: fields}
	}
	return nil
}
