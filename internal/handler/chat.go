package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nisthasiemens/docshare/internal/service"
)

// ChatHandler manages the global chat log.
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

type postMessageRequest struct {
	Message string `json:"message"`
}

// HandlePost appends a message to the chat log as the current user.
//
// HTTP: POST /api/chat
// Auth: required
func (h *ChatHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	msg, err := h.chat.Post(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// HandleHistory returns the whole chat log in insertion order.
//
// HTTP: GET /api/chat
// Auth: required
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chat.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
