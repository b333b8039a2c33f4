package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kisite/chatbot-gateway/internal/gateway"
)

type chatRequest struct {
	Message     string `json:"message"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

func (r *router) handleChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		userID = "test-user"
	}

	output, err := r.deps.Gateway.HandleMessage(req.Context(), gateway.MessageInput{
		Connector:   "api",
		UserID:      userID,
		DisplayName: strings.TrimSpace(payload.DisplayName),
		Text:        message,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
			return
		}
		r.deps.Logger.Error("chat handling failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"message": message,
		"reply":   output.Reply,
		"history": output.History,
	})
}

type clearRequest struct {
	UserID string `json:"user_id"`
}

func (r *router) handleChatClear(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var payload clearRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		userID = "test-user"
	}

	r.deps.Gateway.ClearHistory(userID)
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "cleared": true})
}
