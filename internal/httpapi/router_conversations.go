package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kisite/chatbot-gateway/internal/transcript"
)

func (r *router) handleConversations(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	entries, err := r.deps.Conversations.List()
	if err != nil {
		r.deps.Logger.Error("list conversations failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list conversations"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":         len(entries),
		"conversations": entries,
	})
}

func (r *router) handleConversationGet(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	userID := strings.TrimSpace(req.URL.Query().Get("user_id"))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	content, err := r.deps.Conversations.Read(userID)
	if err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation not found"})
			return
		}
		r.deps.Logger.Error("read conversation failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read conversation"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"content": content,
	})
}

func (r *router) handleConversationsCleanup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	deleted, err := r.deps.Conversations.Sweep()
	if err != nil {
		r.deps.Logger.Error("manual cleanup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clean conversations"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (r *router) handleProfiles(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "profile store is unavailable"})
		return
	}

	profiles, err := r.deps.Store.ListProfiles(req.Context(), 100)
	if err != nil {
		r.deps.Logger.Error("list profiles failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list profiles"})
		return
	}

	items := make([]map[string]any, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, map[string]any{
			"user_id":       profile.UserID,
			"connector":     profile.Connector,
			"display_name":  profile.DisplayName,
			"message_count": profile.MessageCount,
			"first_seen":    profile.FirstSeen,
			"last_seen":     profile.LastSeen,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(items), "profiles": items})
}
