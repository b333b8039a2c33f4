package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kisite/chatbot-gateway/internal/gateway"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The web widget is served from arbitrary hosts during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type socketInbound struct {
	Message string `json:"message"`
}

type socketOutbound struct {
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
	Reply   string `json:"reply,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleChatSocket serves the web chat widget. Each connection gets its own
// generated user identifier so widget sessions never share history.
func (r *router) handleChatSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := chatUpgrader.Upgrade(w, req, nil)
	if err != nil {
		r.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	userID := "web-user-" + uuid.NewString()[:8]
	logger := r.deps.Logger.With("user_id", userID)
	logger.Info("web chat session opened")

	for {
		var inbound socketInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("web chat session aborted", "error", err)
			} else {
				logger.Info("web chat session closed")
			}
			return
		}

		message := strings.TrimSpace(inbound.Message)
		if message == "" {
			if err := conn.WriteJSON(socketOutbound{UserID: userID, Error: "message is required"}); err != nil {
				return
			}
			continue
		}

		output, err := r.deps.Gateway.HandleMessage(req.Context(), gateway.MessageInput{
			Connector: "web",
			UserID:    userID,
			Text:      message,
		})
		if err != nil {
			logger.Error("web chat handling failed", "error", err)
			if err := conn.WriteJSON(socketOutbound{UserID: userID, Error: "failed to process message"}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(socketOutbound{UserID: userID, Message: message, Reply: output.Reply}); err != nil {
			return
		}
	}
}
